package domain

// RawDocument represents opaque bytes of an uploaded or local file.
// It is the input to text extraction.
type RawDocument struct {
	// FileName is the original file name, used for extension-based dispatch.
	FileName string

	// MIMEType is the content type (e.g., "application/pdf"). May be empty.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
