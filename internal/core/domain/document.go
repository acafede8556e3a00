package domain

// Document is extracted text ready for parsing or chunking.
// Normalisers produce it from a RawDocument.
type Document struct {
	// FileName is the base name of the source file.
	FileName string

	// Format is the detected format, e.g. "docx" or "text".
	Format string

	// Content is the full extracted text.
	Content string
}
