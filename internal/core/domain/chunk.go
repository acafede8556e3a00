package domain

import "time"

// Chunk is one bounded slice of an uploaded document, tagged with its position.
type Chunk struct {
	// Text is the trimmed, non-empty chunk content.
	Text string

	// FileName is the name of the uploaded file.
	FileName string

	// ChunkIndex is the 0-based position and the vector point id.
	ChunkIndex int

	// TotalChunks is the number of chunks produced by the upload.
	TotalChunks int

	// UploadedAt is when the upload was processed.
	UploadedAt time.Time
}

// NewChunks tags ordered chunk texts from one upload.
func NewChunks(fileName string, texts []string, uploadedAt time.Time) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			Text:        text,
			FileName:    fileName,
			ChunkIndex:  i,
			TotalChunks: len(texts),
			UploadedAt:  uploadedAt,
		}
	}
	return chunks
}
