package domain

import "time"

// UploadOptions control how an upload is indexed.
type UploadOptions struct {
	// Replace drops the user's collection before indexing.
	// When false, re-uploads are additive.
	Replace bool
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	// UploadID identifies the upload in history.
	UploadID string `json:"uploadId"`

	// CollectionName is the per-user collection that received the chunks.
	CollectionName string `json:"collectionName"`

	// ChunkCount is the number of chunks indexed.
	ChunkCount int `json:"chunkCount"`

	// FileName is the uploaded file name.
	FileName string `json:"fileName"`
}

// UploadRecord is one entry in the upload history.
type UploadRecord struct {
	ID             string
	Identity       string
	CollectionName string
	FileName       string
	ChunkCount     int
	Replaced       bool
	CreatedAt      time.Time
}
