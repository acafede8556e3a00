package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested collection or row does not exist.
	// Retrieval treats it as "no content" rather than a failure.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfigurationMissing indicates required credentials or endpoints are absent.
	// Returned before any I/O is attempted.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrUpstreamUnavailable indicates the embedding, vector store or completion
	// service is unreachable or returned an error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPartialFailure indicates part of a request failed but the request continued.
	ErrPartialFailure = errors.New("partial failure")

	// ErrConflict indicates a collection exists with an incompatible schema.
	ErrConflict = errors.New("conflict")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrDirectoryUnavailable indicates the identity directory is not configured.
	ErrDirectoryUnavailable = errors.New("identity directory unavailable")
)

// MissingConfigError reports which setting is absent and how to provide it.
type MissingConfigError struct {
	// Setting is the config key, e.g. "vector_store.url".
	Setting string

	// Hint tells the user how to fix it.
	Hint string
}

// Error implements the error interface.
func (e *MissingConfigError) Error() string {
	if e.Hint == "" {
		return "configuration missing: " + e.Setting
	}
	return "configuration missing: " + e.Setting + " (" + e.Hint + ")"
}

// Unwrap allows errors.Is(err, ErrConfigurationMissing).
func (e *MissingConfigError) Unwrap() error {
	return ErrConfigurationMissing
}
