// Package vector contains VectorStore adapters.
//
// qdrant talks to a Qdrant server over its REST API. memory keeps
// collections in process memory and is used by tests and offline runs.
package vector
