// Package domain defines the core business entities for plancheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SectionRecord: One addressable unit of the rulebook
//   - Chunk: A bounded slice of an uploaded business plan
//   - QueryContext: Retrieved content for a single question
//   - RawDocument: Opaque bytes before text extraction
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
