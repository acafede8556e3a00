// Package parsers turns structured source documents into domain records.
//
// Parsers sit behind ports in internal/core/ports/driven and never import
// adapter packages.
package parsers
