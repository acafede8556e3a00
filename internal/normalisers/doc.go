// Package normalisers provides implementations of the Normaliser interface
// for the upload formats. Each normaliser knows how to extract text
// content from a specific MIME type or file extension.
//
// Normalisers are registered with the Registry at startup.
package normalisers
