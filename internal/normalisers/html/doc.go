// Package html provides a Normaliser for plans exported as HTML. It keeps
// the readable text of the body and drops scripts, styles and markup.
package html
