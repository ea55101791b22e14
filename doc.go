// Package agon implements AGON (Adaptive Guarded Object Notation), a
// family of token-efficient textual encodings for JSON-shaped data.
//
// Given an arbitrary JSON-compatible value, Encode produces whichever of
// raw JSON, the row-oriented "rows" format, the column-oriented "columns"
// format, or the template-factored "struct" format uses the fewest
// tokens (or bytes, when no tokenizer encoding is configured), falling
// back to JSON when the savings do not clear a configured threshold.
// Decode transparently recognizes and parses any of the four.
//
// Subpackages rows, columns and structfmt implement the three non-JSON
// codecs. tokencount implements the pluggable tokenizer adapter. trained
// implements the training-time schema variant (positional packets with
// dictionary encoding and a SHA-256 anchor). client implements a thin
// high-level wrapper around a model provider call.
package agon
