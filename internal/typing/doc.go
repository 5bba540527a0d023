// Package typing computes the static type and addressability of expression
// nodes. It is the bridge between the syntax an external analyzer builds and
// the type table: every rule consults types.Table for equality, casts and
// structure layout, and names are resolved through a caller-supplied Symbols.
package typing
