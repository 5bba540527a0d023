// Package ast holds the expression nodes that the typing bridge consumes.
// Nodes and their payloads live in arena-backed stores and are addressed by
// 1-based handles; the zero handle of every kind means "absent".
package ast
