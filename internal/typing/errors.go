package typing

import (
	"quill/internal/diag"
	"quill/internal/source"
)

// Error describes why an expression has no type. It is also reported to the
// Checker's Reporter the first time it is produced.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
