package decls

import (
	"fmt"

	"quill/internal/diag"
	"quill/internal/source"
)

// Error is a manifest or type-expression failure with its location.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}
