package types

import "fmt"

// ErrorKind classifies recoverable type errors. Every kind is itself an error,
// so callers can use errors.Is(err, types.ErrUnknownType).
type ErrorKind uint8

const (
	ErrInvalid ErrorKind = iota + 1
	ErrUnknownType
	ErrIncompleteStruct
	ErrStructRedefined
	ErrNotStruct
	ErrUnknownStruct
	ErrDuplicateField
	ErrAliasRedefined
	ErrReservedName
	ErrUnsupported
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrInvalid:
		return "invalid type"
	case ErrUnknownType:
		return "unknown type"
	case ErrIncompleteStruct:
		return "incomplete structure"
	case ErrStructRedefined:
		return "structure redefinition"
	case ErrNotStruct:
		return "not a structure"
	case ErrUnknownStruct:
		return "unknown structure"
	case ErrDuplicateField:
		return "duplicate field"
	case ErrAliasRedefined:
		return "typedef redefinition"
	case ErrReservedName:
		return "reserved type name"
	case ErrUnsupported:
		return "unsupported type"
	default:
		return fmt.Sprintf("type error %d", uint8(k))
	}
}

// Error is a recoverable failure reported by the Table. Type carries the
// offending value so callers can reach its token for a source location.
type Error struct {
	Kind   ErrorKind
	Name   string
	Detail string
	Type   Type
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind ErrorKind, name string, t Type) *Error {
	return &Error{Kind: kind, Name: name, Type: t}
}
