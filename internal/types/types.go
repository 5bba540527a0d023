package types

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/token"
)

// TypeID is a handle to a type descriptor stored in a Table.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// StructID is a handle into the structure registry.
type StructID uint32

// NoStructID marks the absence of a structure.
const NoStructID StructID = 0

// SigID is a handle to a stored function signature.
type SigID uint32

// NoSigID marks the absence of a signature.
const NoSigID SigID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	// KindInvalid is the "no such type" sentinel; the zero Type has it.
	KindInvalid Kind = iota
	KindBasic
	KindPointer
	KindArray
	KindFunction
	// KindOptional is reserved. The algebra rejects it.
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBasic:
		return "basic"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindOptional:
		return "optional"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Base tags a Basic type: a built-in, a sentinel, or a structure.
type Base uint8

const (
	BaseNone Base = iota
	BaseInt
	BaseReal
	BaseStr
	BaseVoid
	// sentinels, never constructible from source
	BaseArray
	BasePointer
	BaseNull
	BaseAny
	// BaseStruct pairs with Type.Struct.
	BaseStruct
)

func (b Base) String() string {
	switch b {
	case BaseInt:
		return "int"
	case BaseReal:
		return "real"
	case BaseStr:
		return "str"
	case BaseVoid:
		return "void"
	case BaseArray:
		return "<array>"
	case BasePointer:
		return "<pointer>"
	case BaseNull:
		return "<null>"
	case BaseAny:
		return "<any>"
	case BaseStruct:
		return "struct"
	default:
		return "<none>"
	}
}

// IsSentinel reports whether b is one of the builtin-matching sentinels.
func (b Base) IsSentinel() bool {
	return b >= BaseArray && b <= BaseAny
}

// Type is a compact descriptor for any supported type. Nested types are
// referenced by TypeID; Token is a diagnostics back-reference and never takes
// part in equality.
type Type struct {
	Kind   Kind
	Base   Base       // KindBasic
	Struct StructID   // KindBasic with BaseStruct
	Elem   TypeID     // pointee, array element, optional payload
	Len    ast.ExprID // array initial size expression, if any
	Empty  bool       // array declared without elements
	Sig    SigID      // KindFunction
	Token  token.ID
}

// Invalid is the typed "no such type" result.
var Invalid = Type{}

// IsValid reports whether t is anything but the invalid sentinel.
func (t Type) IsValid() bool { return t.Kind != KindInvalid }

// WithToken returns a copy of t that points at tok.
func (t Type) WithToken(tok token.ID) Type {
	t.Token = tok
	return t
}

// Signature describes a function type.
type Signature struct {
	Result TypeID
	Params []TypeID
}

// Descriptor helpers ---------------------------------------------------------

// MakeBasic wraps a built-in or sentinel base with no token.
func MakeBasic(base Base) Type {
	if base == BaseNone || base == BaseStruct {
		return Invalid
	}
	return Type{Kind: KindBasic, Base: base}
}

// MakeStruct describes a reference to a registered structure.
func MakeStruct(id StructID) Type {
	if id == NoStructID {
		return Invalid
	}
	return Type{Kind: KindBasic, Base: BaseStruct, Struct: id}
}

// IsStruct reports whether t references a structure registry slot.
func IsStruct(t Type) bool {
	return t.Kind == KindBasic && t.Base == BaseStruct && t.Struct != NoStructID
}

// IsIndirect reports whether t is passed by reference: every kind except
// int and real. The invalid sentinel and the reserved optional kind are not
// classified.
func IsIndirect(t Type) bool {
	switch t.Kind {
	case KindBasic:
		return t.Base != BaseInt && t.Base != BaseReal && t.Base != BaseNone
	case KindPointer, KindArray, KindFunction:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is int or real.
func IsNumeric(t Type) bool {
	return t.Kind == KindBasic && (t.Base == BaseInt || t.Base == BaseReal)
}

// IsBase reports whether t is the basic type base.
func IsBase(t Type, base Base) bool {
	return t.Kind == KindBasic && t.Base == base
}

// isPointerLike covers real pointers and the POINTER sentinel.
func isPointerLike(t Type) bool {
	return t.Kind == KindPointer || IsBase(t, BasePointer)
}
