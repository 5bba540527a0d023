package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксис выражений типов
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectType        Code = 2002
	SynBadArrayLength    Code = 2003
	SynTrailingTokens    Code = 2004
	SynUnclosedDelimiter Code = 2005

	// Семантика типов
	SemaInfo                  Code = 3000
	SemaError                 Code = 3001
	SemaUnknownType           Code = 3002
	SemaIncompleteStruct      Code = 3003
	SemaStructRedefinition    Code = 3004
	SemaInvalidCast           Code = 3005
	SemaUnresolvedSymbol      Code = 3006
	SemaInvalidBinaryOperands Code = 3007
	SemaInvalidUnaryOperand   Code = 3008
	SemaNotAddressable        Code = 3009
	SemaNoSuchField           Code = 3010
	SemaArgCount              Code = 3011
	SemaTypeMismatch          Code = 3012
	SemaNotCallable           Code = 3013
	SemaDuplicateField        Code = 3014
	SemaAliasRedefinition     Code = 3015
	SemaUnsupportedType       Code = 3016
	SemaNotIndexable          Code = 3017
	SemaRecursiveLayout       Code = 3018
	SemaReservedName          Code = 3019

	// I/O
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		SynInfo:                   "Syntax information",
		SynUnexpectedToken:        "Unexpected token",
		SynExpectType:             "Expected a type",
		SynBadArrayLength:         "Invalid array length",
		SynTrailingTokens:         "Unexpected input after type",
		SynUnclosedDelimiter:      "Unclosed delimiter",
		SemaInfo:                  "Semantic information",
		SemaError:                 "Semantic error",
		SemaUnknownType:           "Unknown type",
		SemaIncompleteStruct:      "Incomplete structure",
		SemaStructRedefinition:    "Structure redefinition",
		SemaInvalidCast:           "Invalid cast",
		SemaUnresolvedSymbol:      "Unresolved symbol",
		SemaInvalidBinaryOperands: "Invalid operands for binary operator",
		SemaInvalidUnaryOperand:   "Invalid operand for unary operator",
		SemaNotAddressable:        "Expression is not addressable",
		SemaNoSuchField:           "No such field",
		SemaArgCount:              "Wrong number of arguments",
		SemaTypeMismatch:          "Type mismatch",
		SemaNotCallable:           "Expression is not callable",
		SemaDuplicateField:        "Duplicate field",
		SemaAliasRedefinition:     "Typedef redefinition",
		SemaUnsupportedType:       "Unsupported type",
		SemaNotIndexable:          "Expression is not indexable",
		SemaRecursiveLayout:       "Recursive by-value structure layout",
		SemaReservedName:          "Reserved type name",
		IOLoadFileError:           "Failed to load file",
		IODecodeError:             "Failed to decode manifest",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
