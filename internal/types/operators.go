package types

import "quill/internal/ast"

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyInt
	FamilyReal
	FamilyString
	FamilyArray
	FamilyPointer
	FamilyStruct
	FamilyFunction
	FamilyNull
)

const (
	FamilyNumeric = FamilyInt | FamilyReal
)

// FamilyOf classifies ty for operator lookup. Sentinels other than NULL
// belong to their matching family; ANY matches every family.
func FamilyOf(ty Type) FamilyMask {
	switch ty.Kind {
	case KindBasic:
		switch ty.Base {
		case BaseInt:
			return FamilyInt
		case BaseReal:
			return FamilyReal
		case BaseStr:
			return FamilyString
		case BaseArray:
			return FamilyArray
		case BasePointer:
			return FamilyPointer
		case BaseNull:
			return FamilyNull
		case BaseAny:
			return ^FamilyNone
		case BaseStruct:
			return FamilyStruct
		}
		return FamilyNone
	case KindPointer:
		return FamilyPointer
	case KindArray:
		return FamilyArray
	case KindFunction:
		return FamilyFunction
	default:
		return FamilyNone
	}
}

// Accepts reports whether mask admits ty.
func (m FamilyMask) Accepts(ty Type) bool {
	if m&FamilyAny != 0 {
		return FamilyOf(ty) != FamilyNone
	}
	return m&FamilyOf(ty) != 0
}

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	// BinaryResultInt is a truth value; the language has no bool.
	BinaryResultInt
	// BinaryResultNumeric is real if either operand is real, else int.
	BinaryResultNumeric
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint16

const (
	BinaryFlagNone       BinaryFlags = 0
	BinaryFlagAssignment BinaryFlags = 1 << iota
	BinaryFlagShortCircuit
	BinaryFlagCommutative
	BinaryFlagSameFamily // operands must be implicitly castable one way or the other
)

// BinarySpec lists operand families and expected result for an operation.
type BinarySpec struct {
	Left   FamilyMask
	Right  FamilyMask
	Result BinaryResult
	Flags  BinaryFlags
}

// UnaryResult indicates how to derive the resulting type.
type UnaryResult uint8

const (
	UnaryResultUnknown UnaryResult = iota
	UnaryResultSame
	UnaryResultInt
	UnaryResultReference // &expr
	UnaryResultDeref     // *expr
)

// UnaryFlags capture operator-specific metadata.
type UnaryFlags uint8

const (
	UnaryFlagNone                UnaryFlags = 0
	UnaryFlagRequiresAddressable UnaryFlags = 1 << iota
)

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  UnaryResult
	Flags   UnaryFlags
}

var binarySpecTable = map[ast.ExprBinaryOp][]BinarySpec{
	ast.ExprBinaryAdd: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
		{Left: FamilyString, Right: FamilyString, Result: BinaryResultLeft, Flags: BinaryFlagCommutative | BinaryFlagSameFamily},
	},
	ast.ExprBinarySub: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric},
	},
	ast.ExprBinaryMul: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric, Flags: BinaryFlagCommutative},
	},
	ast.ExprBinaryDiv: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultNumeric},
	},
	ast.ExprBinaryMod: {
		{Left: FamilyInt, Right: FamilyInt, Result: BinaryResultNumeric},
	},
	ast.ExprBinaryLogicalAnd: {
		{Left: FamilyInt, Right: FamilyInt, Result: BinaryResultInt, Flags: BinaryFlagShortCircuit},
	},
	ast.ExprBinaryLogicalOr: {
		{Left: FamilyInt, Right: FamilyInt, Result: BinaryResultInt, Flags: BinaryFlagShortCircuit},
	},
	ast.ExprBinaryEq: {
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultInt, Flags: BinaryFlagSameFamily | BinaryFlagCommutative},
	},
	ast.ExprBinaryNotEq: {
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultInt, Flags: BinaryFlagSameFamily | BinaryFlagCommutative},
	},
	ast.ExprBinaryLess: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultInt},
	},
	ast.ExprBinaryLessEq: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultInt},
	},
	ast.ExprBinaryGreater: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultInt},
	},
	ast.ExprBinaryGreaterEq: {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultInt},
	},
	ast.ExprBinaryAssign: {
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultLeft, Flags: BinaryFlagAssignment},
	},
}

var unarySpecTable = map[ast.ExprUnaryOp]UnarySpec{
	ast.ExprUnaryPlus:  {Operand: FamilyNumeric, Result: UnaryResultSame},
	ast.ExprUnaryMinus: {Operand: FamilyNumeric, Result: UnaryResultSame},
	ast.ExprUnaryNot:   {Operand: FamilyInt, Result: UnaryResultInt},
	ast.ExprUnaryDeref: {Operand: FamilyPointer, Result: UnaryResultDeref},
	ast.ExprUnaryRef:   {Operand: FamilyAny, Result: UnaryResultReference, Flags: UnaryFlagRequiresAddressable},
}

// BinarySpecs returns operand rules for the given operator.
func BinarySpecs(op ast.ExprBinaryOp) []BinarySpec {
	return binarySpecTable[op]
}

// UnarySpecFor returns operand/result hints for unary operators.
func UnarySpecFor(op ast.ExprUnaryOp) (UnarySpec, bool) {
	spec, ok := unarySpecTable[op]
	return spec, ok
}
