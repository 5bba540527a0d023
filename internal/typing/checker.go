package typing

import (
	"errors"
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

type cached struct {
	ty  types.Type
	err error
}

// Checker types expressions. Results are cached per ExprID, so each failure
// is reported once no matter how many parents ask for it.
type Checker struct {
	Types    *types.Table
	Exprs    *ast.Exprs
	Strings  *source.Interner
	Symbols  Symbols
	Reporter diag.Reporter

	cache map[ast.ExprID]cached
}

// NewChecker binds a checker to its collaborators. reporter may be nil.
func NewChecker(tab *types.Table, exprs *ast.Exprs, strs *source.Interner, syms Symbols, reporter diag.Reporter) *Checker {
	return &Checker{
		Types:    tab,
		Exprs:    exprs,
		Strings:  strs,
		Symbols:  syms,
		Reporter: reporter,
		cache:    make(map[ast.ExprID]cached),
	}
}

// TypeOf returns the static type of id, or types.Invalid and an *Error.
func (c *Checker) TypeOf(id ast.ExprID) (types.Type, error) {
	if r, ok := c.cache[id]; ok {
		return r.ty, r.err
	}
	ty, err := c.typeOf(id)
	c.cache[id] = cached{ty: ty, err: err}
	return ty, err
}

// IsLValue reports whether id denotes addressable storage: a variable,
// an index, a member access or a dereference, possibly parenthesized.
func (c *Checker) IsLValue(id ast.ExprID) bool {
	id = c.Exprs.Unwrap(id)
	expr := c.Exprs.Get(id)
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case ast.ExprIdent, ast.ExprIndex, ast.ExprMember:
		return true
	case ast.ExprUnary:
		u, _ := c.Exprs.Unary(id)
		return u.Op == ast.ExprUnaryDeref
	default:
		return false
	}
}

func (c *Checker) typeOf(id ast.ExprID) (types.Type, error) {
	expr := c.Exprs.Get(id)
	if expr == nil {
		return types.Invalid, &Error{Code: diag.SemaError, Msg: fmt.Sprintf("expression #%d does not exist", id)}
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := c.Exprs.Literal(id)
		return c.literal(lit.Kind), nil
	case ast.ExprIdent:
		return c.ident(id, expr.Span)
	case ast.ExprGroup:
		g, _ := c.Exprs.Group(id)
		return c.TypeOf(g.Inner)
	case ast.ExprCall:
		return c.call(id, expr.Span)
	case ast.ExprMember:
		return c.member(id, expr.Span)
	case ast.ExprIndex:
		return c.index(id, expr.Span)
	case ast.ExprBinary:
		return c.binary(id, expr.Span)
	case ast.ExprUnary:
		return c.unary(id, expr.Span)
	case ast.ExprCast:
		return c.cast(id, expr.Span)
	default:
		return c.fail(expr.Span, diag.SemaError, "unsupported expression kind %s", expr.Kind)
	}
}

func (c *Checker) literal(kind ast.ExprLitKind) types.Type {
	switch kind {
	case ast.ExprLitInt:
		return types.MakeBasic(types.BaseInt)
	case ast.ExprLitReal:
		return types.MakeBasic(types.BaseReal)
	case ast.ExprLitString:
		return types.MakeBasic(types.BaseStr)
	default:
		return types.MakeBasic(types.BaseNull)
	}
}

func (c *Checker) ident(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Ident(id)
	if c.Symbols != nil {
		if ty, ok := c.Symbols.LookupSymbol(data.Name); ok && ty.IsValid() {
			return ty, nil
		}
	}
	return c.fail(span, diag.SemaUnresolvedSymbol, "unresolved name %q", c.name(data.Name))
}

func (c *Checker) call(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Call(id)
	callee, err := c.TypeOf(data.Target)
	if err != nil {
		return types.Invalid, err
	}
	sig, ok := c.Types.Signature(callee)
	if !ok {
		return c.fail(span, diag.SemaNotCallable, "cannot call a value of type %s", c.Types.String(callee))
	}
	if len(data.Args) != len(sig.Params) {
		return c.fail(span, diag.SemaArgCount, "expected %d arguments, got %d", len(sig.Params), len(data.Args))
	}
	for i, arg := range data.Args {
		argT, err := c.TypeOf(arg)
		if err != nil {
			return types.Invalid, err
		}
		param := c.Types.Lookup(sig.Params[i])
		if !c.Types.MatchesParam(argT, param) {
			return c.fail(c.span(arg), diag.SemaTypeMismatch, "argument %d: cannot use %s as %s", i+1, c.Types.String(argT), c.Types.String(param))
		}
	}
	return c.Types.Lookup(sig.Result), nil
}

func (c *Checker) member(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Member(id)
	target, err := c.TypeOf(data.Target)
	if err != nil {
		return types.Invalid, err
	}
	field := c.name(data.Field)
	if !types.IsStruct(target) {
		return c.fail(span, diag.SemaNoSuchField, "%s has no field %q", c.Types.String(target), field)
	}
	fields, err := c.Types.Fields(target)
	if err != nil {
		if errors.Is(err, types.ErrIncompleteStruct) {
			return c.fail(span, diag.SemaIncompleteStruct, "structure %s is not defined yet", c.Types.String(target))
		}
		return c.fail(span, diag.SemaError, "%v", err)
	}
	for _, f := range fields {
		if f.Name == source.NormalizeIdent(field) {
			return f.Type, nil
		}
	}
	return c.fail(span, diag.SemaNoSuchField, "%s has no field %q", c.Types.String(target), field)
}

func (c *Checker) index(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Index(id)
	target, err := c.TypeOf(data.Target)
	if err != nil {
		return types.Invalid, err
	}
	idx, err := c.TypeOf(data.Index)
	if err != nil {
		return types.Invalid, err
	}
	var elem types.Type
	switch {
	case target.Kind == types.KindArray:
		elem = c.Types.Elem(target)
	case types.IsBase(target, types.BaseArray), types.IsBase(target, types.BaseAny):
		elem = types.MakeBasic(types.BaseAny)
	default:
		return c.fail(span, diag.SemaNotIndexable, "cannot index a value of type %s", c.Types.String(target))
	}
	if !types.IsBase(idx, types.BaseInt) && !types.IsBase(idx, types.BaseAny) {
		return c.fail(c.span(data.Index), diag.SemaTypeMismatch, "index must be int, got %s", c.Types.String(idx))
	}
	return elem, nil
}

func (c *Checker) binary(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Binary(id)
	left, err := c.TypeOf(data.Left)
	if err != nil {
		return types.Invalid, err
	}
	right, err := c.TypeOf(data.Right)
	if err != nil {
		return types.Invalid, err
	}
	for _, spec := range types.BinarySpecs(data.Op) {
		if spec.Flags&types.BinaryFlagAssignment != 0 {
			return c.assign(data, span, left, right)
		}
		if !spec.Left.Accepts(left) || !spec.Right.Accepts(right) {
			continue
		}
		if spec.Flags&types.BinaryFlagSameFamily != 0 &&
			!c.Types.CanImplicitCast(left, right) && !c.Types.CanImplicitCast(right, left) {
			continue
		}
		switch spec.Result {
		case types.BinaryResultLeft:
			return left, nil
		case types.BinaryResultInt:
			return types.MakeBasic(types.BaseInt), nil
		case types.BinaryResultNumeric:
			if types.IsBase(left, types.BaseReal) || types.IsBase(right, types.BaseReal) {
				return types.MakeBasic(types.BaseReal), nil
			}
			return types.MakeBasic(types.BaseInt), nil
		}
	}
	return c.fail(span, diag.SemaInvalidBinaryOperands, "invalid operands for %s: %s and %s",
		data.Op, c.Types.String(left), c.Types.String(right))
}

func (c *Checker) assign(data *ast.ExprBinaryData, span source.Span, left, right types.Type) (types.Type, error) {
	if !c.IsLValue(data.Left) {
		return c.fail(c.span(data.Left), diag.SemaNotAddressable, "cannot assign to this expression")
	}
	if !c.Types.CanImplicitCast(right, left) {
		return c.fail(span, diag.SemaTypeMismatch, "cannot assign %s to %s", c.Types.String(right), c.Types.String(left))
	}
	return left, nil
}

func (c *Checker) unary(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Unary(id)
	operand, err := c.TypeOf(data.Operand)
	if err != nil {
		return types.Invalid, err
	}
	spec, ok := types.UnarySpecFor(data.Op)
	if !ok || !spec.Operand.Accepts(operand) {
		return c.fail(span, diag.SemaInvalidUnaryOperand, "invalid operand for %s: %s", data.Op, c.Types.String(operand))
	}
	if spec.Flags&types.UnaryFlagRequiresAddressable != 0 && !c.IsLValue(data.Operand) {
		return c.fail(span, diag.SemaNotAddressable, "cannot take the address of this expression")
	}
	switch spec.Result {
	case types.UnaryResultInt:
		return types.MakeBasic(types.BaseInt), nil
	case types.UnaryResultDeref:
		if operand.Kind == types.KindPointer {
			return c.Types.Elem(operand), nil
		}
		return types.MakeBasic(types.BaseAny), nil
	case types.UnaryResultReference:
		return c.Types.Pointer(operand, operand.Token), nil
	default:
		return operand, nil
	}
}

func (c *Checker) cast(id ast.ExprID, span source.Span) (types.Type, error) {
	data, _ := c.Exprs.Cast(id)
	value, err := c.TypeOf(data.Value)
	if err != nil {
		return types.Invalid, err
	}
	target := c.Types.FromRef(data.Type)
	if !target.IsValid() {
		return c.fail(span, diag.SemaUnknownType, "cast to an unknown type")
	}
	if !c.Types.CanExplicitCast(value, target) {
		return c.fail(span, diag.SemaInvalidCast, "cannot cast %s to %s", c.Types.String(value), c.Types.String(target))
	}
	return target, nil
}

func (c *Checker) fail(span source.Span, code diag.Code, format string, args ...any) (types.Type, error) {
	err := &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
	if c.Reporter != nil {
		diag.ReportError(c.Reporter, code, span, err.Msg).Emit()
	}
	return types.Invalid, err
}

func (c *Checker) span(id ast.ExprID) source.Span {
	if e := c.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}

func (c *Checker) name(id source.StringID) string {
	if c.Strings == nil {
		return fmt.Sprintf("#%d", id)
	}
	s, _ := c.Strings.Lookup(id)
	return s
}
