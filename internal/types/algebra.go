package types

// Equal reports structural equality. Handles and tokens never matter; the
// invalid sentinel and the reserved optional kind are never equal to anything.
func (t *Table) Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBasic:
		if a.Base != b.Base {
			return false
		}
		return a.Base != BaseStruct || a.Struct == b.Struct
	case KindPointer:
		return t.Equal(t.Lookup(a.Elem), t.Lookup(b.Elem))
	case KindArray:
		if !t.Equal(t.Lookup(a.Elem), t.Lookup(b.Elem)) {
			return false
		}
		if t.opts.ArrayIdentity == ArrayIdentityExact {
			return t.sameArrayShape(a, b)
		}
		return true
	case KindFunction:
		return t.sameSignature(a, b)
	default:
		return false
	}
}

func (t *Table) sameArrayShape(a, b Type) bool {
	if a.Empty != b.Empty {
		return false
	}
	if a.Len == b.Len {
		return true
	}
	if t.opts.ArrayLen == nil {
		return false
	}
	na, okA := t.opts.ArrayLen(a.Len)
	nb, okB := t.opts.ArrayLen(b.Len)
	return okA && okB && na == nb
}

func (t *Table) sameSignature(a, b Type) bool {
	sa, okA := t.Signature(a)
	sb, okB := t.Signature(b)
	if !okA || !okB {
		return false
	}
	if len(sa.Params) != len(sb.Params) {
		return false
	}
	if !t.Equal(t.Lookup(sa.Result), t.Lookup(sb.Result)) {
		return false
	}
	for i := range sa.Params {
		if !t.Equal(t.Lookup(sa.Params[i]), t.Lookup(sb.Params[i])) {
			return false
		}
	}
	return true
}

func rejected(ty Type) bool {
	return ty.Kind == KindInvalid || ty.Kind == KindOptional
}

// CanImplicitCast reports whether from converts to to without a cast:
// identity, int to real, null to any indirect type, and anything to or from
// the ANY sentinel.
func (t *Table) CanImplicitCast(from, to Type) bool {
	if rejected(from) || rejected(to) {
		return false
	}
	if t.Equal(from, to) {
		return true
	}
	if IsBase(from, BaseAny) || IsBase(to, BaseAny) {
		return true
	}
	if IsBase(from, BaseInt) && IsBase(to, BaseReal) {
		return true
	}
	return IsBase(from, BaseNull) && IsIndirect(to)
}

// CanExplicitCast extends CanImplicitCast with numeric conversions and
// pointer casts between equal pointees or through the POINTER sentinel.
func (t *Table) CanExplicitCast(from, to Type) bool {
	if t.CanImplicitCast(from, to) {
		return true
	}
	if rejected(from) || rejected(to) {
		return false
	}
	if IsNumeric(from) && IsNumeric(to) {
		return true
	}
	if !isPointerLike(from) || !isPointerLike(to) {
		return false
	}
	if IsBase(from, BasePointer) || IsBase(to, BasePointer) {
		return true
	}
	return t.Equal(t.Lookup(from.Elem), t.Lookup(to.Elem))
}

// MatchesParam reports whether arg may be passed for a builtin parameter of
// type param. The ARRAY and POINTER sentinels accept any array or pointer.
func (t *Table) MatchesParam(arg, param Type) bool {
	if t.CanImplicitCast(arg, param) {
		return true
	}
	switch {
	case IsBase(param, BaseArray):
		return arg.Kind == KindArray
	case IsBase(param, BasePointer):
		return arg.Kind == KindPointer
	default:
		return false
	}
}
