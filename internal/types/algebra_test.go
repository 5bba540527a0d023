package types

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/token"
)

// sampleTypes builds a spread of constructible values, nested ones included.
func sampleTypes(tab *Table) []Type {
	intT, realT, strT := MakeBasic(BaseInt), MakeBasic(BaseReal), MakeBasic(BaseStr)
	node, _ := tab.ForwardDeclare("Node", token.NoID)
	ptrInt := tab.Pointer(intT, token.NoID)
	arrPtr := tab.Array(ptrInt, ast.NoExprID, true, token.NoID)
	fn := tab.Function(realT, []Type{intT, arrPtr}, token.NoID)
	return []Type{
		intT, realT, strT, MakeBasic(BaseVoid),
		MakeBasic(BaseNull), MakeBasic(BaseAny), MakeBasic(BasePointer), MakeBasic(BaseArray),
		node,
		ptrInt,
		tab.Pointer(tab.Pointer(node, token.NoID), token.NoID),
		arrPtr,
		tab.Array(realT, ast.NoExprID, false, token.NoID),
		fn,
		tab.Function(realT, []Type{arrPtr, intT}, token.NoID),
		tab.Function(realT, nil, token.NoID),
		tab.Pointer(fn, token.NoID),
	}
}

func TestEqualIsReflexive(t *testing.T) {
	tab := newTestTable(t, Options{})
	for _, ty := range sampleTypes(tab) {
		if !tab.Equal(ty, ty) {
			t.Fatalf("Equal(%s, %s) = false", tab.String(ty), tab.String(ty))
		}
	}
}

func TestEqualIsSymmetric(t *testing.T) {
	tab := newTestTable(t, Options{})
	all := sampleTypes(tab)
	for _, a := range all {
		for _, b := range all {
			if tab.Equal(a, b) != tab.Equal(b, a) {
				t.Fatalf("Equal not symmetric for %s and %s", tab.String(a), tab.String(b))
			}
		}
	}
}

func TestEqualIsStructuralNotByHandle(t *testing.T) {
	tab := newTestTable(t, Options{})
	intT := MakeBasic(BaseInt)
	a := tab.Pointer(tab.Array(intT, ast.NoExprID, true, 1), 2)
	b := tab.Pointer(tab.Array(intT, ast.NoExprID, true, 3), 4)
	if a.Elem == b.Elem {
		t.Fatalf("test expects distinct element handles")
	}
	if !tab.Equal(a, b) {
		t.Fatalf("structurally identical pointers compare unequal")
	}
	f1 := tab.Function(intT, []Type{intT, MakeBasic(BaseStr)}, token.NoID)
	f2 := tab.Function(intT, []Type{MakeBasic(BaseStr), intT}, token.NoID)
	f3 := tab.Function(intT, []Type{intT}, token.NoID)
	if tab.Equal(f1, f2) || tab.Equal(f1, f3) {
		t.Fatalf("parameter order and arity must matter")
	}
}

func TestDistinctStructsAreUnequal(t *testing.T) {
	tab := newTestTable(t, Options{})
	a, _ := tab.ForwardDeclare("A", token.NoID)
	b, _ := tab.ForwardDeclare("B", token.NoID)
	if tab.Equal(a, b) {
		t.Fatalf("different structures compare equal")
	}
}

func TestArrayIdentityPolicies(t *testing.T) {
	lens := map[ast.ExprID]uint64{1: 4, 2: 4, 3: 5}
	lenFn := func(e ast.ExprID) (uint64, bool) { n, ok := lens[e]; return n, ok }
	intT := MakeBasic(BaseInt)

	elem := newTestTable(t, Options{ArrayLen: lenFn})
	if !elem.Equal(elem.Array(intT, 1, false, 0), elem.Array(intT, 3, false, 0)) {
		t.Fatalf("element identity must ignore size")
	}
	if !elem.Equal(elem.Array(intT, ast.NoExprID, true, 0), elem.Array(intT, 1, false, 0)) {
		t.Fatalf("element identity must ignore emptiness")
	}

	exact := newTestTable(t, Options{ArrayIdentity: ArrayIdentityExact, ArrayLen: lenFn})
	if !exact.Equal(exact.Array(intT, 1, false, 0), exact.Array(intT, 2, false, 0)) {
		t.Fatalf("equal constant lengths must match under exact identity")
	}
	if exact.Equal(exact.Array(intT, 1, false, 0), exact.Array(intT, 3, false, 0)) {
		t.Fatalf("different lengths must differ under exact identity")
	}
	if exact.Equal(exact.Array(intT, ast.NoExprID, true, 0), exact.Array(intT, ast.NoExprID, false, 0)) {
		t.Fatalf("emptiness must matter under exact identity")
	}
}

func TestOptionalIsRejected(t *testing.T) {
	tab := newTestTable(t, Options{})
	opt := tab.Optional(MakeBasic(BaseInt), token.NoID)
	if tab.Equal(opt, opt) {
		t.Fatalf("optional must not take part in equality")
	}
	if tab.CanImplicitCast(opt, opt) || tab.CanExplicitCast(opt, MakeBasic(BaseInt)) {
		t.Fatalf("optional must not take part in casts")
	}
	if tab.CanImplicitCast(MakeBasic(BaseNull), opt) || tab.CanImplicitCast(opt, MakeBasic(BaseAny)) {
		t.Fatalf("sentinels must not reach optional")
	}
	if _, err := tab.SizeOf(opt); err == nil {
		t.Fatalf("optional must have no size")
	}
	if IsIndirect(opt) {
		t.Fatalf("optional must not be classified")
	}
}

func TestClassification(t *testing.T) {
	tab := newTestTable(t, Options{})
	node, _ := tab.ForwardDeclare("Node", token.NoID)
	if !IsStruct(node) || IsStruct(MakeBasic(BaseInt)) || IsStruct(tab.Pointer(node, 0)) {
		t.Fatalf("IsStruct misclassified")
	}
	direct := []Type{MakeBasic(BaseInt), MakeBasic(BaseReal)}
	for _, ty := range direct {
		if IsIndirect(ty) {
			t.Fatalf("%s must be direct", tab.String(ty))
		}
	}
	indirect := []Type{
		MakeBasic(BaseStr), node, tab.Pointer(MakeBasic(BaseInt), 0),
		tab.Array(MakeBasic(BaseInt), 0, true, 0), tab.Function(MakeBasic(BaseVoid), nil, 0),
	}
	for _, ty := range indirect {
		if !IsIndirect(ty) {
			t.Fatalf("%s must be indirect", tab.String(ty))
		}
	}
}

func TestImplicitCasts(t *testing.T) {
	tab := newTestTable(t, Options{})
	intT, realT, strT := MakeBasic(BaseInt), MakeBasic(BaseReal), MakeBasic(BaseStr)
	null, anyT := MakeBasic(BaseNull), MakeBasic(BaseAny)
	ptrInt := tab.Pointer(intT, 0)
	cases := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"int->real", intT, realT, true},
		{"real->int", realT, intT, false},
		{"null->*int", null, ptrInt, true},
		{"null->str", null, strT, true},
		{"null->int", null, intT, false},
		{"str->int", strT, intT, false},
		{"identity", ptrInt, tab.Pointer(intT, 0), true},
		{"any->int", anyT, intT, true},
		{"str->any", strT, anyT, true},
		{"*int->*real", ptrInt, tab.Pointer(realT, 0), false},
	}
	for _, tc := range cases {
		if got := tab.CanImplicitCast(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s: CanImplicitCast = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExplicitCasts(t *testing.T) {
	tab := newTestTable(t, Options{})
	intT, realT, strT := MakeBasic(BaseInt), MakeBasic(BaseReal), MakeBasic(BaseStr)
	ptrInt := tab.Pointer(intT, 0)
	ptrReal := tab.Pointer(realT, 0)
	cases := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"real->int", realT, intT, true},
		{"int->real", intT, realT, true},
		{"*int->*int", ptrInt, tab.Pointer(intT, 0), true},
		{"*int->*real", ptrInt, ptrReal, false},
		{"*int-><pointer>", ptrInt, MakeBasic(BasePointer), true},
		{"<pointer>->*real", MakeBasic(BasePointer), ptrReal, true},
		{"str->int", strT, intT, false},
		{"int->*int", intT, ptrInt, false},
	}
	for _, tc := range cases {
		if got := tab.CanExplicitCast(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s: CanExplicitCast = %v, want %v", tc.name, got, tc.want)
		}
	}
	if tab.CanImplicitCast(realT, intT) {
		t.Fatalf("real->int must stay explicit-only")
	}
}

func TestExplicitIsSupersetOfImplicit(t *testing.T) {
	tab := newTestTable(t, Options{})
	all := sampleTypes(tab)
	for _, a := range all {
		for _, b := range all {
			if tab.CanImplicitCast(a, b) && !tab.CanExplicitCast(a, b) {
				t.Fatalf("%s -> %s implicit but not explicit", tab.String(a), tab.String(b))
			}
		}
	}
}

func TestMatchesParamSentinels(t *testing.T) {
	tab := newTestTable(t, Options{})
	intT := MakeBasic(BaseInt)
	arr := tab.Array(intT, 0, true, 0)
	ptr := tab.Pointer(intT, 0)
	if !tab.MatchesParam(arr, MakeBasic(BaseArray)) {
		t.Fatalf("<array> must accept any array")
	}
	if !tab.MatchesParam(ptr, MakeBasic(BasePointer)) {
		t.Fatalf("<pointer> must accept any pointer")
	}
	if tab.MatchesParam(intT, MakeBasic(BaseArray)) || tab.MatchesParam(arr, MakeBasic(BasePointer)) {
		t.Fatalf("sentinels must not accept other kinds")
	}
	if !tab.MatchesParam(intT, MakeBasic(BaseReal)) {
		t.Fatalf("params accept implicit casts")
	}
}
