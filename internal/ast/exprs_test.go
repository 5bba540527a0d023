package ast

import (
	"testing"

	"quill/internal/arena"
	"quill/internal/source"
)

func TestExprsBuildAndAccess(t *testing.T) {
	a := arena.New(arena.Options{InitialSlots: 8})
	strs := source.NewInterner()
	e := NewExprs(a, 4)

	x := e.NewIdent(source.Span{Start: 0, End: 1}, strs.Intern("x"))
	one := e.NewLiteral(source.Span{Start: 4, End: 5}, ExprLitInt, strs.Intern("1"))
	sum := e.NewBinary(source.Span{Start: 0, End: 5}, ExprBinaryAdd, x, one)
	grp := e.NewGroup(source.Span{Start: 0, End: 7}, e.NewGroup(source.Span{}, sum))

	bin, ok := e.Binary(sum)
	if !ok || bin.Left != x || bin.Right != one || bin.Op.String() != "+" {
		t.Fatalf("unexpected binary payload %+v", bin)
	}
	if _, ok := e.Ident(sum); ok {
		t.Fatalf("binary must not decode as ident")
	}
	if got := e.Unwrap(grp); got != sum {
		t.Fatalf("Unwrap = %d, want %d", got, sum)
	}
	if e.Get(NoExprID) != nil {
		t.Fatalf("NoExprID must resolve to nil")
	}
}

func TestCallArgsAreCopied(t *testing.T) {
	a := arena.New(arena.Options{InitialSlots: 8})
	e := NewExprs(a, 0)
	f := e.NewIdent(source.Span{}, 1)
	args := []ExprID{e.NewIdent(source.Span{}, 2), e.NewIdent(source.Span{}, 3)}
	call := e.NewCall(source.Span{}, f, args)
	args[0] = NoExprID

	data, ok := e.Call(call)
	if !ok || len(data.Args) != 2 || data.Args[0] == NoExprID {
		t.Fatalf("call args not copied: %+v", data)
	}
}
