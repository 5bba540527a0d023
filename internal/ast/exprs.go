package ast

import (
	"quill/internal/arena"
	"quill/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	arena    *arena.Arena
	Arena    *arena.Store[Expr]
	Idents   *arena.Store[ExprIdentData]
	Literals *arena.Store[ExprLiteralData]
	Binaries *arena.Store[ExprBinaryData]
	Unaries  *arena.Store[ExprUnaryData]
	Casts    *arena.Store[ExprCastData]
	Calls    *arena.Store[ExprCallData]
	Indices  *arena.Store[ExprIndexData]
	Members  *arena.Store[ExprMemberData]
	Groups   *arena.Store[ExprGroupData]
}

// NewExprs creates a new Exprs whose per-kind stores allocate blocks of
// blockLen nodes from a. A zero blockLen uses 1<<8.
func NewExprs(a *arena.Arena, blockLen int) *Exprs {
	if blockLen == 0 {
		blockLen = 1 << 8
	}
	return &Exprs{
		arena:    a,
		Arena:    arena.NewStore[Expr](a, blockLen),
		Idents:   arena.NewStore[ExprIdentData](a, blockLen),
		Literals: arena.NewStore[ExprLiteralData](a, blockLen),
		Binaries: arena.NewStore[ExprBinaryData](a, blockLen),
		Unaries:  arena.NewStore[ExprUnaryData](a, blockLen),
		Casts:    arena.NewStore[ExprCastData](a, blockLen),
		Calls:    arena.NewStore[ExprCallData](a, blockLen),
		Indices:  arena.NewStore[ExprIndexData](a, blockLen),
		Members:  arena.NewStore[ExprMemberData](a, blockLen),
		Groups:   arena.NewStore[ExprGroupData](a, blockLen),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// payload returns the payload handle of id when it has the wanted kind.
func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(ExprIdentData{Name: name}))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value}))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

// Binary returns the binary expression data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewCast creates `(typ) value`.
func (e *Exprs) NewCast(span source.Span, value ExprID, typ TypeRef) ExprID {
	return e.new(ExprCast, span, e.Casts.Allocate(ExprCastData{Value: value, Type: typ}))
}

func (e *Exprs) Cast(id ExprID) (*ExprCastData, bool) {
	p, ok := e.payload(id, ExprCast)
	if !ok {
		return nil, false
	}
	return e.Casts.Get(p), true
}

// NewCall creates a call expression. The argument list is copied into the arena.
func (e *Exprs) NewCall(span source.Span, target ExprID, args []ExprID) ExprID {
	data := ExprCallData{Target: target, Args: arena.Clone(e.arena, args)}
	return e.new(ExprCall, span, e.Calls.Allocate(data))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewIndex creates `target[index]`.
func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

// NewMember creates `target.field`.
func (e *Exprs) NewMember(span source.Span, target ExprID, field source.StringID) ExprID {
	return e.new(ExprMember, span, e.Members.Allocate(ExprMemberData{Target: target, Field: field}))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	p, ok := e.payload(id, ExprMember)
	if !ok {
		return nil, false
	}
	return e.Members.Get(p), true
}

// NewGroup creates a parenthesized expression.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	return e.new(ExprGroup, span, e.Groups.Allocate(ExprGroupData{Inner: inner}))
}

func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	p, ok := e.payload(id, ExprGroup)
	if !ok {
		return nil, false
	}
	return e.Groups.Get(p), true
}

// Unwrap strips any number of enclosing groups.
func (e *Exprs) Unwrap(id ExprID) ExprID {
	for {
		g, ok := e.Group(id)
		if !ok {
			return id
		}
		id = g.Inner
	}
}
