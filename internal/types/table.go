package types

import (
	"fmt"
	"strings"

	"quill/internal/arena"
	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// DefaultWordBits is the width of one sizing word.
const DefaultWordBits = 32

// ArrayIdentity selects which array attributes take part in equality.
type ArrayIdentity uint8

const (
	// ArrayIdentityElement compares element types only.
	ArrayIdentityElement ArrayIdentity = iota
	// ArrayIdentityExact also compares emptiness and static length.
	ArrayIdentityExact
)

// ParseArrayIdentity accepts "element" or "exact".
func ParseArrayIdentity(s string) (ArrayIdentity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "element":
		return ArrayIdentityElement, nil
	case "exact":
		return ArrayIdentityExact, nil
	default:
		return ArrayIdentityElement, fmt.Errorf("unknown array identity %q (want element|exact)", s)
	}
}

func (a ArrayIdentity) String() string {
	if a == ArrayIdentityExact {
		return "exact"
	}
	return "element"
}

// AliasPolicy controls what DefineAlias does with an existing alias.
type AliasPolicy uint8

const (
	// AliasAllow lets the last definition win.
	AliasAllow AliasPolicy = iota
	// AliasReject reports ErrAliasRedefined.
	AliasReject
)

// ParseAliasPolicy accepts "allow" or "reject".
func ParseAliasPolicy(s string) (AliasPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return AliasAllow, nil
	case "reject":
		return AliasReject, nil
	default:
		return AliasAllow, fmt.Errorf("unknown alias policy %q (want allow|reject)", s)
	}
}

func (p AliasPolicy) String() string {
	if p == AliasReject {
		return "reject"
	}
	return "allow"
}

// ArrayLenFunc evaluates an array's initial-size expression. ok is false when
// the length is not a compile-time constant.
type ArrayLenFunc func(expr ast.ExprID) (n uint64, ok bool)

// Options configures a Table.
type Options struct {
	ArrayIdentity ArrayIdentity
	ArrayLen      ArrayLenFunc
	AliasPolicy   AliasPolicy
	WordBits      int
	Tracer        trace.Tracer
}

// Table resolves type names and owns every type, signature and structure
// descriptor through arena-backed stores.
type Table struct {
	arena   *arena.Arena
	opts    Options
	tracer  trace.Tracer
	types   *arena.Store[Type]
	sigs    *arena.Store[Signature]
	structs *arena.Store[Structure]

	builtins map[string]Base
	aliases  map[string]Type
	byName   map[string]StructID
}

var builtinNames = map[string]Base{
	"int":  BaseInt,
	"real": BaseReal,
	"str":  BaseStr,
	"void": BaseVoid,
}

// NewTable registers the built-in types and an empty structure registry.
func NewTable(a *arena.Arena, opts Options) *Table {
	if opts.WordBits <= 0 {
		opts.WordBits = DefaultWordBits
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	t := &Table{
		arena:    a,
		opts:     opts,
		tracer:   tracer,
		types:    arena.NewStore[Type](a, 0),
		sigs:     arena.NewStore[Signature](a, 0),
		structs:  arena.NewStore[Structure](a, 64),
		builtins: make(map[string]Base, len(builtinNames)),
		aliases:  make(map[string]Type, 16),
		byName:   make(map[string]StructID, 16),
	}
	for name, base := range builtinNames {
		t.builtins[name] = base
	}
	return t
}

// Options returns the options the table was built with.
func (t *Table) Options() Options { return t.opts }

// Alloc stores a descriptor and returns its handle. The invalid sentinel maps
// to NoTypeID.
func (t *Table) Alloc(ty Type) TypeID {
	if !ty.IsValid() {
		return NoTypeID
	}
	return TypeID(t.types.Allocate(ty))
}

// Lookup returns the descriptor for id, or Invalid.
func (t *Table) Lookup(id TypeID) Type {
	if p := t.types.Get(uint32(id)); p != nil {
		return *p
	}
	return Invalid
}

// Ref stores ty and returns the opaque handle syntax nodes carry.
func (t *Table) Ref(ty Type) ast.TypeRef { return ast.TypeRef(t.Alloc(ty)) }

// FromRef resolves a handle produced by Ref.
func (t *Table) FromRef(r ast.TypeRef) Type { return t.Lookup(TypeID(r)) }

// Signature returns the signature of a function type.
func (t *Table) Signature(ty Type) (Signature, bool) {
	if ty.Kind != KindFunction {
		return Signature{}, false
	}
	p := t.sigs.Get(uint32(ty.Sig))
	if p == nil {
		return Signature{}, false
	}
	return *p, true
}

// Elem returns the pointee, element or wrapped type.
func (t *Table) Elem(ty Type) Type {
	switch ty.Kind {
	case KindPointer, KindArray, KindOptional:
		return t.Lookup(ty.Elem)
	default:
		return Invalid
	}
}

// Constructors --------------------------------------------------------------

// Pointer describes *elem.
func (t *Table) Pointer(elem Type, tok token.ID) Type {
	if !elem.IsValid() {
		return Invalid
	}
	return Type{Kind: KindPointer, Elem: t.Alloc(elem), Token: tok}
}

// Array describes elem[]. size is the optional initial-size expression.
func (t *Table) Array(elem Type, size ast.ExprID, empty bool, tok token.ID) Type {
	if !elem.IsValid() {
		return Invalid
	}
	return Type{Kind: KindArray, Elem: t.Alloc(elem), Len: size, Empty: empty, Token: tok}
}

// Function describes fn(params...) result.
func (t *Table) Function(result Type, params []Type, tok token.ID) Type {
	if !result.IsValid() {
		return Invalid
	}
	ids := make([]TypeID, len(params))
	for i, p := range params {
		if !p.IsValid() {
			return Invalid
		}
		ids[i] = t.Alloc(p)
	}
	sig := Signature{Result: t.Alloc(result), Params: arena.Clone(t.arena, ids)}
	return Type{Kind: KindFunction, Sig: SigID(t.sigs.Allocate(sig)), Token: tok}
}

// Optional describes ?elem. The kind is reserved: the table can represent it
// but equality, casts and sizing reject it.
func (t *Table) Optional(elem Type, tok token.ID) Type {
	if !elem.IsValid() {
		return Invalid
	}
	return Type{Kind: KindOptional, Elem: t.Alloc(elem), Token: tok}
}

// Names ---------------------------------------------------------------------

// IsBuiltinName reports whether name is a built-in type name.
func (t *Table) IsBuiltinName(name string) bool {
	_, ok := t.builtins[source.NormalizeIdent(name)]
	return ok
}

// ResolveName is Resolve without a token.
func (t *Table) ResolveName(name string) (Type, error) {
	return t.Resolve(name, token.NoID)
}

// Resolve looks name up among built-ins, then typedef aliases, then
// structures. The returned value points at tok.
func (t *Table) Resolve(name string, tok token.ID) (Type, error) {
	key := source.NormalizeIdent(name)
	if base, ok := t.builtins[key]; ok {
		return MakeBasic(base).WithToken(tok), nil
	}
	if ty, ok := t.aliases[key]; ok {
		return ty.WithToken(tok), nil
	}
	if id, ok := t.byName[key]; ok {
		return MakeStruct(id).WithToken(tok), nil
	}
	return Invalid, newError(ErrUnknownType, name, Type{Token: tok})
}

// DefineAlias binds name to target. Aliases never chain: target is already a
// resolved value, so resolving name yields it directly.
func (t *Table) DefineAlias(name string, target Type) error {
	key := source.NormalizeIdent(name)
	if _, ok := t.builtins[key]; ok {
		return newError(ErrReservedName, name, target)
	}
	if _, ok := t.byName[key]; ok {
		return &Error{Kind: ErrReservedName, Name: name, Detail: "already a struct", Type: target}
	}
	if !target.IsValid() {
		return newError(ErrInvalid, name, target)
	}
	if _, ok := t.aliases[key]; ok && t.opts.AliasPolicy == AliasReject {
		return newError(ErrAliasRedefined, name, target)
	}
	t.aliases[key] = target.WithToken(token.NoID)
	trace.Point(t.tracer, trace.ScopeTypes, "types.alias", key+" = "+t.String(target))
	return nil
}

// Aliases reports the number of typedef aliases.
func (t *Table) Aliases() int { return len(t.aliases) }
