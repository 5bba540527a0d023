package types

import (
	"fmt"

	"quill/internal/arena"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// Field is one laid-out member of a defined structure. Offset and Size are
// in words.
type Field struct {
	Name   string
	Type   Type
	Offset int
	Size   int
}

// FieldDecl is a field as handed to Define, before layout.
type FieldDecl struct {
	Name  string
	Type  Type
	Token token.ID
}

// Structure is a registry entry. It starts Declared (Incomplete, Size 0) and
// becomes Defined exactly once.
type Structure struct {
	Name       string
	Incomplete bool
	Size       int
	Fields     []Field
	Token      token.ID
}

// Field returns the field called name.
func (s *Structure) Field(name string) (Field, bool) {
	name = source.NormalizeIdent(name)
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ForwardDeclare registers name as an incomplete structure. Declaring an
// existing structure again returns the same slot.
func (t *Table) ForwardDeclare(name string, tok token.ID) (Type, error) {
	key := source.NormalizeIdent(name)
	if _, ok := t.builtins[key]; ok {
		return Invalid, newError(ErrReservedName, name, Type{Token: tok})
	}
	if _, ok := t.aliases[key]; ok {
		return Invalid, &Error{Kind: ErrReservedName, Name: name, Detail: "already a typedef", Type: Type{Token: tok}}
	}
	if id, ok := t.byName[key]; ok {
		return MakeStruct(id).WithToken(tok), nil
	}
	id := StructID(t.structs.Allocate(Structure{Name: key, Incomplete: true, Token: tok}))
	t.byName[key] = id
	trace.Point(t.tracer, trace.ScopeTypes, "types.declare", key)
	return MakeStruct(id).WithToken(tok), nil
}

// Define lays out fields and completes the structure referenced by ty. On
// error the structure is left Declared.
func (t *Table) Define(ty Type, fields []FieldDecl) error {
	s, err := t.entry(ty)
	if err != nil {
		return err
	}
	if !s.Incomplete {
		return newError(ErrStructRedefined, s.Name, ty)
	}

	laid := make([]Field, len(fields))
	sizes := make([]int, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for i, fd := range fields {
		name := source.NormalizeIdent(fd.Name)
		if _, dup := seen[name]; dup {
			return &Error{Kind: ErrDuplicateField, Name: s.Name, Detail: "field " + name, Type: fd.Type.WithToken(fd.Token)}
		}
		seen[name] = struct{}{}
		size, err := t.SizeOf(fd.Type)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", s.Name, name, err)
		}
		laid[i] = Field{Name: name, Type: fd.Type, Size: size}
		sizes[i] = size
	}
	offsets, total := LayoutFields(sizes)
	for i := range laid {
		laid[i].Offset = offsets[i]
	}

	s.Fields = arena.Clone(t.arena, laid)
	s.Size = total
	s.Incomplete = false
	trace.Point(t.tracer, trace.ScopeTypes, "types.define", fmt.Sprintf("%s size=%d fields=%d", s.Name, total, len(laid)))
	return nil
}

// Struct returns the registry entry referenced by ty, complete or not.
func (t *Table) Struct(ty Type) (*Structure, error) {
	return t.entry(ty)
}

// Fields returns the laid-out fields of a defined structure.
func (t *Table) Fields(ty Type) ([]Field, error) {
	s, err := t.entry(ty)
	if err != nil {
		return nil, err
	}
	if s.Incomplete {
		return nil, newError(ErrIncompleteStruct, s.Name, ty)
	}
	return s.Fields, nil
}

// StructByName returns the structure type registered as name.
func (t *Table) StructByName(name string) (Type, bool) {
	id, ok := t.byName[source.NormalizeIdent(name)]
	if !ok {
		return Invalid, false
	}
	return MakeStruct(id), true
}

// Structs calls fn for every registered structure in declaration order.
func (t *Table) Structs(fn func(ty Type, s *Structure)) {
	t.structs.Each(func(h uint32, s *Structure) {
		fn(MakeStruct(StructID(h)), s)
	})
}

// StructCount reports the number of registered structures.
func (t *Table) StructCount() int { return t.structs.Len() }

func (t *Table) entry(ty Type) (*Structure, error) {
	if !IsStruct(ty) {
		return nil, newError(ErrNotStruct, t.String(ty), ty)
	}
	s := t.structs.Get(uint32(ty.Struct))
	if s == nil {
		return nil, newError(ErrUnknownStruct, fmt.Sprintf("#%d", ty.Struct), ty)
	}
	return s, nil
}
