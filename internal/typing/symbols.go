package typing

import (
	"quill/internal/source"
	"quill/internal/types"
)

// Symbols is the external symbol table consulted for identifiers.
type Symbols interface {
	LookupSymbol(name source.StringID) (types.Type, bool)
}

// Scope is a flat Symbols backed by a map.
type Scope map[source.StringID]types.Type

func (s Scope) LookupSymbol(name source.StringID) (types.Type, bool) {
	t, ok := s[name]
	return t, ok
}

// Declare binds name to t, replacing any previous binding.
func (s Scope) Declare(name source.StringID, t types.Type) { s[name] = t }
