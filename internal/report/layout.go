// Package report renders the structure registry for humans (aligned text),
// tools (JSON) and code generators (msgpack).
package report

import (
	"quill/internal/arena"
	"quill/internal/source"
	"quill/internal/types"
)

// FieldRow is one laid-out field. Offsets and sizes are given in words and bytes.
type FieldRow struct {
	Name       string `json:"name" msgpack:"name"`
	Type       string `json:"type" msgpack:"type"`
	Offset     int    `json:"offset" msgpack:"offset"`
	Size       int    `json:"size" msgpack:"size"`
	ByteOffset int    `json:"byte_offset" msgpack:"byte_offset"`
	ByteSize   int    `json:"byte_size" msgpack:"byte_size"`
}

// StructRow describes one registry entry. Incomplete entries carry no fields.
type StructRow struct {
	Name       string     `json:"name" msgpack:"name"`
	Incomplete bool       `json:"incomplete,omitempty" msgpack:"incomplete,omitempty"`
	Size       int        `json:"size" msgpack:"size"`
	ByteSize   int        `json:"byte_size" msgpack:"byte_size"`
	Fields     []FieldRow `json:"fields" msgpack:"fields"`
}

// Layout is the exported view of a built table.
type Layout struct {
	WordBits int          `json:"word_bits" msgpack:"word_bits"`
	Aliases  int          `json:"aliases" msgpack:"aliases"`
	Structs  []StructRow  `json:"structs" msgpack:"structs"`
	Arena    *arena.Stats `json:"arena,omitempty" msgpack:"arena,omitempty"`
}

// Collect snapshots every structure of tab in declaration order.
func Collect(tab *types.Table) Layout {
	out := Layout{
		WordBits: tab.Options().WordBits,
		Aliases:  tab.Aliases(),
		Structs:  make([]StructRow, 0, tab.StructCount()),
	}
	tab.Structs(func(_ types.Type, s *types.Structure) {
		row := StructRow{
			Name:       s.Name,
			Incomplete: s.Incomplete,
			Size:       s.Size,
			ByteSize:   tab.ByteSize(s.Size),
			Fields:     make([]FieldRow, 0, len(s.Fields)),
		}
		for _, f := range s.Fields {
			row.Fields = append(row.Fields, FieldRow{
				Name:       f.Name,
				Type:       tab.String(f.Type),
				Offset:     f.Offset,
				Size:       f.Size,
				ByteOffset: tab.ByteSize(f.Offset),
				ByteSize:   tab.ByteSize(f.Size),
			})
		}
		out.Structs = append(out.Structs, row)
	})
	return out
}

// Filter keeps only the named structures, in the order of names. Names are
// NFC-normalized the way the registry stores them. Unknown names are
// returned separately, as given.
func (l Layout) Filter(names []string) (Layout, []string) {
	if len(names) == 0 {
		return l, nil
	}
	byName := make(map[string]StructRow, len(l.Structs))
	for _, s := range l.Structs {
		byName[s.Name] = s
	}
	out := l
	out.Structs = make([]StructRow, 0, len(names))
	var missing []string
	for _, n := range names {
		s, ok := byName[source.NormalizeIdent(n)]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out.Structs = append(out.Structs, s)
	}
	return out, missing
}
