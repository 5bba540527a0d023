package report

import "quill/internal/types"

// Relation answers every algebra question about an ordered pair of types.
type Relation struct {
	From         string `json:"from" msgpack:"from"`
	To           string `json:"to" msgpack:"to"`
	Equal        bool   `json:"equal" msgpack:"equal"`
	Implicit     bool   `json:"implicit" msgpack:"implicit"`
	Explicit     bool   `json:"explicit" msgpack:"explicit"`
	MatchesParam bool   `json:"matches_param" msgpack:"matches_param"`
	FromSize     int    `json:"from_size" msgpack:"from_size"`
	ToSize       int    `json:"to_size" msgpack:"to_size"`
}

// Relate evaluates from -> to. Sizes are -1 when a type has no layout.
func Relate(tab *types.Table, from, to types.Type) Relation {
	return Relation{
		From:         tab.String(from),
		To:           tab.String(to),
		Equal:        tab.Equal(from, to),
		Implicit:     tab.CanImplicitCast(from, to),
		Explicit:     tab.CanExplicitCast(from, to),
		MatchesParam: tab.MatchesParam(from, to),
		FromSize:     sizeOrNone(tab, from),
		ToSize:       sizeOrNone(tab, to),
	}
}

func sizeOrNone(tab *types.Table, ty types.Type) int {
	n, err := tab.SizeOf(ty)
	if err != nil {
		return -1
	}
	return n
}
