package ast

type (
	ExprID    uint32
	PayloadID uint32
	// TypeRef is an opaque handle issued by the type table (a types.TypeID).
	// ast never interprets it.
	TypeRef uint32
)

const (
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
	NoTypeRef   TypeRef   = 0
)

func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
func (r TypeRef) IsValid() bool    { return r != NoTypeRef }
