package types

import (
	"strconv"
	"strings"
)

// String renders ty the way type expressions are written.
func (t *Table) String(ty Type) string {
	var b strings.Builder
	t.write(&b, ty, 0)
	return b.String()
}

const maxFormatDepth = 32

func (t *Table) write(b *strings.Builder, ty Type, depth int) {
	if depth > maxFormatDepth {
		b.WriteString("...")
		return
	}
	switch ty.Kind {
	case KindBasic:
		if ty.Base == BaseStruct {
			if s := t.structs.Get(uint32(ty.Struct)); s != nil {
				b.WriteString(s.Name)
				return
			}
			b.WriteString("<struct#" + strconv.FormatUint(uint64(ty.Struct), 10) + ">")
			return
		}
		b.WriteString(ty.Base.String())
	case KindPointer:
		b.WriteByte('*')
		t.write(b, t.Lookup(ty.Elem), depth+1)
	case KindArray:
		b.WriteByte('[')
		if ty.Len.IsValid() && t.opts.ArrayLen != nil {
			if n, ok := t.opts.ArrayLen(ty.Len); ok {
				b.WriteString(strconv.FormatUint(n, 10))
			}
		}
		b.WriteByte(']')
		t.write(b, t.Lookup(ty.Elem), depth+1)
	case KindFunction:
		sig, ok := t.Signature(ty)
		if !ok {
			b.WriteString("fn(?)")
			return
		}
		b.WriteString("fn(")
		for i, p := range sig.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			t.write(b, t.Lookup(p), depth+1)
		}
		b.WriteString(") ")
		t.write(b, t.Lookup(sig.Result), depth+1)
	case KindOptional:
		b.WriteByte('?')
		t.write(b, t.Lookup(ty.Elem), depth+1)
	default:
		b.WriteString("<invalid>")
	}
}
