package types

// LayoutFields places fields of the given sizes one after another with no
// padding. offsets[i] is the sum of sizes[:i]; total is the sum of all sizes.
func LayoutFields(sizes []int) (offsets []int, total int) {
	offsets = make([]int, len(sizes))
	for i, size := range sizes {
		offsets[i] = total
		total += size
	}
	return offsets, total
}

// SizeOf returns the size of ty in words. int and real take one word, every
// other indirect value is one reference word, and a structure reports its own
// computed layout size.
func (t *Table) SizeOf(ty Type) (int, error) {
	switch ty.Kind {
	case KindBasic:
		if ty.Base != BaseStruct {
			if ty.Base == BaseNone {
				return 0, newError(ErrInvalid, "", ty)
			}
			return 1, nil
		}
		s, err := t.entry(ty)
		if err != nil {
			return 0, err
		}
		if s.Incomplete {
			return 0, newError(ErrIncompleteStruct, s.Name, ty)
		}
		return s.Size, nil
	case KindPointer, KindArray, KindFunction:
		return 1, nil
	case KindOptional:
		return 0, &Error{Kind: ErrUnsupported, Name: t.String(ty), Detail: "optional types have no layout", Type: ty}
	default:
		return 0, newError(ErrInvalid, "", ty)
	}
}

// ByteSize converts a size in words to bytes.
func (t *Table) ByteSize(words int) int {
	return words * t.opts.WordBits / 8
}
