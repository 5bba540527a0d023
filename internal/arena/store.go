package arena

import (
	"fmt"
	"unsafe"

	"fortio.org/safecast"
)

// DefaultBlockLen is the number of elements per Store block.
const DefaultBlockLen = 256

// Store is an append-only, arena-tracked container of T addressed by 1-based
// handles. Blocks never move once allocated, so pointers returned by Get stay
// valid until the owning Arena is released.
type Store[T any] struct {
	arena    *Arena
	blocks   [][]T
	blockLen int
	n        int
}

// NewStore creates a Store whose blocks hold blockLen elements.
func NewStore[T any](a *Arena, blockLen int) *Store[T] {
	if blockLen <= 0 {
		blockLen = DefaultBlockLen
	}
	return &Store[T]{arena: a, blockLen: blockLen}
}

// Allocate appends value and returns its handle (never 0).
func (s *Store[T]) Allocate(value T) uint32 {
	if s.n == len(s.blocks)*s.blockLen {
		s.newBlock()
	}
	b := s.n / s.blockLen
	s.blocks[b] = append(s.blocks[b], value)
	s.n++
	h, err := safecast.Conv[uint32](s.n)
	if err != nil {
		s.arena.fatal(fmt.Errorf("arena: store handle overflow: %w", err))
	}
	return h
}

// Get returns the element for handle h, or nil when h is 0 or out of range.
func (s *Store[T]) Get(h uint32) *T {
	if s.arena.released {
		s.arena.fatal(fmt.Errorf("arena: store handle %d used after release", h))
		return nil
	}
	if h == 0 || int(h) > s.n {
		return nil
	}
	i := int(h) - 1
	return &s.blocks[i/s.blockLen][i%s.blockLen]
}

// Len reports the number of stored elements.
func (s *Store[T]) Len() int { return s.n }

// Each calls fn for every element in allocation order.
func (s *Store[T]) Each(fn func(h uint32, v *T)) {
	var h uint32
	for _, block := range s.blocks {
		for i := range block {
			h++
			fn(h, &block[i])
		}
	}
}

func (s *Store[T]) newBlock() {
	var zero T
	size := int(unsafe.Sizeof(zero)) * s.blockLen
	idx := len(s.blocks)
	s.blocks = append(s.blocks, make([]T, 0, s.blockLen))
	s.arena.track(size, func() {
		if idx < len(s.blocks) {
			s.blocks[idx] = nil
		}
	})
}

// Clone copies src into a single tracked chunk. A nil or empty src yields nil.
func Clone[T any](a *Arena, src []T) []T {
	if len(src) == 0 {
		return nil
	}
	var zero T
	out := make([]T, len(src))
	copy(out, src)
	a.track(int(unsafe.Sizeof(zero))*len(src), nil)
	return out
}
