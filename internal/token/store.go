package token

import (
	"fmt"

	"fortio.org/safecast"

	"quill/internal/arena"
	"quill/internal/source"
)

// ID is a 1-based handle to a stored token. NoID is never issued.
type ID uint32

// NoID marks the absence of a token (synthesized types, builtins).
const NoID ID = 0

func (id ID) IsValid() bool { return id != NoID }

const initialLexemeBytes = 256

type record struct {
	kind Kind
	span source.Span
	off  uint32
	n    uint32
}

// Store keeps tokens for one compilation. Records live in an arena.Store,
// lexeme bytes in one raw chunk that grows through Arena.Reallocate.
type Store struct {
	arena   *arena.Arena
	records *arena.Store[record]
	lexemes arena.ChunkID
	used    int
}

// NewStore creates an empty token store backed by a.
func NewStore(a *arena.Arena) *Store {
	return &Store{
		arena:   a,
		records: arena.NewStore[record](a, 0),
	}
}

// Add stores tok and returns its handle.
func (s *Store) Add(tok Token) ID {
	off, err := safecast.Conv[uint32](s.used)
	if err != nil {
		panic(fmt.Errorf("token: lexeme offset overflow: %w", err))
	}
	n, err := safecast.Conv[uint32](len(tok.Text))
	if err != nil {
		panic(fmt.Errorf("token: lexeme length overflow: %w", err))
	}
	if n > 0 {
		s.ensure(s.used + len(tok.Text))
		copy(s.arena.Bytes(s.lexemes)[s.used:], tok.Text)
		s.used += len(tok.Text)
	}
	return ID(s.records.Allocate(record{kind: tok.Kind, span: tok.Span, off: off, n: n}))
}

// Get returns the token for id. Zero Token is returned for NoID or unknown ids.
func (s *Store) Get(id ID) Token {
	r := s.records.Get(uint32(id))
	if r == nil {
		return Token{}
	}
	tok := Token{Kind: r.kind, Span: r.span}
	if r.n > 0 {
		buf := s.arena.Bytes(s.lexemes)
		tok.Text = string(buf[r.off : r.off+r.n])
	}
	return tok
}

// Span returns only the span of id.
func (s *Store) Span(id ID) source.Span {
	if r := s.records.Get(uint32(id)); r != nil {
		return r.span
	}
	return source.Span{}
}

// Len reports the number of stored tokens.
func (s *Store) Len() int { return s.records.Len() }

// LexemeBytes reports how many lexeme bytes are in use.
func (s *Store) LexemeBytes() int { return s.used }

func (s *Store) ensure(need int) {
	if !s.lexemes.IsValid() {
		size := initialLexemeBytes
		for size < need {
			size *= 2
		}
		s.lexemes = s.arena.Allocate(size)
		return
	}
	size := len(s.arena.Bytes(s.lexemes))
	if need <= size {
		return
	}
	for size < need {
		size += size / 2
	}
	s.lexemes = s.arena.Reallocate(s.lexemes, size)
}
