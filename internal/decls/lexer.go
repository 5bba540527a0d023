package decls

import (
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"quill/internal/source"
	"quill/internal/token"
)

// lexer splits one type expression. Spans are absolute within file: the
// expression text starts at base.
type lexer struct {
	src  string
	pos  int
	file source.FileID
	base uint32
}

func newLexer(src string, file source.FileID, base uint32) *lexer {
	return &lexer{src: src, file: file, base: base}
}

func (lx *lexer) span(start, end int) source.Span {
	s, errS := safecast.Conv[uint32](start)
	e, errE := safecast.Conv[uint32](end)
	if errS != nil || errE != nil {
		return source.Span{File: lx.file, Start: lx.base, End: lx.base}
	}
	return source.Span{File: lx.file, Start: lx.base + s, End: lx.base + e}
}

// next returns the next token; at the end it keeps returning EOF.
func (lx *lexer) next() token.Token {
	for lx.pos < len(lx.src) {
		r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		lx.pos += w
	}
	start := lx.pos
	if start >= len(lx.src) {
		return token.Token{Kind: token.EOF, Span: lx.span(start, start)}
	}
	r, w := utf8.DecodeRuneInString(lx.src[start:])
	var kind token.Kind
	switch {
	case r == '*':
		kind = token.Star
	case r == '[':
		kind = token.LBracket
	case r == ']':
		kind = token.RBracket
	case r == '(':
		kind = token.LParen
	case r == ')':
		kind = token.RParen
	case r == ',':
		kind = token.Comma
	case r == '?':
		kind = token.Question
	case r >= '0' && r <= '9':
		end := start
		for end < len(lx.src) && lx.src[end] >= '0' && lx.src[end] <= '9' {
			end++
		}
		lx.pos = end
		return token.Token{Kind: token.IntLit, Span: lx.span(start, end), Text: lx.src[start:end]}
	case r == '_' || unicode.IsLetter(r):
		end := start + w
		for end < len(lx.src) {
			r2, w2 := utf8.DecodeRuneInString(lx.src[end:])
			if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) && !unicode.Is(unicode.Mn, r2) {
				break
			}
			end += w2
		}
		lx.pos = end
		text := lx.src[start:end]
		kind = token.Ident
		if kw, ok := token.LookupKeyword(text); ok {
			kind = kw
		}
		return token.Token{Kind: kind, Span: lx.span(start, end), Text: text}
	default:
		kind = token.Invalid
	}
	lx.pos = start + w
	return token.Token{Kind: kind, Span: lx.span(start, lx.pos), Text: lx.src[start:lx.pos]}
}
