package decls

import (
	"regexp"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"quill/internal/source"
)

// locator finds the source spans of decoded manifest values by scanning the
// file text forward from a cursor.
type locator struct {
	file *source.File
	pos  int
}

func newLocator(file *source.File) *locator {
	return &locator{file: file}
}

// find returns the span of the string value assigned to key, searching from
// the cursor first and from the start of the file second. Values written with
// escapes are matched by decoding each candidate literal; their span covers
// the literal text between the quotes. Multi-line strings are not located and
// yield an empty span at the cursor.
func (l *locator) find(key, value string) source.Span {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\s*=\s*["']` + `(` + regexp.QuoteMeta(value) + `)["']`)
	content := l.file.Content
	if m := re.FindSubmatchIndex(content[l.pos:]); m != nil {
		start, end := l.pos+m[2], l.pos+m[3]
		l.pos += m[1]
		return l.span(start, end)
	}
	if m := re.FindSubmatchIndex(content); m != nil {
		return l.span(m[2], m[3])
	}
	if start, end, ok := l.findEscaped(key, value); ok {
		return l.span(start, end)
	}
	return l.span(l.pos, l.pos)
}

func (l *locator) findEscaped(key, value string) (int, int, bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\s*=\s*("(?:[^"\\\n]|\\.)*"|'[^'\n]*')`)
	content := l.file.Content
	for _, from := range []int{l.pos, 0} {
		for _, m := range re.FindAllSubmatchIndex(content[from:], -1) {
			if v, ok := decodeString(content[from+m[2] : from+m[3]]); !ok || v != value {
				continue
			}
			if from == l.pos {
				l.pos = from + m[1]
			}
			return from + m[2] + 1, from + m[3] - 1, true
		}
	}
	return 0, 0, false
}

// decodeString decodes a single TOML string literal, quotes included.
func decodeString(lit []byte) (string, bool) {
	var v struct {
		V string `toml:"v"`
	}
	if _, err := toml.Decode("v = "+string(lit), &v); err != nil {
		return "", false
	}
	return v.V, true
}

func (l *locator) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		s = 0
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		e = s
	}
	return source.Span{File: l.file.ID, Start: s, End: e}
}

// lineSpan covers line n (1-based) of file.
func lineSpan(file *source.File, n int) source.Span {
	l := newLocator(file)
	start, end := 0, len(file.Content)
	for i, idx := range file.LineIdx {
		switch {
		case i == n-2:
			start = int(idx) + 1
		case i == n-1:
			end = int(idx)
		}
	}
	if start > end {
		start = end
	}
	return l.span(start, end)
}
