// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"quill/internal/source"
	"quill/internal/token"
)

// CheckTokenSpans runs a minimal set of invariants over every stored token:
// 1) the span points at a file registered in fs
// 2) the span is ordered and within the file content
// 3) non-EOF tokens carry exactly the text their span covers
func CheckTokenSpans(toks *token.Store, fs *source.FileSet) error {
	if toks == nil || fs == nil {
		return fmt.Errorf("nil token store or file set")
	}
	for i := 1; i <= toks.Len(); i++ {
		n, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("token index overflow: %w", err)
		}
		id := token.ID(n)
		tok := toks.Get(id)
		sp := tok.Span

		f := fs.Get(sp.File)
		if f == nil {
			return fmt.Errorf("token #%d %q: span %v points to unknown file", id, tok.Text, sp)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("token #%d %q: inverted span %v", id, tok.Text, sp)
		}
		lenContent, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if sp.End > lenContent {
			return fmt.Errorf("token #%d %q: span end beyond content: %d > %d", id, tok.Text, sp.End, lenContent)
		}
		if tok.Kind == token.EOF {
			continue
		}
		if got := string(f.Content[sp.Start:sp.End]); got != tok.Text {
			return fmt.Errorf("token #%d: text %q but span %v covers %q", id, tok.Text, sp, got)
		}
	}
	return nil
}
