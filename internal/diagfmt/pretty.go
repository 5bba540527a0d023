package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"quill/internal/diag"
	"quill/internal/source"
)

type palette struct {
	err, warn, info, note, path, caret, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue),
		path:   color.New(color.Bold),
		caret:  color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.caret, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		header := fmt.Sprintf("%s %s:", d.Severity, d.Code.ID())
		loc := location(d.Primary, fs, opts)
		if loc != "" {
			fmt.Fprintf(w, "%s %s %s\n", p.path.Sprint(loc+":"), p.severity(d.Severity).Sprint(header), d.Message)
		} else {
			fmt.Fprintf(w, "%s %s\n", p.severity(d.Severity).Sprint(header), d.Message)
		}
		writeSnippet(w, d.Primary, fs, opts.Context, p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc := location(n.Span, fs, opts)
			if nloc != "" {
				fmt.Fprintf(w, "  %s %s %s\n", p.note.Sprint("note:"), p.path.Sprint(nloc), n.Msg)
			} else {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
	}
	if bag.Dropped() > 0 {
		fmt.Fprintf(w, "... %d more diagnostics suppressed\n", bag.Dropped())
	}
}

func location(span source.Span, fs *source.FileSet, opts PrettyOpts) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(span.File)
	if f == nil {
		return ""
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col)
}

func writeSnippet(w io.Writer, span source.Span, fs *source.FileSet, context int8, p palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	if context < 0 {
		context = 0
	}
	first := uint32(1)
	if start.Line > uint32(context) {
		first = start.Line - uint32(context)
	}
	last := start.Line + uint32(context)
	width := len(fmt.Sprint(last))
	for line := first; line <= last; line++ {
		text := f.Line(line)
		if line != start.Line && text == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, line), text)
		if line != start.Line {
			continue
		}
		col := int(start.Col)
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		}
		marker := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", col-1), p.caret.Sprint(marker))
	}
}
