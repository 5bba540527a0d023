package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects an output encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatMsgpack
)

// ParseFormat accepts text, json and msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q (expected: text|json|msgpack)", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "text"
	}
}

// TextOptions controls WriteText.
type TextOptions struct {
	Color bool
	Bytes bool // print byte offsets next to word offsets
}

// Write encodes v (a Layout or a Relation) in format.
func Write(w io.Writer, v any, format Format, opts TextOptions) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	}
	switch v := v.(type) {
	case Layout:
		return WriteText(w, v, opts)
	case Relation:
		return WriteRelation(w, v, opts)
	default:
		return fmt.Errorf("report: cannot render %T as text", v)
	}
}

func colors(enabled bool) (head, dim *color.Color) {
	head = color.New(color.Bold, color.FgCyan)
	dim = color.New(color.FgHiBlack)
	for _, c := range []*color.Color{head, dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return head, dim
}

// WriteText prints one block per structure with columns aligned by display
// width, so non-ASCII field names line up.
func WriteText(w io.Writer, l Layout, opts TextOptions) error {
	head, dim := colors(opts.Color)
	for i, s := range l.Structs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		title := fmt.Sprintf("struct %s", s.Name)
		if s.Incomplete {
			if _, err := fmt.Fprintf(w, "%s %s\n", head.Sprint(title), dim.Sprint("(incomplete)")); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", head.Sprint(title), dim.Sprintf("(%d words, %d bytes)", s.Size, s.ByteSize)); err != nil {
			return err
		}
		rows := make([][]string, 0, len(s.Fields)+1)
		hdr := []string{"field", "type", "offset", "size"}
		if opts.Bytes {
			hdr = append(hdr, "bytes")
		}
		rows = append(rows, hdr)
		for _, f := range s.Fields {
			row := []string{f.Name, f.Type, strconv.Itoa(f.Offset), strconv.Itoa(f.Size)}
			if opts.Bytes {
				row = append(row, fmt.Sprintf("%d+%d", f.ByteOffset, f.ByteSize))
			}
			rows = append(rows, row)
		}
		if err := writeTable(w, rows, dim); err != nil {
			return err
		}
	}
	if l.Arena != nil {
		if _, err := fmt.Fprintf(w, "\n%s %s\n", head.Sprint("arena:"), l.Arena.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteRelation prints a yes/no summary of a Relation.
func WriteRelation(w io.Writer, r Relation, opts TextOptions) error {
	head, dim := colors(opts.Color)
	if _, err := fmt.Fprintf(w, "%s\n", head.Sprintf("%s -> %s", r.From, r.To)); err != nil {
		return err
	}
	rows := [][]string{
		{"relation", "holds"},
		{"equal", yesNo(r.Equal)},
		{"implicit cast", yesNo(r.Implicit)},
		{"explicit cast", yesNo(r.Explicit)},
		{"matches param", yesNo(r.MatchesParam)},
		{"size " + r.From, sizeText(r.FromSize)},
		{"size " + r.To, sizeText(r.ToSize)},
	}
	return writeTable(w, rows, dim)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sizeText(n int) string {
	if n < 0 {
		return "n/a"
	}
	return strconv.Itoa(n) + " words"
}

// writeTable pads every column to its widest cell. The first row is the
// header and is dimmed.
func writeTable(w io.Writer, rows [][]string, dim *color.Color) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for r, row := range rows {
		var b strings.Builder
		b.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		line := b.String()
		if r == 0 {
			line = dim.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
