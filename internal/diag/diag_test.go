package diag

import (
	"testing"

	"quill/internal/source"
)

func TestFormatShortSortsAndLocates(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("decls.toml", []byte("a\nb\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaError,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes:    []Note{{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"}},
		},
	}

	expected := "error SYN2001 decls.toml:1:1 first line second\n" +
		"warning SEM3001 decls.toml:2:1 another\n" +
		"note SYN2001 decls.toml:2:1 note line"

	if got := FormatShort(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportError(r, SemaUnknownType, source.Span{File: 1, Start: 9, End: 10}, "b").Emit()
	ReportWarning(r, SemaError, source.Span{File: 1, Start: 1, End: 2}, "a").Emit()
	ReportError(r, SemaUnknownType, source.Span{File: 1, Start: 0, End: 1}, "dropped").Emit()

	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d, want 2 and 1", bag.Len(), bag.Dropped())
	}
	bag.Sort()
	if bag.Items()[0].Message != "a" || !bag.HasErrors() {
		t.Fatalf("unexpected order: %+v", bag.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 3, End: 4}
	for range 3 {
		ReportError(r, SemaInvalidCast, sp, "same").Emit()
	}
	if bag.Len() != 1 {
		t.Fatalf("expected duplicates to be suppressed, got %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	if got := SemaIncompleteStruct.ID(); got != "SEM3003" {
		t.Fatalf("ID = %q", got)
	}
	if got := IOLoadFileError.String(); got != "[IO4001]: Failed to load file" {
		t.Fatalf("String = %q", got)
	}
}
