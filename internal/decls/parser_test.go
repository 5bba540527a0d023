package decls

import (
	"errors"
	"testing"

	"quill/internal/diag"
	"quill/internal/types"
)

var errMissing = errors.New("no such file")

func TestParseTypeForms(t *testing.T) {
	b, _ := newTestBuilder(t)
	if _, err := b.Types.ForwardDeclare("Node", 0); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		src  string
		kind types.Kind
		want string
	}{
		{"int", types.KindBasic, "int"},
		{"Node", types.KindBasic, "Node"},
		{"*Node", types.KindPointer, "*Node"},
		{"[]int", types.KindArray, "[]int"},
		{"[ 4 ] real", types.KindArray, "[4]real"},
		{"**[2]str", types.KindPointer, "**[2]str"},
		{"fn() void", types.KindFunction, "fn() void"},
		{"fn(int, *Node) real", types.KindFunction, "fn(int, *Node) real"},
		{"fn(fn(int) int) void", types.KindFunction, "fn(fn(int) int) void"},
		{"?int", types.KindOptional, "?int"},
	}
	for _, tc := range cases {
		ty, err := b.ParseType(tc.src, 0, 0)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", tc.src, err)
		}
		if ty.Kind != tc.kind {
			t.Fatalf("ParseType(%q) kind = %v, want %v", tc.src, ty.Kind, tc.kind)
		}
		if got := b.Types.String(ty); got != tc.want {
			t.Fatalf("ParseType(%q) = %s, want %s", tc.src, got, tc.want)
		}
		if !ty.Token.IsValid() {
			t.Fatalf("ParseType(%q) carries no token", tc.src)
		}
	}
}

func TestParseTypeEmptyArrayFlag(t *testing.T) {
	b, _ := newTestBuilder(t)
	open, err := b.ParseType("[]int", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	sized, err := b.ParseType("[3]int", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !open.Empty || open.Len.IsValid() {
		t.Fatalf("[]int = %+v, want empty without length", open)
	}
	if sized.Empty || !sized.Len.IsValid() {
		t.Fatalf("[3]int = %+v, want sized", sized)
	}
	if n, ok := b.Types.Options().ArrayLen(sized.Len); !ok || n != 3 {
		t.Fatalf("length = %d, %v", n, ok)
	}
}

func TestParseTypeErrors(t *testing.T) {
	b, _ := newTestBuilder(t)
	cases := []struct {
		src   string
		code  diag.Code
		start uint32
	}{
		{"", diag.SynExpectType, 0},
		{"int int", diag.SynTrailingTokens, 4},
		{"[4 int", diag.SynUnexpectedToken, 3},
		{"fn(int", diag.SynUnclosedDelimiter, 6},
		{"fn int", diag.SynUnexpectedToken, 3},
		{"[99999999999]int", diag.SynBadArrayLength, 1},
		{"*@", diag.SynExpectType, 1},
		{"*Nope", diag.SemaUnknownType, 1},
		{"*", diag.SynExpectType, 1},
	}
	for _, tc := range cases {
		_, err := b.ParseType(tc.src, 0, 10)
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("ParseType(%q) error = %v, want *Error", tc.src, err)
		}
		if perr.Code != tc.code {
			t.Fatalf("ParseType(%q) code = %v, want %v (%s)", tc.src, perr.Code, tc.code, perr.Msg)
		}
		if perr.Span.Start != 10+tc.start {
			t.Fatalf("ParseType(%q) span start = %d, want %d", tc.src, perr.Span.Start, 10+tc.start)
		}
	}
}

func TestParseTypeNormalizesNames(t *testing.T) {
	b, _ := newTestBuilder(t)
	composed, err := b.Types.ForwardDeclare("caf\u00e9", 0)
	if err != nil {
		t.Fatal(err)
	}
	ty, err := b.ParseType("cafe\u0301", 0, 0)
	if err != nil {
		t.Fatalf("decomposed name: %v", err)
	}
	if !b.Types.Equal(ty, composed) {
		t.Fatalf("decomposed and composed names resolve differently")
	}
}
