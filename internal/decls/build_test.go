package decls

import (
	"strings"
	"testing"

	"quill/internal/arena"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/testkit"
	"quill/internal/types"
)

func newTestBuilder(t *testing.T) (*Builder, *diag.Bag) {
	t.Helper()
	a := arena.New(arena.Options{InitialSlots: 16})
	t.Cleanup(func() { a.ReleaseAll() })
	bag := diag.NewBag(diag.DefaultMax)
	b := NewBuilder(a, source.NewFileSet(), Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, bag
}

func build(t *testing.T, files map[string]string, order ...string) (*Builder, *diag.Bag, Result) {
	t.Helper()
	b, bag := newTestBuilder(t)
	ms := make([]*Manifest, 0, len(order))
	for _, name := range order {
		ms = append(ms, Parse(name, []byte(files[name])))
	}
	return b, bag, b.Build(ms)
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func layoutOf(t *testing.T, b *Builder, name string) *types.Structure {
	t.Helper()
	ty, ok := b.Types.StructByName(name)
	if !ok {
		t.Fatalf("struct %s not registered", name)
	}
	s, err := b.Types.Struct(ty)
	if err != nil {
		t.Fatalf("Struct(%s): %v", name, err)
	}
	return s
}

const listManifest = `
[[typedef]]
name = "Meters"
type = "real"

[[struct]]
name = "Node"
fields = [ { name = "value", type = "int" }, { name = "next", type = "*Node" } ]

[[struct]]
name = "Pair"
fields = [ { name = "head", type = "Node" }, { name = "len", type = "Meters" } ]
`

func TestBuildLaysOutStructs(t *testing.T) {
	b, bag, res := build(t, map[string]string{"list.toml": listManifest}, "list.toml")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	if res.Files != 1 || res.Typedefs != 1 || res.Declared != 2 || res.Defined != 2 || res.Errors != 0 {
		t.Fatalf("result = %+v", res)
	}
	node := layoutOf(t, b, "Node")
	if node.Incomplete || node.Size != 2 {
		t.Fatalf("Node = %+v", node)
	}
	pair := layoutOf(t, b, "Pair")
	if pair.Size != 3 {
		t.Fatalf("Pair size = %d, want 3", pair.Size)
	}
	f, ok := pair.Field("len")
	if !ok || f.Offset != 2 || f.Size != 1 {
		t.Fatalf("Pair.len = %+v (found %v)", f, ok)
	}
	if got := b.Types.String(f.Type); got != "real" {
		t.Fatalf("Pair.len type = %s, want real", got)
	}
	if err := testkit.CheckTokenSpans(b.Tokens, b.Files); err != nil {
		t.Fatal(err)
	}
}

func TestBuildDefinesEmbeddedStructsFirst(t *testing.T) {
	src := `
[[struct]]
name = "Outer"
fields = [ { name = "inner", type = "Inner" }, { name = "tag", type = "str" } ]

[[struct]]
name = "Inner"
fields = [ { name = "a", type = "int" }, { name = "b", type = "int" }, { name = "c", type = "int" } ]
`
	b, bag, res := build(t, map[string]string{"a.toml": src}, "a.toml")
	if bag.Len() != 0 || res.Defined != 2 {
		t.Fatalf("diagnostics %v, result %+v", codes(bag), res)
	}
	outer := layoutOf(t, b, "Outer")
	if outer.Size != 4 {
		t.Fatalf("Outer size = %d, want 4", outer.Size)
	}
	if tag, _ := outer.Field("tag"); tag.Offset != 3 {
		t.Fatalf("Outer.tag offset = %d, want 3", tag.Offset)
	}
}

func TestBuildAcrossFiles(t *testing.T) {
	files := map[string]string{
		"a.toml": `
[[struct]]
name = "User"
fields = [ { name = "id", type = "ID" }, { name = "home", type = "Addr" } ]
`,
		"b.toml": `
[[typedef]]
name = "ID"
type = "int"

[[struct]]
name = "Addr"
fields = [ { name = "street", type = "str" }, { name = "zip", type = "int" } ]
`,
	}
	b, bag, res := build(t, files, "a.toml", "b.toml")
	if bag.Len() != 0 || res.Files != 2 || res.Defined != 2 {
		t.Fatalf("diagnostics %v, result %+v", codes(bag), res)
	}
	if got := layoutOf(t, b, "User").Size; got != 3 {
		t.Fatalf("User size = %d, want 3", got)
	}
}

func TestBuildRecursiveByValue(t *testing.T) {
	src := `
[[struct]]
name = "A"
fields = [ { name = "b", type = "B" } ]

[[struct]]
name = "B"
fields = [ { name = "a", type = "A" } ]

[[struct]]
name = "Self"
fields = [ { name = "me", type = "Self" } ]
`
	b, bag, res := build(t, map[string]string{"r.toml": src}, "r.toml")
	got := codes(bag)
	if len(got) != 3 {
		t.Fatalf("diagnostics = %v, want 3", got)
	}
	for _, c := range got {
		if c != diag.SemaRecursiveLayout {
			t.Fatalf("diagnostics = %v, want only recursive layout", got)
		}
	}
	if res.Defined != 0 || res.Errors != 3 {
		t.Fatalf("result = %+v", res)
	}
	if !layoutOf(t, b, "A").Incomplete {
		t.Fatalf("A must stay declared")
	}
}

func TestBuildUnknownFieldTypeBlocksDependents(t *testing.T) {
	src := `[[struct]]
name = "X"
fields = [ { name = "f", type = "*Missing" } ]

[[struct]]
name = "Y"
fields = [ { name = "x", type = "X" } ]
`
	b, bag, _ := build(t, map[string]string{"u.toml": src}, "u.toml")
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	if items[0].Code != diag.SemaUnknownType {
		t.Fatalf("first diagnostic = %v", items[0].Code)
	}
	file := b.Files.Get(items[0].Primary.File)
	if got := string(file.Content[items[0].Primary.Start:items[0].Primary.End]); got != "Missing" {
		t.Fatalf("unknown type span covers %q", got)
	}
	if items[1].Code != diag.SemaIncompleteStruct || len(items[1].Notes) != 1 {
		t.Fatalf("second diagnostic = %+v", items[1])
	}
	if err := testkit.CheckTokenSpans(b.Tokens, b.Files); err != nil {
		t.Fatal(err)
	}
}

func TestBuildLocatesEscapedValues(t *testing.T) {
	src := `[[typedef]]
name = "Count"
type = "\u0069nt"

[[struct]]
name = "X"
fields = [ { name = "f", type = "*Mis\u0073ing" } ]
`
	b, bag, res := build(t, map[string]string{"esc.toml": src}, "esc.toml")
	if res.Typedefs != 1 {
		t.Fatalf("result = %+v", res)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaUnknownType {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	file := b.Files.Get(items[0].Primary.File)
	if got := string(file.Content[items[0].Primary.Start:items[0].Primary.End]); got != `*Mis\u0073ing` {
		t.Fatalf("unknown type span covers %q", got)
	}
	if err := testkit.CheckTokenSpans(b.Tokens, b.Files); err != nil {
		t.Fatal(err)
	}
}

func TestBuildStructErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"duplicate field", `[[struct]]
name = "D"
fields = [ { name = "a", type = "int" }, { name = "a", type = "real" } ]`, diag.SemaDuplicateField},
		{"optional field", `[[struct]]
name = "O"
fields = [ { name = "a", type = "?int" } ]`, diag.SemaUnsupportedType},
		{"builtin struct name", `[[struct]]
name = "int"
fields = []`, diag.SemaReservedName},
		{"builtin typedef", `[[typedef]]
name = "real"
type = "int"`, diag.SemaReservedName},
		{"typedef shadows struct", `[[struct]]
name = "S"
fields = []

[[typedef]]
name = "S"
type = "int"`, diag.SemaReservedName},
		{"bad type syntax", `[[typedef]]
name = "T"
type = "[4 int"`, diag.SynUnexpectedToken},
		{"decode error", `[[struct]
name = "S"`, diag.IODecodeError},
		{"unknown key", `[[struct]]
name = "S"
size = 4`, diag.IODecodeError},
		{"missing type", `[[typedef]]
name = "T"`, diag.IODecodeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, bag, res := build(t, map[string]string{"e.toml": tc.src}, "e.toml")
			got := codes(bag)
			if len(got) != 1 || got[0] != tc.want {
				t.Fatalf("diagnostics = %v, want [%v]", got, tc.want)
			}
			if res.Errors != 1 {
				t.Fatalf("errors = %d, want 1", res.Errors)
			}
		})
	}
}

func TestBuildDuplicateStructAcrossFiles(t *testing.T) {
	files := map[string]string{
		"a.toml": "[[struct]]\nname = \"P\"\nfields = [ { name = \"x\", type = \"int\" } ]\n",
		"b.toml": "[[struct]]\nname = \"P\"\nfields = [ { name = \"y\", type = \"real\" } ]\n",
	}
	b, bag, res := build(t, files, "a.toml", "b.toml")
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaStructRedefinition {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span.File == items[0].Primary.File {
		t.Fatalf("note should point into the first file: %+v", items[0].Notes)
	}
	if res.Defined != 1 {
		t.Fatalf("defined = %d, want 1", res.Defined)
	}
	if _, ok := layoutOf(t, b, "P").Field("x"); !ok {
		t.Fatalf("first declaration must win")
	}
}

func TestBuildAliasPolicy(t *testing.T) {
	src := `
[[typedef]]
name = "T"
type = "int"

[[typedef]]
name = "T"
type = "real"
`
	b, bag, _ := build(t, map[string]string{"t.toml": src}, "t.toml")
	if bag.Len() != 0 {
		t.Fatalf("allow policy reported %v", codes(bag))
	}
	ty, err := b.Types.ResolveName("T")
	if err != nil || b.Types.String(ty) != "real" {
		t.Fatalf("T resolves to %s, %v; want real", b.Types.String(ty), err)
	}

	a := arena.New(arena.Options{})
	defer a.ReleaseAll()
	strict := diag.NewBag(10)
	sb := NewBuilder(a, source.NewFileSet(), Options{
		Types:    types.Options{AliasPolicy: types.AliasReject},
		Reporter: diag.BagReporter{Bag: strict},
	})
	sb.Build([]*Manifest{Parse("t.toml", []byte(src))})
	if got := codes(strict); len(got) != 1 || got[0] != diag.SemaAliasRedefinition {
		t.Fatalf("reject policy diagnostics = %v", got)
	}
}

func TestBuildReadErrorIsReported(t *testing.T) {
	b, bag := newTestBuilder(t)
	res := b.Build([]*Manifest{{Path: "gone.toml", ReadErr: errMissing}})
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	if !strings.Contains(items[0].Message, "gone.toml") || res.Files != 0 {
		t.Fatalf("message %q, result %+v", items[0].Message, res)
	}
}
