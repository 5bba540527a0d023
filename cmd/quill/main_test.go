package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/report"
)

// resetFlags restores every flag of cmd and its children to its default so
// tests sharing rootCmd do not leak settings into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI inside dir with a config file that disables color.
func run(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg := filepath.Join(dir, "quill.toml")
	if _, statErr := os.Stat(cfg); statErr != nil {
		writeFile(t, cfg, "[diagnostics]\ncolor = \"off\"\n")
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const shapes = `
[[typedef]]
name = "Coord"
type = "real"

[[struct]]
name = "Point"
fields = [ { name = "x", type = "Coord" }, { name = "y", type = "Coord" } ]

[[struct]]
name = "Segment"
fields = [ { name = "from", type = "Point" }, { name = "to", type = "Point" }, { name = "next", type = "*Segment" } ]
`

func TestLayoutText(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	out, errOut, err := run(t, dir, "layout", manifest)
	if err != nil {
		t.Fatalf("layout: %v\n%s", err, errOut)
	}
	for _, want := range []string{"struct Point (2 words, 8 bytes)", "struct Segment (5 words, 20 bytes)", "next   *Segment  4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "bad.toml")
	writeFile(t, manifest, "[[struct]]\nname = \"Bad\"\nfields = [ { name = \"f\", type = \"Nope\" } ]\n")
	out, errOut, err := run(t, dir, "layout", manifest)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want diagnostics error", err)
	}
	if !strings.Contains(errOut, "bad.toml:3:34: ERROR SEM3002") {
		t.Fatalf("stderr:\n%s", errOut)
	}
	if !strings.Contains(out, "struct Bad (incomplete)") {
		t.Fatalf("stdout:\n%s", out)
	}
}

func TestLayoutMsgpackFromConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shapes.toml"), shapes)
	writeFile(t, filepath.Join(dir, "quill.toml"), "[diagnostics]\ncolor = \"off\"\n\n[decls]\nfiles = [\"shapes.toml\"]\n")
	outFile := filepath.Join(dir, "layout.msgpack")
	if _, errOut, err := run(t, dir, "layout", "--format", "msgpack", "--out", outFile, "--struct", "Segment"); err != nil {
		t.Fatalf("layout: %v\n%s", err, errOut)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	var l report.Layout
	if err := msgpack.Unmarshal(data, &l); err != nil {
		t.Fatal(err)
	}
	if len(l.Structs) != 1 || l.Structs[0].Name != "Segment" || l.Structs[0].Size != 5 {
		t.Fatalf("layout = %+v", l)
	}
}

func TestLayoutUnknownStructFilter(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	_, _, err := run(t, dir, "layout", "--struct", "Circle", manifest)
	if err == nil || !strings.Contains(err.Error(), "Circle") {
		t.Fatalf("err = %v", err)
	}
}

func TestLayoutArenaStats(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	out, errOut, err := run(t, dir, "--arena-stats", "layout", manifest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "arena: allocated") || !strings.Contains(errOut, "arena: released") {
		t.Fatalf("stdout:\n%s\nstderr:\n%s", out, errOut)
	}
}

func TestTraceFlagRecordsBuildPhase(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	traceOut := filepath.Join(dir, "quill.trace")
	if _, errOut, err := run(t, dir, "--trace", traceOut, "layout", manifest); err != nil {
		t.Fatalf("layout: %v\n%s", err, errOut)
	}
	data, err := os.ReadFile(traceOut)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"driver.start", "decls.build"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("trace missing %q:\n%s", want, data)
		}
	}
}

func TestRelate(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	out, errOut, err := run(t, dir, "relate", "--decls", manifest, "--format", "json", "*Segment", "*Point")
	if err != nil {
		t.Fatalf("relate: %v\n%s", err, errOut)
	}
	var r report.Relation
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatal(err)
	}
	if r.Equal || r.Implicit || r.Explicit || r.FromSize != 1 {
		t.Fatalf("relation = %+v", r)
	}

	out, _, err = run(t, dir, "relate", "Coord", "int")
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want diagnostics error (out %q)", err, out)
	}

	out, _, err = run(t, dir, "relate", "int", "real")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "int -> real") || !strings.Contains(out, "implicit cast  yes") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestRelateBadExpression(t *testing.T) {
	dir := t.TempDir()
	_, errOut, err := run(t, dir, "--diag-format", "short", "relate", "[3 int", "int")
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(errOut, "<from>:1:4") {
		t.Fatalf("stderr:\n%s", errOut)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var p versionPayload
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Tool != "quill" || p.Version == "" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestInvalidColor(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.toml")
	writeFile(t, manifest, shapes)
	if _, _, err := run(t, dir, "--color", "sometimes", "layout", manifest); err == nil {
		t.Fatalf("expected error for invalid --color")
	}
}
