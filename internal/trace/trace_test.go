package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopePhase, "decls.build", 0)
	Point(tr, ScopeTypes, "types.define", "Node")
	span.End("ok")

	out := buf.String()
	if !strings.Contains(out, "phase:decls.build") {
		t.Fatalf("missing phase span: %q", out)
	}
	if strings.Contains(out, "types.define") {
		t.Fatalf("types scope must be filtered at phase level: %q", out)
	}
	if !strings.Contains(out, "(ok)") {
		t.Fatalf("missing end detail: %q", out)
	}
}

func TestErrorBypassesLevel(t *testing.T) {
	ring := NewRingTracer(4, LevelError)
	Point(ring, ScopeArena, "arena.release", "")
	Error(ring, ScopeArena, "arena.fatal", "boom")
	events := ring.Snapshot()
	if len(events) != 1 || events[0].Name != "arena.fatal" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeTypes, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", events)
	}
}

func TestNDJSONFormat(t *testing.T) {
	data := FormatEvent(&Event{Kind: KindPoint, Scope: ScopeArena, Name: "arena.release", Detail: "x"}, FormatNDJSON)
	if !bytes.HasSuffix(data, []byte("\n")) || !bytes.Contains(data, []byte(`"scope":"arena"`)) {
		t.Fatalf("unexpected ndjson: %s", data)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	ring := NewRingTracer(1, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "PHASE": LevelPhase, "debug": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
