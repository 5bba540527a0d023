package arena

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

type fatalError struct{ err error }

// newTestArena returns an arena whose fatal path panics with fatalError.
func newTestArena(slots int) *Arena {
	return New(Options{
		InitialSlots: slots,
		OnFatal:      func(err error) { panic(fatalError{err}) },
	})
}

func expectFatal(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected fatal error containing %q", substr)
		}
		fe, ok := r.(fatalError)
		if !ok {
			panic(r)
		}
		if !strings.Contains(fe.err.Error(), substr) {
			t.Fatalf("fatal error %q does not contain %q", fe.err, substr)
		}
	}()
	fn()
}

func TestAllocateThenReleaseFreesEveryChunk(t *testing.T) {
	a := newTestArena(4)
	const n = 37
	total := 0
	for i := range n {
		id := a.Allocate(i + 1)
		if !id.IsValid() {
			t.Fatalf("allocation %d returned invalid handle", i)
		}
		if got := len(a.Bytes(id)); got != i+1 {
			t.Fatalf("chunk %d has %d bytes, want %d", id, got, i+1)
		}
		total += i + 1
	}
	before := a.Stats()
	if before.AllocatedBytes != total {
		t.Fatalf("allocated bytes = %d, want %d", before.AllocatedBytes, total)
	}
	stats := a.ReleaseAll()
	if stats.Released != n {
		t.Fatalf("released %d chunks, want %d", stats.Released, n)
	}
	if stats.Chunks != n {
		t.Fatalf("stats report %d chunks, want %d", stats.Chunks, n)
	}
	if !a.Released() || a.Len() != 0 {
		t.Fatalf("arena not empty after release")
	}
}

func TestRegistryGrowsByHalf(t *testing.T) {
	a := newTestArena(4)
	caps := []int{}
	last := a.Stats().Capacity
	for range 20 {
		a.Allocate(1)
		if c := a.Stats().Capacity; c != last {
			caps = append(caps, c)
			last = c
		}
	}
	want := []int{6, 9, 13, 19, 28}
	if len(caps) != len(want) {
		t.Fatalf("capacity steps = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Fatalf("capacity steps = %v, want %v", caps, want)
		}
	}
	if got := a.Stats().Chunks; got != 20 {
		t.Fatalf("chunks = %d, want 20", got)
	}
}

func TestReallocatePreservesPrefix(t *testing.T) {
	a := newTestArena(0)
	id := a.Allocate(3)
	copy(a.Bytes(id), "abc")
	if got := a.Reallocate(id, 6); got != id {
		t.Fatalf("reallocate changed handle %d -> %d", id, got)
	}
	buf := a.Bytes(id)
	if len(buf) != 6 || string(buf[:3]) != "abc" {
		t.Fatalf("unexpected contents after grow: %q", buf)
	}
	a.Reallocate(id, 2)
	if got := string(a.Bytes(id)); got != "ab" {
		t.Fatalf("unexpected contents after shrink: %q", got)
	}
	if got := a.Stats().AllocatedBytes; got != 2 {
		t.Fatalf("allocated bytes = %d, want 2", got)
	}
}

func TestReallocateZeroHandleAllocates(t *testing.T) {
	a := newTestArena(0)
	id := a.Reallocate(NoChunkID, 8)
	if !id.IsValid() || len(a.Bytes(id)) != 8 {
		t.Fatalf("expected fresh chunk, got %d", id)
	}
}

func TestReallocateForeignHandleIsFatal(t *testing.T) {
	a := newTestArena(0)
	a.Allocate(1)
	expectFatal(t, "not issued by this arena", func() {
		a.Reallocate(ChunkID(99), 4)
	})
}

func TestReallocateTypedBlockIsFatal(t *testing.T) {
	a := newTestArena(0)
	s := NewStore[int](a, 4)
	s.Allocate(1)
	expectFatal(t, "not issued by this arena", func() {
		a.Reallocate(ChunkID(1), 4)
	})
}

func TestBudgetExhaustionIsFatal(t *testing.T) {
	a := New(Options{MaxBytes: 10, OnFatal: func(err error) { panic(fatalError{err}) }})
	a.Allocate(6)
	expectFatal(t, "memory allocation error", func() {
		a.Allocate(5)
	})
}

func TestUseAfterReleaseIsFatal(t *testing.T) {
	a := newTestArena(0)
	id := a.Allocate(1)
	a.ReleaseAll()
	expectFatal(t, "after release", func() { a.Bytes(id) })
	expectFatal(t, "already released", func() { a.Allocate(1) })
	expectFatal(t, "twice", func() { a.ReleaseAll() })
}

func TestStatsString(t *testing.T) {
	s := Stats{AllocatedBytes: 10, RegistryBytes: 32, Chunks: 2, Capacity: 4}
	if got, want := s.String(), "allocated 10 + 32 bytes, 2/4 slots"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

// The default fatal path terminates the process, so it runs in a child.
func TestDefaultFatalPathExitsProcess(t *testing.T) {
	if os.Getenv("QUILL_ARENA_FATAL_CHILD") == "1" {
		a := New(Options{})
		a.Allocate(1)
		a.Reallocate(ChunkID(42), 8)
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=^TestDefaultFatalPathExitsProcess$")
	cmd.Env = append(os.Environ(), "QUILL_ARENA_FATAL_CHILD=1")
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected child to exit with failure, got err=%v output=%s", err, out)
	}
	if exitErr.ExitCode() != 2 {
		t.Fatalf("exit code = %d, want 2 (output %s)", exitErr.ExitCode(), out)
	}
	if !strings.Contains(string(out), "memory reallocation error") {
		t.Fatalf("child output missing diagnostic: %s", out)
	}
}
