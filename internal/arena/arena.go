// Package arena implements the tracked bulk allocator that backs every
// compiler-internal object for the duration of one compilation.
//
// Nothing allocated through an Arena is freed individually: chunks live until
// ReleaseAll, which drops every chunk and the registry itself. Contract
// violations (unknown handles, use after release, exhausted budget) are fatal.
package arena

import (
	"fmt"
	"os"

	"fortio.org/safecast"

	"quill/internal/trace"
)

// DefaultInitialSlots is the starting capacity of the chunk registry.
const DefaultInitialSlots = 0x1000

// slotBytes approximates the bookkeeping cost of one registry slot.
const slotBytes = 8

// ChunkID identifies a tracked chunk. NoChunkID is never issued.
type ChunkID uint32

// NoChunkID marks the absence of a chunk.
const NoChunkID ChunkID = 0

// IsValid reports whether id may refer to a chunk.
func (id ChunkID) IsValid() bool { return id != NoChunkID }

type chunkKind uint8

const (
	chunkRaw chunkKind = iota + 1
	chunkTyped
)

type chunk struct {
	kind chunkKind
	size int
	data []byte // chunkRaw only
	drop func() // chunkTyped only
}

// Options configures an Arena.
type Options struct {
	// InitialSlots is the starting registry capacity (DefaultInitialSlots if <= 0).
	InitialSlots int
	// MaxBytes caps the total tracked bytes; 0 means unlimited.
	MaxBytes int
	// Tracer receives fatal errors and release statistics.
	Tracer trace.Tracer
	// OnFatal is invoked for unrecoverable contract violations. It must not
	// return normally; when nil the process exits after logging.
	OnFatal func(err error)
}

// Arena owns every chunk it hands out.
type Arena struct {
	chunks   []chunk // index 0 reserved for NoChunkID
	capacity int
	bytes    int
	maxBytes int
	released bool
	tracer   trace.Tracer
	onFatal  func(err error)
}

// New creates an Arena with its registry preallocated.
func New(opts Options) *Arena {
	capacity := opts.InitialSlots
	if capacity <= 0 {
		capacity = DefaultInitialSlots
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	a := &Arena{
		capacity: capacity,
		maxBytes: opts.MaxBytes,
		tracer:   tracer,
		onFatal:  opts.OnFatal,
	}
	a.chunks = make([]chunk, 1, capacity+1)
	return a
}

// Allocate returns a new tracked chunk of size bytes.
func (a *Arena) Allocate(size int) ChunkID {
	if size < 0 {
		a.fatal(fmt.Errorf("memory allocation error: negative size %d", size))
	}
	a.reserve(size)
	return a.insert(chunk{kind: chunkRaw, size: size, data: make([]byte, size)})
}

// Reallocate grows or shrinks a raw chunk, preserving its prefix. The handle
// stays the same; previously obtained byte slices must not be used afterwards.
func (a *Arena) Reallocate(id ChunkID, size int) ChunkID {
	if a.released {
		a.fatal(fmt.Errorf("memory reallocation error: arena already released"))
	}
	if !id.IsValid() {
		return a.Allocate(size)
	}
	c := a.lookup(id)
	if c == nil || c.kind != chunkRaw {
		a.fatal(fmt.Errorf("memory reallocation error: chunk #%d was not issued by this arena", id))
		return NoChunkID
	}
	if size < 0 {
		a.fatal(fmt.Errorf("memory reallocation error: negative size %d", size))
	}
	a.reserve(size - c.size)
	data := make([]byte, size)
	copy(data, c.data)
	a.bytes += size - c.size
	c.data = data
	c.size = size
	return id
}

// Bytes returns the current contents of a raw chunk.
func (a *Arena) Bytes(id ChunkID) []byte {
	if a.released {
		a.fatal(fmt.Errorf("arena: chunk #%d used after release", id))
	}
	c := a.lookup(id)
	if c == nil || c.kind != chunkRaw {
		a.fatal(fmt.Errorf("arena: chunk #%d was not issued by this arena", id))
		return nil
	}
	return c.data
}

// Len reports the number of live chunks.
func (a *Arena) Len() int {
	if len(a.chunks) == 0 {
		return 0
	}
	return len(a.chunks) - 1
}

// Released reports whether ReleaseAll has run.
func (a *Arena) Released() bool { return a.released }

// ReleaseAll frees every chunk and the registry. It must be called exactly once.
func (a *Arena) ReleaseAll() Stats {
	if a.released {
		a.fatal(fmt.Errorf("arena: ReleaseAll called twice"))
		return Stats{}
	}
	stats := a.Stats()
	freed := 0
	for i := 1; i < len(a.chunks); i++ {
		c := &a.chunks[i]
		if c.drop != nil {
			c.drop()
		}
		c.data = nil
		c.drop = nil
		freed++
	}
	stats.Released = freed
	a.chunks = nil
	a.capacity = 0
	a.bytes = 0
	a.released = true

	trace.Point(a.tracer, trace.ScopeArena, "arena.release", stats.String())
	return stats
}

// track registers a typed block of size bytes whose storage is owned by the
// caller; drop is invoked on ReleaseAll.
func (a *Arena) track(size int, drop func()) ChunkID {
	a.reserve(size)
	return a.insert(chunk{kind: chunkTyped, size: size, drop: drop})
}

func (a *Arena) reserve(delta int) {
	if a.released {
		a.fatal(fmt.Errorf("memory allocation error: arena already released"))
	}
	if a.maxBytes > 0 && a.bytes+delta > a.maxBytes {
		a.fatal(fmt.Errorf("memory allocation error: %d bytes requested, %d of %d in use", delta, a.bytes, a.maxBytes))
	}
}

func (a *Arena) insert(c chunk) ChunkID {
	slot, err := safecast.Conv[uint32](len(a.chunks))
	if err != nil {
		a.fatal(fmt.Errorf("arena: chunk registry overflow: %w", err))
	}
	a.chunks = append(a.chunks, c)
	a.bytes += c.size
	// registry slots exclude the reserved zero entry
	if len(a.chunks)-1 >= a.capacity {
		a.grow(a.capacity + a.capacity/2)
	}
	return ChunkID(slot)
}

// grow moves the registry into a larger backing array (x1.5 policy).
func (a *Arena) grow(capacity int) {
	if capacity <= a.capacity {
		capacity = a.capacity + 1
	}
	next := make([]chunk, len(a.chunks), capacity+1)
	copy(next, a.chunks)
	a.chunks = next
	a.capacity = capacity
}

func (a *Arena) lookup(id ChunkID) *chunk {
	if !id.IsValid() || int(id) >= len(a.chunks) {
		return nil
	}
	return &a.chunks[id]
}

func (a *Arena) fatal(err error) {
	if a.tracer != nil && a.tracer.Enabled() {
		trace.Error(a.tracer, trace.ScopeArena, "arena.fatal", err.Error())
		_ = a.tracer.Flush()
	}
	if a.onFatal != nil {
		a.onFatal(err)
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(2)
}
