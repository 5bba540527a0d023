// Package trace is the structured logging layer of the quill front end.
//
// Events are emitted through a Tracer selected at startup:
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: fatal paths only
//   - LevelPhase: driver and phase boundaries
//   - LevelDetail: arena and per-manifest events
//   - LevelDebug: everything, including individual type operations
//
// # Usage
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "decls.build", 0)
//	defer span.End("")
package trace
