// Package observ measures CLI phases. Each phase is also mirrored as a trace
// span when a tracer is attached.
package observ

import (
	"fmt"
	"strings"
	"time"

	"quill/internal/trace"
)

// Phase records the duration and metadata of one phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	span  *trace.Span
}

// Timer tracks the execution time of multiple phases.
type Timer struct {
	phases []Phase
	tracer trace.Tracer
}

// NewTimer creates an empty Timer. tracer may be nil.
func NewTimer(tracer trace.Tracer) *Timer {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Timer{phases: make([]Phase, 0, 8), tracer: tracer}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{
		Name:  name,
		Start: time.Now(),
		span:  trace.Begin(t.tracer, trace.ScopePhase, name, 0),
	})
	return len(t.phases) - 1
}

// End finishes a phase by its index. Ending a phase twice keeps the first result.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	if p.span == nil {
		return
	}
	p.Dur = time.Since(p.Start)
	p.Note = note
	p.span.End(note)
	p.span = nil
}

// Summary returns a human-readable table of all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
