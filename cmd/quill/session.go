package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quill/internal/arena"
	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/observ"
	"quill/internal/prof"
	"quill/internal/source"
	"quill/internal/trace"
)

// session carries what every command needs: merged configuration, the
// tracer, the phase timer and profiling.
type session struct {
	cmd        *cobra.Command
	cfg        config.Config
	color      bool
	diagFormat string
	timings    bool
	arenaStats bool
	tracer     trace.Tracer
	timer      *observ.Timer
	prof       *prof.Session
	cleanup    func()
}

// openSession merges quill.toml with the global flags.
func openSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	if flags.Changed("max-diagnostics") {
		if cfg.Diagnostics.Max, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("color") {
		if cfg.Diagnostics.Color, err = flags.GetString("color"); err != nil {
			return nil, err
		}
	}
	s := &session{cmd: cmd, cfg: cfg}
	if s.color, err = resolveColor(cfg.Diagnostics.Color, cmd.OutOrStdout()); err != nil {
		return nil, err
	}
	color.NoColor = !s.color
	if s.diagFormat, err = flags.GetString("diag-format"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.arenaStats, err = flags.GetBool("arena-stats"); err != nil {
		return nil, err
	}

	closeTrace, err := setupTracing(cmd, cfg)
	if err != nil {
		return nil, err
	}
	tracer := trace.FromContext(cmd.Context())
	s.tracer = tracer
	s.timer = observ.NewTimer(tracer)

	cpu, _ := flags.GetString("cpuprofile")
	mem, _ := flags.GetString("memprofile")
	if s.prof, err = prof.Start(cpu, mem); err != nil {
		closeTrace()
		return nil, err
	}
	s.cleanup = closeTrace
	trace.Point(tracer, trace.ScopeDriver, "driver.start", cmd.Name())
	return s, nil
}

// Close stops profiling and flushes the tracer.
func (s *session) Close() {
	if err := s.prof.Stop(); err != nil {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "profile: %v\n", err)
	}
	if s.timings {
		fmt.Fprint(s.cmd.ErrOrStderr(), s.timer.Summary())
	}
	if s.cleanup != nil {
		s.cleanup()
	}
}

func resolveColor(mode string, out io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		f, ok := out.(*os.File)
		return ok && isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected: auto|on|off)", mode)
	}
}

func (s *session) newArena() *arena.Arena {
	opts := s.cfg.ArenaOptions()
	opts.Tracer = s.tracer
	return arena.New(opts)
}

// releaseArena frees a and prints its statistics when --arena-stats is set.
func (s *session) releaseArena(a *arena.Arena) {
	stats := a.ReleaseAll()
	if s.arenaStats {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "arena: released %d chunks; %s\n", stats.Released, stats.String())
	}
}

// printDiagnostics writes bag to stderr in the selected format.
func (s *session) printDiagnostics(bag *diag.Bag, fs *source.FileSet) error {
	if bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	w := s.cmd.ErrOrStderr()
	switch s.diagFormat {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	case "short":
		_, err := io.WriteString(w, diag.FormatShort(bag.Items(), fs, true)+"\n")
		return err
	case "", "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{Color: s.color, Context: 1, ShowNotes: true})
		return nil
	default:
		return fmt.Errorf("invalid --diag-format %q (expected: pretty|short|json)", s.diagFormat)
	}
}
