package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/decls"
	"quill/internal/diag"
	"quill/internal/report"
	"quill/internal/source"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [flags] [manifest.toml...]",
	Short: "Build the type registry from manifests and print structure layouts",
	Long: `Load type manifests, register every typedef and structure, and print the
computed layouts. Without arguments the [decls].files of quill.toml are used.`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	layoutCmd.Flags().StringP("out", "o", "", "write the layout to file instead of stdout")
	layoutCmd.Flags().StringSlice("struct", nil, "only report the named structures")
	layoutCmd.Flags().Bool("bytes", false, "show byte offsets in text output")
	layoutCmd.Flags().Int("jobs", 0, "max parallel manifest readers (0=unlimited)")
}

// buildRegistry loads paths and builds them into b.
func (s *session) buildRegistry(b *decls.Builder, paths []string, jobs int) (decls.Result, error) {
	load := s.timer.Begin("load")
	manifests, err := decls.LoadFiles(s.cmd.Context(), paths, jobs)
	s.timer.End(load, fmt.Sprintf("%d files", len(paths)))
	if err != nil {
		return decls.Result{}, err
	}
	build := s.timer.Begin("build")
	res := b.Build(manifests)
	s.timer.End(build, fmt.Sprintf("%d/%d structs", res.Defined, res.Declared))
	return res, nil
}

func (s *session) newBuilder(bag *diag.Bag) (*decls.Builder, func(), error) {
	topts, err := s.cfg.TableOptions()
	if err != nil {
		return nil, nil, err
	}
	topts.Tracer = s.tracer
	a := s.newArena()
	b := decls.NewBuilder(a, source.NewFileSet(), decls.Options{
		Types:    topts,
		Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		Tracer:   s.tracer,
	})
	return b, func() { s.releaseArena(a) }, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")
	names, _ := cmd.Flags().GetStringSlice("struct")
	withBytes, _ := cmd.Flags().GetBool("bytes")
	jobs, _ := cmd.Flags().GetInt("jobs")

	paths := args
	if len(paths) == 0 {
		paths = s.cfg.DeclFiles()
	}
	if len(paths) == 0 {
		return errors.New("no manifests given and quill.toml lists no [decls].files")
	}
	if format == report.FormatMsgpack && outPath == "" {
		if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(f) {
			return errors.New("refusing to write msgpack to a terminal; use --out")
		}
	}

	bag := diag.NewBag(s.cfg.Diagnostics.Max)
	b, release, err := s.newBuilder(bag)
	if err != nil {
		return err
	}
	defer release()
	if _, err := s.buildRegistry(b, paths, jobs); err != nil {
		return err
	}
	if err := s.printDiagnostics(bag, b.Files); err != nil {
		return err
	}

	emit := s.timer.Begin("report")
	l, missing := report.Collect(b.Types).Filter(names)
	if len(missing) > 0 {
		s.timer.End(emit, "")
		return fmt.Errorf("unknown structures: %s", strings.Join(missing, ", "))
	}
	if s.arenaStats {
		stats := b.Arena.Stats()
		l.Arena = &stats
	}
	err = writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
		return report.Write(w, l, format, report.TextOptions{Color: s.color && outPath == "", Bytes: withBytes})
	})
	s.timer.End(emit, format.String())
	if err != nil {
		return err
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// writeOutput runs fn against path, or against stdout when path is empty.
func writeOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(stdout)
	}
	// #nosec G304 -- path comes from the command line
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}
