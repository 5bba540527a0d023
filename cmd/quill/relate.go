package main

import (
	"github.com/spf13/cobra"

	"quill/internal/decls"
	"quill/internal/diag"
	"quill/internal/report"
	"quill/internal/types"
)

var relateCmd = &cobra.Command{
	Use:   "relate [flags] <from> <to>",
	Short: "Compare two type expressions",
	Long: `Parse two type expressions against the registry built from --decls and report
equality, implicit and explicit castability, parameter matching and sizes.`,
	Example: `  quill relate int real
  quill relate --decls shapes.toml '*Circle' '*Shape'`,
	Args: cobra.ExactArgs(2),
	RunE: runRelate,
}

func init() {
	relateCmd.Flags().StringSlice("decls", nil, "type manifests to load first (default: [decls].files)")
	relateCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	relateCmd.Flags().Int("jobs", 0, "max parallel manifest readers (0=unlimited)")
}

func runRelate(cmd *cobra.Command, args []string) error {
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
	paths, _ := cmd.Flags().GetStringSlice("decls")
	if !cmd.Flags().Changed("decls") {
		paths = s.cfg.DeclFiles()
	}
	jobs, _ := cmd.Flags().GetInt("jobs")

	bag := diag.NewBag(s.cfg.Diagnostics.Max)
	b, release, err := s.newBuilder(bag)
	if err != nil {
		return err
	}
	defer release()
	if len(paths) > 0 {
		if _, err := s.buildRegistry(b, paths, jobs); err != nil {
			return err
		}
	}

	parse := s.timer.Begin("relate")
	from, okFrom := parseOperand(b, "<from>", args[0])
	to, okTo := parseOperand(b, "<to>", args[1])
	s.timer.End(parse, "")
	if err := s.printDiagnostics(bag, b.Files); err != nil {
		return err
	}
	if !okFrom || !okTo {
		return errDiagnostics
	}
	if err := report.Write(cmd.OutOrStdout(), report.Relate(b.Types, from, to), format, report.TextOptions{Color: s.color}); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// parseOperand parses a command-line type expression from its own virtual
// file so diagnostics can quote it.
func parseOperand(b *decls.Builder, name, src string) (types.Type, bool) {
	id := b.Files.AddVirtual(name, []byte(src))
	ty, err := b.ParseType(src, id, 0)
	if err != nil {
		b.Report(err)
		return types.Invalid, false
	}
	return ty, true
}
