package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quill/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "quill",
	Short:         "Type registry and layout tool for the quill compiler",
	Long:          `quill builds the compiler's type registry from TOML type manifests and reports structure layouts and type relations`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errDiagnostics signals that errors were already printed as diagnostics.
var errDiagnostics = errors.New("diagnostics reported errors")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(relateCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to quill.toml (default: search upwards from the working directory)")
	flags.String("color", "", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Bool("arena-stats", false, "print arena usage when the arena is released")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep")
	flags.String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage mode (stream|ring|both)")
	flags.String("cpuprofile", "", "write a CPU profile to file")
	flags.String("memprofile", "", "write a heap profile to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
