// symgrep finds function definitions and call sites by name and prints them
// syntax highlighted.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

const (
	formatText = "text"
	formatTOON = "toon"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// config holds the resolved command line.
type config struct {
	term        string
	root        string
	maxFileSize int64
	format      string
	profile     termenv.Profile
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		maxFileSize int64
		format      string
	)

	cmd := &cobra.Command{
		Use:           "symgrep <search-term> [path]",
		Short:         "Find function definitions and calls by name",
		Long:          "Walks source files under path (default: the current directory) and prints every function or method definition and call whose name contains search-term, ignoring case.",
		Args:          cobra.RangeArgs(1, 2),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config{
				term:        args[0],
				root:        ".",
				maxFileSize: maxFileSize,
				format:      format,
				profile:     termenv.TrueColor,
			}
			if format != formatText && format != formatTOON {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, formatTOON)
			}
			if len(args) > 1 {
				cfg.root = args[1]
			}
			if termenv.EnvNoColor() {
				cfg.profile = termenv.Ascii
			}

			if _, err := os.Stat(cfg.root); err != nil {
				return fmt.Errorf("root path: %w", err)
			}
			return search(cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or toon")
	return cmd
}
