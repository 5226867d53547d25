// Package cliapp assembles the docxreview command tree with cobra: a root
// command that runs edit mode by default, plus read/diff/textconv/create/
// git-setup/version subcommands. Flags are package-level variables bound
// in init(), in the style of a small cobra CLI's flags.go.
package cliapp

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vortex/docxreview/internal/appconfig"
	"github.com/vortex/docxreview/internal/obslog"
)

var (
	output   string
	author   string
	jsonOut  bool
	dryRun   bool
	logLevel string
	color    string

	cfg *appconfig.Config

	out io.Writer = os.Stdout
)

// Out returns the CLI's output writer (stdout by default; tests may
// replace it).
func Out() io.Writer { return out }

// SetOut replaces the output writer, for testing.
func SetOut(w io.Writer) { out = w }

// Output returns the resolved -o/--output path, or "" if unset.
func Output() string { return output }

// Author returns the --author flag value (may be empty; resolution
// against the manifest and appconfig default happens in editor.Run).
func Author() string { return author }

// JSON reports whether --json was passed.
func JSON() bool { return jsonOut }

// DryRun reports whether --dry-run was passed.
func DryRun() bool { return dryRun }

// ColorEnabled resolves --color/DOCXREVIEW_COLOR against whether stdout
// is a terminal.
func ColorEnabled() bool {
	mode := color
	if mode == "" && cfg != nil {
		mode = cfg.Color
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

var rootCmd = &cobra.Command{
	Use:   "docxreview <input.docx> <manifest.json>",
	Short: "Edit, read, diff, and textconv tracked-change .docx documents",
	Long: `docxreview applies a JSON edit manifest to a Word document as tracked
insertions, deletions, and anchored comments, and can read, diff, or
textconv a .docx package for scripting and version control.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], args[1])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output path (defaults alongside input)")
	rootCmd.PersistentFlags().StringVar(&author, "author", "", "attribute emitted changes/comments to this author")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit machine-readable JSON to stdout")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "resolve matches and report outcomes without writing output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&color, "color", "", "auto, always, or never")

	cfg = appconfig.Load()

	rootCmd.AddCommand(readCmd, diffCmd, textconvCmd, createCmd, gitSetupCmd, versionCmd)
}

// Execute runs the root command and maps the outcome to a process exit
// code: 0 for success, 1 for any hard error or per-operation failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !isSilentFailure(err) {
			logger().Error(err.Error())
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	return obslog.New(level)
}

// RootCmd exposes the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
