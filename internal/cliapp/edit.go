package cliapp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vortex/docxreview/internal/manifestio"
	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/editor"
	"github.com/vortex/docxreview/pkg/opc"
)

// runEdit is the root command's default behavior: apply a manifest of
// tracked changes and comments to a .docx, writing the result alongside
// the input (or to --output) unless --dry-run is set.
func runEdit(inputPath, manifestPath string) error {
	store, err := opc.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}

	m, err := readManifest(manifestPath)
	if err != nil {
		return err
	}

	result := editor.Run(store, m, editor.Options{
		CLIAuthor:    author,
		ConfigAuthor: cfg.Author,
		DryRun:       dryRun,
		Now:          time.Now(),
	})

	// Always write the output outside dry-run, even when some entries
	// failed: a manifest whose only entry is unresolved still produces an
	// output file, one equal to the input's content, with exit code 1.
	if !dryRun {
		dest := output
		if dest == "" {
			dest = defaultOutputPath(inputPath)
		}
		if err := store.Save(dest); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printHumanResult(result)
	}

	if !result.Success {
		return errSilentFailure
	}
	return nil
}

// readManifest reads the manifest from manifestPath, or from stdin when
// manifestPath is "-".
func readManifest(manifestPath string) (*manifestio.Manifest, error) {
	if manifestPath == "-" {
		m, err := manifestio.Decode(os.Stdin)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", manifestPath, err)
	}
	defer f.Close()
	m, err := manifestio.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, err)
	}
	return m, nil
}

func defaultOutputPath(inputPath string) string {
	ext := ".docx"
	if strings.HasSuffix(strings.ToLower(inputPath), ext) {
		return inputPath[:len(inputPath)-len(ext)] + ".reviewed" + ext
	}
	return inputPath + ".reviewed" + ext
}

func printHumanResult(r docmodel.ProcessingResult) {
	fmt.Fprintf(out, "author: %s\n", r.Author)
	fmt.Fprintf(out, "comments: %d/%d applied\n", r.CommentsSucceeded, r.CommentsAttempted)
	fmt.Fprintf(out, "changes:  %d/%d applied\n", r.ChangesSucceeded, r.ChangesAttempted)
	colorize := ColorEnabled()
	for _, res := range r.Results {
		status := statusLabel(res.Success, colorize)
		fmt.Fprintf(out, "  [%d] %s %s: %s\n", res.Index, res.Type, status, res.Message)
	}
}

func statusLabel(success, colorize bool) string {
	if success {
		if colorize {
			return "\033[32mok\033[0m"
		}
		return "ok"
	}
	if colorize {
		return "\033[31mFAILED\033[0m"
	}
	return "FAILED"
}

// errSilentFailure signals a non-zero exit after the result has already
// been printed, so Execute does not print a redundant second error line.
var errSilentFailure = silentError{}

type silentError struct{}

func (silentError) Error() string { return "one or more manifest entries failed" }

func isSilentFailure(err error) bool {
	_, ok := err.(silentError)
	return ok
}
