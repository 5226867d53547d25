package cliapp

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRootCmdHasExpectedSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"read", "diff", "textconv", "create", "git-setup", "version"} {
		if !names[want] {
			t.Errorf("RootCmd() missing subcommand %q", want)
		}
	}
}

func TestCreateWritesBlankDocx(t *testing.T) {
	dir := t.TempDir()
	dest := dir + "/blank.docx"

	var buf bytes.Buffer
	SetOut(&buf)
	defer SetOut(os.Stdout)

	createManifestPath = ""
	if err := createCmd.RunE(createCmd, []string{dest}); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading created file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("created .docx is empty")
	}
}

func TestStatusLabelPlainWhenUncolored(t *testing.T) {
	if got := statusLabel(true, false); got != "ok" {
		t.Errorf("statusLabel(true,false) = %q, want ok", got)
	}
	if got := statusLabel(false, false); got != "FAILED" {
		t.Errorf("statusLabel(false,false) = %q, want FAILED", got)
	}
}

func TestStatusLabelColorizedWhenEnabled(t *testing.T) {
	if got := statusLabel(true, true); !strings.Contains(got, "ok") {
		t.Errorf("statusLabel(true,true) = %q, want it to contain ok", got)
	}
	if got := statusLabel(false, true); !strings.Contains(got, "FAILED") {
		t.Errorf("statusLabel(false,true) = %q, want it to contain FAILED", got)
	}
}

func TestRunEditWritesOutputOnPartialFailure(t *testing.T) {
	// spec.md Scenario C: a manifest whose only entry is an unresolved
	// find still produces an output file (content unchanged), exit
	// code 1 — the output must not be skipped just because one entry
	// failed.
	dir := t.TempDir()
	input := dir + "/input.docx"
	manifest := dir + "/manifest.json"

	var createBuf bytes.Buffer
	SetOut(&createBuf)
	createManifestPath = ""
	if err := createCmd.RunE(createCmd, []string{input}); err != nil {
		t.Fatalf("creating fixture input: %v", err)
	}

	if err := os.WriteFile(manifest, []byte(`{"changes":[{"type":"delete","find":"nonexistent text"}]}`), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	var buf bytes.Buffer
	SetOut(&buf)
	defer SetOut(os.Stdout)

	err := runEdit(input, manifest)
	if !isSilentFailure(err) {
		t.Fatalf("runEdit error = %v, want the silent-failure sentinel", err)
	}

	wantOutput := defaultOutputPath(input)
	data, readErr := os.ReadFile(wantOutput)
	if readErr != nil {
		t.Fatalf("output file was not written despite the partial failure: %v", readErr)
	}
	if len(data) == 0 {
		t.Fatal("output file is empty")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := defaultOutputPath("report.docx"); got != "report.reviewed.docx" {
		t.Errorf("defaultOutputPath = %q, want report.reviewed.docx", got)
	}
	if got := defaultOutputPath("REPORT.DOCX"); got != "REPORT.reviewed.docx" {
		t.Errorf("defaultOutputPath (case) = %q", got)
	}
	if got := defaultOutputPath("noext"); got != "noext.reviewed.docx" {
		t.Errorf("defaultOutputPath (no ext) = %q", got)
	}
}
