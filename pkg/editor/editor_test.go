package editor

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/vortex/docxreview/internal/manifestio"
	"github.com/vortex/docxreview/pkg/opc"
)

const nsW = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func openFixture(t *testing.T, bodyInner string) *opc.Store {
	t.Helper()
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document ` + nsW + `>
  <w:body>` + bodyInner + `</w:body>
</w:document>`

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": doc,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	store, err := opc.OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	return store
}

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRunAppliesReplaceAndComment(t *testing.T) {
	store := openFixture(t, `<w:p><w:r><w:t>the quick fox</w:t></w:r></w:p>`)

	m := &manifestio.Manifest{
		Changes:  []manifestio.Change{{Type: "replace", Find: "quick", Replace: "slow"}},
		Comments: []manifestio.Comment{{Anchor: "fox", Text: "check this"}},
	}

	result := Run(store, m, Options{CLIAuthor: "Ada", Now: testTime})
	if !result.Success {
		t.Fatalf("Success = false, results: %+v", result.Results)
	}
	if result.ChangesSucceeded != 1 || result.CommentsSucceeded != 1 {
		t.Fatalf("counts = %+v", result)
	}
	if result.Author != "Ada" {
		t.Fatalf("Author = %q, want Ada", result.Author)
	}
	if !store.HasComments() {
		t.Fatal("expected a comments part to have been created")
	}
}

func TestRunRecordsFailureWithoutAbortingOtherEntries(t *testing.T) {
	store := openFixture(t, `<w:p><w:r><w:t>hello world</w:t></w:r></w:p>`)
	m := &manifestio.Manifest{
		Changes: []manifestio.Change{
			{Type: "replace", Find: "missing", Replace: "x"},
			{Type: "replace", Find: "world", Replace: "earth"},
		},
	}
	result := Run(store, m, Options{Now: testTime})
	if result.Success {
		t.Fatal("Success = true, want false given one unresolved find")
	}
	if result.ChangesSucceeded != 1 || result.ChangesAttempted != 2 {
		t.Fatalf("counts = %+v", result)
	}
	if len(result.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(result.Results))
	}
	if result.Results[0].Success {
		t.Error("first result should have failed")
	}
	if !result.Results[1].Success {
		t.Error("second result should have succeeded")
	}
}

func TestRunDryRunLeavesDocumentUnchanged(t *testing.T) {
	store := openFixture(t, `<w:p><w:r><w:t>hello world</w:t></w:r></w:p>`)
	m := &manifestio.Manifest{
		Changes: []manifestio.Change{{Type: "replace", Find: "world", Replace: "earth"}},
	}
	result := Run(store, m, Options{DryRun: true, Now: testTime})
	if !result.Success || result.ChangesSucceeded != 1 {
		t.Fatalf("dry run result = %+v", result)
	}
	if store.HasComments() {
		t.Error("dry run should not create a comments part")
	}

	var buf bytes.Buffer
	if err := store.SaveTo(&buf); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("w:ins")) || bytes.Contains(buf.Bytes(), []byte("w:del")) {
		t.Error("dry run emitted revision markup")
	}
}

func TestRunReportsMalformedEntriesAsFailedResultsNotAbort(t *testing.T) {
	// A replace missing "find" and an unknown change type are both
	// per-operation failures, not decode-time errors: the rest of the
	// manifest (a valid replace) must still apply.
	store := openFixture(t, `<w:p><w:r><w:t>hello world</w:t></w:r></w:p>`)
	m := &manifestio.Manifest{
		Changes: []manifestio.Change{
			{Type: "replace", Replace: "x"},
			{Type: "frobnicate"},
			{Type: "replace", Find: "world", Replace: "earth"},
		},
		Comments: []manifestio.Comment{{Text: "missing anchor"}},
	}
	result := Run(store, m, Options{Now: testTime})
	if result.Success {
		t.Fatal("Success = true, want false given malformed entries")
	}
	if result.ChangesSucceeded != 1 || result.ChangesAttempted != 3 {
		t.Fatalf("change counts = %+v", result)
	}
	if result.CommentsSucceeded != 0 || result.CommentsAttempted != 1 {
		t.Fatalf("comment counts = %+v", result)
	}
	// Results holds the comment phase first, then the changes phase.
	if len(result.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4: %+v", len(result.Results), result.Results)
	}
	if result.Results[0].Success {
		t.Fatalf("comment with no anchor should have failed: %+v", result.Results[0])
	}
	if result.Results[1].Success || result.Results[2].Success {
		t.Fatalf("malformed change entries should have failed: %+v", result.Results[1:3])
	}
	if !result.Results[3].Success {
		t.Fatalf("the valid replace entry should still have succeeded: %+v", result.Results[3])
	}
}

func TestRunDefaultAuthorFallsBackThroughChain(t *testing.T) {
	store := openFixture(t, `<w:p><w:r><w:t>hi</w:t></w:r></w:p>`)
	m := &manifestio.Manifest{}

	result := Run(store, m, Options{Now: testTime})
	if result.Author != defaultAuthor {
		t.Fatalf("Author = %q, want %q", result.Author, defaultAuthor)
	}

	result = Run(store, m, Options{ConfigAuthor: "Config Author", Now: testTime})
	if result.Author != "Config Author" {
		t.Fatalf("Author = %q, want Config Author", result.Author)
	}

	result = Run(store, m, Options{CLIAuthor: "CLI Author", ConfigAuthor: "Config Author", Now: testTime})
	if result.Author != "CLI Author" {
		t.Fatalf("Author = %q, want CLI Author", result.Author)
	}
}
