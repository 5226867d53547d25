package textconv

import (
	"strings"
	"testing"

	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/extractor"
)

func boolPtr(b bool) *bool { return &b }

func TestRenderSections(t *testing.T) {
	doc := &extractor.Document{
		Metadata: docmodel.PackageMetadata{Title: "Report", WordCount: 3, ParagraphCount: 1},
		Paragraphs: []docmodel.Paragraph{
			{Children: []docmodel.InlineChild{
				docmodel.Run{Text: "plain "},
				docmodel.Run{Text: "bold", Props: docmodel.RunProperties{Bold: boolPtr(true)}},
				docmodel.DeletedRun{Text: " gone", Author: "A"},
				docmodel.InsertedRun{Text: " added", Author: "A"},
			}},
		},
		Comments: []docmodel.Comment{{ID: "0", Author: "R", Text: "note", AnchorText: "bold", ParagraphIndex: 0}},
	}

	out := Render(doc)

	for _, section := range []string{"=== METADATA ===", "=== BODY ===", "=== TABLES ===", "=== COMMENTS ===", "=== IMAGES ==="} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing section %q\n---\n%s", section, out)
		}
	}
	if !strings.Contains(out, "Title: Report") {
		t.Errorf("output missing metadata title line:\n%s", out)
	}
	if !strings.Contains(out, "[B]bold[/B]") {
		t.Errorf("output missing bold marker:\n%s", out)
	}
	if !strings.Contains(out, "[- gone-]") {
		t.Errorf("output missing deletion marker:\n%s", out)
	}
	if !strings.Contains(out, "[+ added+]") {
		t.Errorf("output missing insertion marker:\n%s", out)
	}
	if !strings.Contains(out, `/* [R] note */`) {
		t.Errorf("output missing inline comment annotation:\n%s", out)
	}
}

func TestRenderOmitsFootnoteSectionWhenEmpty(t *testing.T) {
	doc := &extractor.Document{}
	out := Render(doc)
	if strings.Contains(out, "FOOTNOTES") {
		t.Errorf("expected no FOOTNOTES section for a document with none:\n%s", out)
	}
}

func TestRenderFootnoteFormat(t *testing.T) {
	doc := &extractor.Document{
		Footnotes: []docmodel.Note{{ID: "1", Text: "see appendix"}},
	}
	out := Render(doc)
	if !strings.Contains(out, "[1] 1: see appendix") {
		t.Errorf("footnote line format mismatch:\n%s", out)
	}
}
