package extractor

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/opc"
)

// openFixture builds a minimal .docx zip from parts (which must include at
// least "word/document.xml") plus the baseline container parts every
// package needs, and opens it via opc.
func openFixture(t *testing.T, parts map[string]string) *opc.Store {
	t.Helper()

	all := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
	}
	for name, body := range parts {
		all[name] = body
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range all {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	store, err := opc.OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	return store
}

const w = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestExtractVisibleTextAndTrackedChanges(t *testing.T) {
	doc := fmtDocumentXML(`
		<w:p>
			<w:r><w:t>Hello </w:t></w:r>
			<w:del w:id="1" w:author="Al" w:date="2026-01-01T00:00:00Z"><w:r><w:delText>old </w:delText></w:r></w:del>
			<w:ins w:id="2" w:author="Al" w:date="2026-01-01T00:00:00Z"><w:r><w:t>new </w:t></w:r></w:ins>
			<w:r><w:t>world</w:t></w:r>
		</w:p>`)

	store := openFixture(t, map[string]string{"word/document.xml": doc})
	d, err := Extract(store)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(d.Paragraphs) != 1 {
		t.Fatalf("len(Paragraphs) = %d, want 1", len(d.Paragraphs))
	}
	p := d.Paragraphs[0]

	if got := VisibleText(p); got != "Hello new world" {
		t.Fatalf("VisibleText = %q, want %q", got, "Hello new world")
	}

	tcs := TrackedChanges(p)
	if len(tcs) != 2 {
		t.Fatalf("len(TrackedChanges) = %d, want 2: %+v", len(tcs), tcs)
	}
	byType := map[string]docmodel.TrackedChangeOut{}
	for _, tc := range tcs {
		byType[tc.Type] = tc
	}
	if byType["delete"].Text != "old " {
		t.Errorf("delete text = %q, want %q", byType["delete"].Text, "old ")
	}
	if byType["insert"].Text != "new " {
		t.Errorf("insert text = %q, want %q", byType["insert"].Text, "new ")
	}
}

func TestExtractCommentAnchorWithinSameParagraph(t *testing.T) {
	// Regression: a comment whose start and end markers both fall inside
	// one paragraph must still get its anchor text and paragraph index.
	doc := fmtDocumentXML(`
		<w:p>
			<w:r><w:t>before </w:t></w:r>
			<w:commentRangeStart w:id="0"/>
			<w:r><w:t>anchored text</w:t></w:r>
			<w:commentRangeEnd w:id="0"/>
			<w:r><w:commentReference w:id="0"/></w:r>
			<w:r><w:t> after</w:t></w:r>
		</w:p>`)
	commentsXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:comments ` + w + `>
  <w:comment w:id="0" w:author="Reviewer" w:date="2026-01-01T00:00:00Z">
    <w:p><w:r><w:t>a note</w:t></w:r></w:p>
  </w:comment>
</w:comments>`

	store := openFixture(t, map[string]string{
		"word/document.xml":             doc,
		"word/comments.xml":             commentsXML,
		"word/_rels/document.xml.rels": documentRelsWithComments,
	})
	d, err := Extract(store)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(d.Comments) != 1 {
		t.Fatalf("len(Comments) = %d, want 1", len(d.Comments))
	}
	c := d.Comments[0]
	if c.AnchorText != "anchored text" {
		t.Fatalf("AnchorText = %q, want %q", c.AnchorText, "anchored text")
	}
	if c.ParagraphIndex != 0 {
		t.Fatalf("ParagraphIndex = %d, want 0", c.ParagraphIndex)
	}
	if c.Text != "a note" {
		t.Fatalf("Text = %q, want %q", c.Text, "a note")
	}
}

const documentRelsWithComments = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments" Target="comments.xml"/>
</Relationships>`

func fmtDocumentXML(bodyInner string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document ` + w + `>
  <w:body>` + bodyInner + `</w:body>
</w:document>`
}
