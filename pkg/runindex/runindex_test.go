package runindex

import (
	"testing"

	"github.com/beevik/etree"
)

func bodyFromXML(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parsing test xml: %v", err)
	}
	return doc.Root()
}

func TestBuildVisibleTextExcludesDeletions(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p>
			<w:r><w:t>Hello </w:t></w:r>
			<w:del><w:r><w:delText>cruel </w:delText></w:r></w:del>
			<w:ins><w:r><w:t>new </w:t></w:r></w:ins>
			<w:r><w:t>world</w:t></w:r>
		</w:p>
	</w:body>`)

	ix := Build(body)
	want := "Hello new world"
	if ix.Text != want {
		t.Fatalf("Text = %q, want %q", ix.Text, want)
	}
	if len(ix.Atoms) != 3 {
		t.Fatalf("len(Atoms) = %d, want 3", len(ix.Atoms))
	}
}

func TestAtomAtBoundary(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>abc</w:t></w:r><w:r><w:t>def</w:t></w:r></w:p>
	</w:body>`)
	ix := Build(body)

	if _, idx, ok := ix.AtomAt(0); !ok || idx != 0 {
		t.Fatalf("AtomAt(0) = idx %d ok %v, want 0 true", idx, ok)
	}
	if _, idx, ok := ix.AtomAt(3); !ok || idx != 1 {
		t.Fatalf("AtomAt(3) = idx %d ok %v, want 1 true (next atom start)", idx, ok)
	}
	if _, idx, ok := ix.AtomAt(6); !ok || idx != 1 {
		t.Fatalf("AtomAt(6) = idx %d ok %v, want 1 true (end-of-stream fallback)", idx, ok)
	}
	if _, _, ok := ix.AtomAt(100); ok {
		t.Fatalf("AtomAt(100) ok = true, want false")
	}
}

func TestSameParagraph(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>aaa</w:t></w:r></w:p>
		<w:p><w:r><w:t>bbb</w:t></w:r></w:p>
	</w:body>`)
	ix := Build(body)

	if _, ok := ix.SameParagraph(0, 3); !ok {
		t.Fatalf("SameParagraph(0,3) = false, want true")
	}
	if _, ok := ix.SameParagraph(1, 4); ok {
		t.Fatalf("SameParagraph(1,4) = true, want false (crosses paragraph boundary)")
	}
}
