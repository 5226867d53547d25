package comments

import (
	"testing"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/docxreview/pkg/match"
	"github.com/vortex/docxreview/pkg/runindex"
)

func bodyFromXML(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parsing test xml: %v", err)
	}
	return doc.Root()
}

func emptyCommentsRoot() *etree.Element {
	doc := etree.NewDocument()
	return doc.CreateElement("w:comments")
}

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAddAnchorsAndAllocatesID(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	rng, ok := match.Find(ix, "world")
	if !ok {
		t.Fatal("match not found")
	}

	root := emptyCommentsRoot()
	w := New(root)
	id, err := w.Add(ix, rng, root, "Dana Scully", "looks good", testTime)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id != 0 {
		t.Fatalf("first id = %d, want 0", id)
	}

	p := body.ChildElements()[0]
	var tags []string
	for _, c := range p.ChildElements() {
		tags = append(tags, c.Tag)
	}
	// Expect: run("Hello "), commentRangeStart, run("world"), commentRangeEnd, r(commentReference)
	foundStart, foundEnd, foundRef := false, false, false
	for _, c := range p.ChildElements() {
		switch c.Tag {
		case "commentRangeStart":
			foundStart = true
		case "commentRangeEnd":
			foundEnd = true
		case "r":
			if ChildOf(c, "commentReference") != nil {
				foundRef = true
			}
		}
	}
	if !foundStart || !foundEnd || !foundRef {
		t.Fatalf("missing markers: start=%v end=%v ref=%v, tags=%v", foundStart, foundEnd, foundRef, tags)
	}

	comment := root.ChildElements()[0]
	if comment.SelectAttrValue("w:author", "") != "Dana Scully" {
		t.Fatalf("author = %q, want Dana Scully", comment.SelectAttrValue("w:author", ""))
	}
	if comment.SelectAttrValue("w:initials", "") != "DS" {
		t.Fatalf("initials = %q, want DS", comment.SelectAttrValue("w:initials", ""))
	}
}

func ChildOf(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func TestNextIDSkipsUsed(t *testing.T) {
	root := emptyCommentsRoot()
	existing := root.CreateElement("w:comment")
	existing.CreateAttr("w:id", "0")

	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>text</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	rng, _ := match.Find(ix, "text")

	w := New(root)
	id, err := w.Add(ix, rng, root, "A", "c", testTime)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1 (0 already used)", id)
	}
}

func TestAddRejectsEmptyRange(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>text</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	root := emptyCommentsRoot()
	w := New(root)
	if _, err := w.Add(ix, match.Range{Start: 1, End: 1}, root, "A", "c", testTime); err == nil {
		t.Fatal("expected error for empty range, got nil")
	}
}
