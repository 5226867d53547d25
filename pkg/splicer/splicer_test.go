package splicer

import (
	"testing"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/docxreview/pkg/match"
	"github.com/vortex/docxreview/pkg/oxml"
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

var testTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestReplaceSingleRun(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	rng, ok := match.Find(ix, "world")
	if !ok {
		t.Fatal("match not found")
	}

	sp := New(0)
	if err := sp.Replace(ix, rng, "there", "Alice", testTime); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	p := body.ChildElements()[0]
	var sawDel, sawIns bool
	for _, c := range p.ChildElements() {
		if c.Tag == "del" {
			sawDel = true
			if oxml.RunTextTag(c.ChildElements()[0], "delText") != "world" {
				t.Errorf("del text = %q, want world", oxml.RunTextTag(c.ChildElements()[0], "delText"))
			}
		}
		if c.Tag == "ins" {
			sawIns = true
			if oxml.RunText(c.ChildElements()[0]) != "there" {
				t.Errorf("ins text = %q, want there", oxml.RunText(c.ChildElements()[0]))
			}
		}
	}
	if !sawDel || !sawIns {
		t.Fatalf("expected both del and ins, sawDel=%v sawIns=%v", sawDel, sawIns)
	}
}

func TestDeleteSpanningMultipleRuns(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>foo </w:t></w:r><w:r><w:t>bar </w:t></w:r><w:r><w:t>baz</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	rng, ok := match.Find(ix, "foo bar")
	if !ok {
		t.Fatal("match not found")
	}

	sp := New(0)
	if err := sp.Delete(ix, rng, "Bob", testTime); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	p := body.ChildElements()[0]
	children := p.ChildElements()
	if len(children) != 3 {
		t.Fatalf("expected 3 children after delete (del, leftover space, baz), got %d", len(children))
	}
	if children[0].Tag != "del" {
		t.Fatalf("first child = %s, want del", children[0].Tag)
	}
	// "bar " was split at the match boundary; its trailing space survives
	// untouched alongside the final "baz" run.
	if oxml.RunText(children[1]) != " " {
		t.Fatalf("leftover run text = %q, want a single space", oxml.RunText(children[1]))
	}
	if oxml.RunText(children[2]) != "baz" {
		t.Fatalf("final run text = %q, want baz", oxml.RunText(children[2]))
	}
}

func TestReplaceRejectsEmptyRange(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>text</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	sp := New(0)
	if err := sp.Replace(ix, match.Range{Start: 1, End: 1}, "x", "A", testTime); err == nil {
		t.Fatal("expected error for empty range, got nil")
	}
}

func TestInsertAfterAtCaret(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>end</w:t></w:r></w:p>
	</w:body>`)
	ix := runindex.Build(body)
	sp := New(0)
	if err := sp.InsertAfter(ix, match.Range{Start: 3, End: 3}, "!", "Carol", testTime); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	p := body.ChildElements()[0]
	children := p.ChildElements()
	if len(children) != 2 || children[1].Tag != "ins" {
		t.Fatalf("expected run followed by ins, got %d children, second=%v", len(children), children)
	}
}

func TestRevisionIDSeededPastExistingMax(t *testing.T) {
	body := bodyFromXML(t, `<w:body xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:p><w:r><w:t>aaa bbb ccc</w:t></w:r></w:p>
	</w:body>`)
	sp := New(5)
	ix := runindex.Build(body)
	rng, _ := match.Find(ix, "aaa")
	if err := sp.Delete(ix, rng, "A", testTime); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	del := body.ChildElements()[0].ChildElements()[0]
	if got := del.SelectAttrValue("w:id", ""); got != "6" {
		t.Fatalf("first w:id = %s, want 6", got)
	}
}
