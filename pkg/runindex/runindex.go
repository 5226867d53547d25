// Package runindex builds a flattened view of a document body's visible
// text: a linear sequence of character positions, each mapped back to the
// run (or run-shaped element) and paragraph that produced it.
//
// Visible text is the concatenation of ordinary runs and tracked
// insertions/move-tos; tracked deletions and move-froms are excluded, so a
// later find() cannot match text that is no longer visible in the document.
package runindex

import (
	"github.com/beevik/etree"
	"github.com/vortex/docxreview/pkg/oxml"
)

// Atom is one run's contribution to the visible-text stream.
type Atom struct {
	Para   *etree.Element // owning <w:p>
	Run    *etree.Element // the <w:r> element itself
	Parent *etree.Element // Run's direct XML parent (p, hyperlink, ins, or moveTo)
	Start  int            // byte offset of Text[0] in the concatenated stream
	Text   string
}

// End returns the exclusive end offset of this atom.
func (a Atom) End() int { return a.Start + len(a.Text) }

// ParaSpan records a paragraph's [Start, End) range in the visible stream.
type ParaSpan struct {
	Para  *etree.Element
	Start int
	End   int
}

// Index is a snapshot of the visible text of a document body, valid only
// until the next mutation (Splicer/CommentWriter call) to that body.
type Index struct {
	Text       string
	Atoms      []Atom
	Paragraphs []ParaSpan
}

// Build walks body (the <w:body> element) once, left to right, producing
// an Index. Tables are traversed recursively; headers and footers are out
// of scope (RunIndex only ever covers the main document body).
func Build(body *etree.Element) *Index {
	ix := &Index{}
	pos := 0
	if body == nil {
		return ix
	}
	walkBlockChildren(body, ix, &pos)
	return ix
}

func walkBlockChildren(container *etree.Element, ix *Index, pos *int) {
	for _, child := range container.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "p":
			walkParagraph(child, ix, pos)
		case "tbl":
			walkTable(child, ix, pos)
		}
	}
}

func walkTable(tbl *etree.Element, ix *Index, pos *int) {
	for _, tr := range tbl.ChildElements() {
		if tr.Space != "w" || tr.Tag != "tr" {
			continue
		}
		for _, tc := range tr.ChildElements() {
			if tc.Space != "w" || tc.Tag != "tc" {
				continue
			}
			walkBlockChildren(tc, ix, pos)
		}
	}
}

func walkParagraph(p *etree.Element, ix *Index, pos *int) {
	start := *pos
	for _, child := range p.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "r":
			addRun(child, p, p, ix, pos)
		case "hyperlink":
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					addRun(gc, child, p, ix, pos)
				}
			}
		case "ins", "moveTo":
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					addRun(gc, child, p, ix, pos)
				}
			}
		case "del", "moveFrom":
			// Not visible text.
		case "commentRangeStart", "commentRangeEnd", "commentReference",
			"bookmarkStart", "bookmarkEnd", "proofErr", "pPr":
			// Zero-width or non-content; left untouched, no atoms.
		default:
			// Unknown/unsupported inline container (e.g. w:sdt): silent
			// pass-through, not indexed.
		}
	}
	ix.Paragraphs = append(ix.Paragraphs, ParaSpan{Para: p, Start: start, End: *pos})
}

func addRun(run, parent, para *etree.Element, ix *Index, pos *int) {
	text := oxml.RunText(run)
	if text == "" {
		// Still record a zero-length atom so an insert_before/insert_after
		// caret at this exact boundary has a run to anchor relative to.
	}
	ix.Atoms = append(ix.Atoms, Atom{Para: para, Run: run, Parent: parent, Start: *pos, Text: text})
	ix.Text += text
	*pos += len(text)
}

// ParagraphAt returns the paragraph span containing position pos, or nil
// if pos is out of range.
func (ix *Index) ParagraphAt(pos int) *ParaSpan {
	for i := range ix.Paragraphs {
		sp := &ix.Paragraphs[i]
		if pos >= sp.Start && pos <= sp.End {
			return sp
		}
	}
	return nil
}

// SameParagraph reports whether [start,end) lies wholly within one
// paragraph's span.
func (ix *Index) SameParagraph(start, end int) (*etree.Element, bool) {
	for _, sp := range ix.Paragraphs {
		if start >= sp.Start && end <= sp.End {
			return sp.Para, true
		}
	}
	return nil, false
}

// AtomAt returns the atom containing byte position pos (pos == an atom's
// End is considered to belong to the atom only when pos == len(Text),
// i.e. the caret sits at the end of the stream / a zero-length match).
// Returns ok=false if pos is out of range of every atom.
func (ix *Index) AtomAt(pos int) (Atom, int, bool) {
	for i, a := range ix.Atoms {
		if pos >= a.Start && pos < a.End() {
			return a, i, true
		}
	}
	// Caret exactly at the end of the last atom of its run (or of the
	// whole stream): return the last atom whose End() == pos, if any.
	for i := len(ix.Atoms) - 1; i >= 0; i-- {
		if ix.Atoms[i].End() == pos {
			return ix.Atoms[i], i, true
		}
	}
	return Atom{}, -1, false
}
