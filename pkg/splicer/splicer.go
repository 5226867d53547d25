// Package splicer rewrites a document's XML to turn a located range of
// visible-text positions into tracked-change revision markup: wrapping
// runs in <w:del>/<w:ins>, splitting boundary runs as needed, and never
// disturbing sibling content or formatting outside the range.
package splicer

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/vortex/docxreview/pkg/match"
	"github.com/vortex/docxreview/pkg/oxml"
	"github.com/vortex/docxreview/pkg/runindex"
)

// Splicer owns the process-wide monotonic revision-ID counter for one
// edit run. It is not safe for concurrent use, matching the single-
// threaded execution model of the rest of the tool.
type Splicer struct {
	nextRevID int
}

// New creates a Splicer whose first emitted w:ins/w:del id is
// maxExistingID+1.
func New(maxExistingID int) *Splicer {
	return &Splicer{nextRevID: maxExistingID + 1}
}

func (s *Splicer) nextID() int {
	id := s.nextRevID
	s.nextRevID++
	return id
}

// Replace wraps rng's runs in a w:del, then inserts a w:ins containing one
// run with newText immediately after, cloning RunProperties from the
// range's first run. rng must lie wholly within one paragraph and must be
// non-empty.
func (s *Splicer) Replace(ix *runindex.Index, rng match.Range, newText, author string, when time.Time) error {
	if rng.Len() == 0 {
		return fmt.Errorf("splicer: replace requires a non-empty range")
	}
	if _, ok := ix.SameParagraph(rng.Start, rng.End); !ok {
		return fmt.Errorf("splicer: match spans multiple paragraphs")
	}
	parent, runs, err := resolveRange(ix, rng)
	if err != nil {
		return err
	}
	pr := oxml.ClonePr(runs[0])
	del := oxml.WrapDel(runs, s.nextID(), author, when)
	newRun := oxml.NewRunWithPr(newText, pr)
	ins := oxml.WrapIns([]*etree.Element{newRun}, s.nextID(), author, when)
	replaceSequence(parent, runs, del, ins)
	return nil
}

// Delete wraps rng's runs in a w:del. rng must lie wholly within one
// paragraph and must be non-empty.
func (s *Splicer) Delete(ix *runindex.Index, rng match.Range, author string, when time.Time) error {
	if rng.Len() == 0 {
		return fmt.Errorf("splicer: delete requires a non-empty range")
	}
	if _, ok := ix.SameParagraph(rng.Start, rng.End); !ok {
		return fmt.Errorf("splicer: match spans multiple paragraphs")
	}
	parent, runs, err := resolveRange(ix, rng)
	if err != nil {
		return err
	}
	del := oxml.WrapDel(runs, s.nextID(), author, when)
	replaceSequence(parent, runs, del)
	return nil
}

// InsertAfter leaves rng's runs unchanged and inserts a w:ins containing
// one run with newText immediately after, cloning RunProperties from the
// range's last run. A zero-length rng is a valid caret position.
func (s *Splicer) InsertAfter(ix *runindex.Index, rng match.Range, newText, author string, when time.Time) error {
	if rng.Len() == 0 {
		return s.insertAtCaret(ix, rng.Start, newText, author, when)
	}
	if _, ok := ix.SameParagraph(rng.Start, rng.End); !ok {
		return fmt.Errorf("splicer: anchor spans multiple paragraphs")
	}
	parent, runs, err := resolveRange(ix, rng)
	if err != nil {
		return err
	}
	last := runs[len(runs)-1]
	pr := oxml.ClonePr(last)
	newRun := oxml.NewRunWithPr(newText, pr)
	ins := oxml.WrapIns([]*etree.Element{newRun}, s.nextID(), author, when)
	oxml.InsertAfter(parent, last, ins)
	return nil
}

// InsertBefore leaves rng's runs unchanged and inserts a w:ins containing
// one run with newText immediately before, cloning RunProperties from the
// range's first run. A zero-length rng is a valid caret position.
func (s *Splicer) InsertBefore(ix *runindex.Index, rng match.Range, newText, author string, when time.Time) error {
	if rng.Len() == 0 {
		return s.insertAtCaret(ix, rng.Start, newText, author, when)
	}
	if _, ok := ix.SameParagraph(rng.Start, rng.End); !ok {
		return fmt.Errorf("splicer: anchor spans multiple paragraphs")
	}
	parent, runs, err := resolveRange(ix, rng)
	if err != nil {
		return err
	}
	first := runs[0]
	pr := oxml.ClonePr(first)
	newRun := oxml.NewRunWithPr(newText, pr)
	ins := oxml.WrapIns([]*etree.Element{newRun}, s.nextID(), author, when)
	oxml.InsertBefore(parent, first, ins)
	return nil
}

func (s *Splicer) insertAtCaret(ix *runindex.Index, pos int, newText, author string, when time.Time) error {
	parent, idx, ok := resolveCaret(ix, pos)
	if !ok {
		return fmt.Errorf("splicer: could not locate insertion point")
	}
	newRun := oxml.NewRun(newText)
	ins := oxml.WrapIns([]*etree.Element{newRun}, s.nextID(), author, when)
	parent.InsertChildAt(idx, ins)
	return nil
}

// resolveRange splits boundary runs as needed and returns the contiguous,
// whole-run sequence covering [rng.Start, rng.End) along with their common
// parent element.
func resolveRange(ix *runindex.Index, rng match.Range) (*etree.Element, []*etree.Element, error) {
	lo, hi, ok := overlapping(ix.Atoms, rng.Start, rng.End)
	if !ok {
		return nil, nil, fmt.Errorf("splicer: range %d-%d not covered by any run", rng.Start, rng.End)
	}
	parent := ix.Atoms[lo].Parent
	for i := lo; i <= hi; i++ {
		if ix.Atoms[i].Parent != parent {
			return nil, nil, fmt.Errorf("splicer: match spans incompatible XML containers (e.g. crosses a hyperlink boundary)")
		}
	}

	var runs []*etree.Element
	for i := lo; i <= hi; i++ {
		a := ix.Atoms[i]
		localStart := rng.Start - a.Start
		if localStart < 0 {
			localStart = 0
		}
		localEnd := a.End() - a.Start
		if rng.End < a.End() {
			localEnd = rng.End - a.Start
		}
		switch {
		case localStart == 0 && localEnd == len(a.Text):
			runs = append(runs, a.Run)
		case localStart == 0:
			left, right := oxml.SplitRun(a.Run, localEnd)
			oxml.ReplaceChild(parent, a.Run, left, right)
			runs = append(runs, left)
		case localEnd == len(a.Text):
			left, right := oxml.SplitRun(a.Run, localStart)
			oxml.ReplaceChild(parent, a.Run, left, right)
			runs = append(runs, right)
		default:
			left, rest := oxml.SplitRun(a.Run, localStart)
			mid, right := oxml.SplitRun(rest, localEnd-localStart)
			oxml.ReplaceChild(parent, a.Run, left, mid, right)
			runs = append(runs, mid)
		}
	}
	return parent, runs, nil
}

// overlapping returns the index range [lo, hi] (inclusive) of atoms that
// intersect [start, end). ok is false if no atom intersects.
func overlapping(atoms []runindex.Atom, start, end int) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, a := range atoms {
		if a.End() > start && a.Start < end {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi, lo >= 0
}

// resolveCaret locates the single XML insertion point corresponding to a
// zero-length position: the index within parent's children at which a new
// element should be inserted.
func resolveCaret(ix *runindex.Index, pos int) (parent *etree.Element, idx int, ok bool) {
	for _, a := range ix.Atoms {
		if a.Start == pos {
			return a.Parent, oxml.ChildIndex(a.Parent, a.Run), true
		}
	}
	for i := len(ix.Atoms) - 1; i >= 0; i-- {
		a := ix.Atoms[i]
		if a.End() == pos {
			return a.Parent, oxml.ChildIndex(a.Parent, a.Run) + 1, true
		}
	}
	sp := ix.ParagraphAt(pos)
	if sp == nil {
		return nil, 0, false
	}
	return sp.Para, indexAfterParagraphProperties(sp.Para), true
}

// indexAfterParagraphProperties returns the child index immediately after
// a paragraph's w:pPr, or 0 if it has none (w:pPr, when present, is always
// the first child of w:p).
func indexAfterParagraphProperties(p *etree.Element) int {
	for i, tok := range p.Child {
		if el, ok := tok.(*etree.Element); ok {
			if el.Space == "w" && el.Tag == "pPr" {
				return i + 1
			}
			return i
		}
	}
	return 0
}

// replaceSequence removes oldRuns from parent and inserts newEls at the
// position the first old run occupied.
func replaceSequence(parent *etree.Element, oldRuns []*etree.Element, newEls ...*etree.Element) {
	idx := oxml.ChildIndex(parent, oldRuns[0])
	for _, r := range oldRuns {
		parent.RemoveChild(r)
	}
	for i, e := range newEls {
		parent.InsertChildAt(idx+i, e)
	}
}
