// Package comments anchors review comments to a resolved range of visible
// text by inserting commentRangeStart/commentRangeEnd markers and a
// trailing commentReference run around the matched runs, and appends the
// comment body to the document's comments part.
package comments

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/vortex/docxreview/pkg/match"
	"github.com/vortex/docxreview/pkg/oxml"
	"github.com/vortex/docxreview/pkg/runindex"
)

// Writer allocates comment IDs and writes comment markup into both the
// document body and the comments part.
type Writer struct {
	used map[int]bool
}

// New builds a Writer aware of the comment IDs already present in
// commentsRoot (if non-nil), so freshly allocated IDs never collide.
func New(commentsRoot *etree.Element) *Writer {
	w := &Writer{used: map[int]bool{}}
	if commentsRoot == nil {
		return w
	}
	for _, c := range commentsRoot.ChildElements() {
		if c.Space != "w" || c.Tag != "comment" {
			continue
		}
		if v := c.SelectAttrValue("w:id", ""); v != "" {
			if n, err := parseInt(v); err == nil {
				w.used[n] = true
			}
		}
	}
	return w
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

// nextID returns the smallest non-negative integer not already used.
func (w *Writer) nextID() int {
	id := 0
	for w.used[id] {
		id++
	}
	w.used[id] = true
	return id
}

// Add anchors a comment to rng in the document body indexed by ix, and
// appends its body to commentsRoot. It returns the allocated comment id.
func (w *Writer) Add(ix *runindex.Index, rng match.Range, commentsRoot *etree.Element, author, text string, when time.Time) (int, error) {
	if rng.Len() == 0 {
		return 0, fmt.Errorf("comments: anchor range must be non-empty")
	}
	if _, ok := ix.SameParagraph(rng.Start, rng.End); !ok {
		return 0, fmt.Errorf("comments: anchor spans multiple paragraphs")
	}
	parent, runs, err := resolveRange(ix, rng)
	if err != nil {
		return 0, err
	}

	id := w.nextID()
	start := oxml.CommentRangeStart(id)
	oxml.InsertBefore(parent, runs[0], start)
	end := oxml.CommentRangeEnd(id)
	ref := oxml.CommentReferenceRun(id)
	oxml.InsertAfter(parent, runs[len(runs)-1], ref)
	oxml.InsertAfter(parent, runs[len(runs)-1], end)

	appendCommentBody(commentsRoot, id, author, text, when)
	return id, nil
}

// appendCommentBody builds and appends one <w:comment> element to
// commentsRoot: a leading AnnotationReferenceMark run, then one <w:p> per
// newline-separated line of text.
func appendCommentBody(commentsRoot *etree.Element, id int, author, text string, when time.Time) {
	c := commentsRoot.CreateElement("w:comment")
	c.CreateAttr("w:id", fmt.Sprintf("%d", id))
	c.CreateAttr("w:author", author)
	c.CreateAttr("w:date", when.UTC().Format(time.RFC3339))
	c.CreateAttr("w:initials", initialsOf(author))

	lines := splitLines(text)
	for i, line := range lines {
		p := c.CreateElement("w:p")
		pPr := p.CreateElement("w:pPr")
		pStyle := pPr.CreateElement("w:pStyle")
		pStyle.CreateAttr("w:val", "CommentText")
		if i == 0 {
			p.AddChild(oxml.AnnotationReferenceRun())
		}
		if line != "" {
			p.AddChild(oxml.NewRun(line))
		}
	}
}

// splitLines breaks text on \r\n, \r, or \n, matching the line boundaries
// a reviewer's comment text may use regardless of platform origin.
func splitLines(text string) []string {
	var lines []string
	start := 0
	i := 0
	for i < len(text) {
		switch text[i] {
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			i++
			start = i
		case '\n':
			lines = append(lines, text[start:i])
			i++
			start = i
		default:
			i++
		}
	}
	lines = append(lines, text[start:])
	return lines
}

func initialsOf(author string) string {
	var out []byte
	startOfWord := true
	for i := 0; i < len(author); i++ {
		c := author[i]
		if c == ' ' || c == '\t' {
			startOfWord = true
			continue
		}
		if startOfWord {
			out = append(out, c)
			startOfWord = false
		}
	}
	return string(out)
}

// resolveRange is shared logic with package splicer: split boundary runs
// as needed and return the contiguous whole-run sequence covering
// [rng.Start, rng.End) and their common parent.
func resolveRange(ix *runindex.Index, rng match.Range) (*etree.Element, []*etree.Element, error) {
	lo, hi, ok := overlapping(ix.Atoms, rng.Start, rng.End)
	if !ok {
		return nil, nil, fmt.Errorf("comments: range %d-%d not covered by any run", rng.Start, rng.End)
	}
	parent := ix.Atoms[lo].Parent
	for i := lo; i <= hi; i++ {
		if ix.Atoms[i].Parent != parent {
			return nil, nil, fmt.Errorf("comments: anchor spans incompatible XML containers")
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
