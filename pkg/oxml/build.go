// Package oxml provides low-level, direct manipulation of WordprocessingML
// elements via github.com/beevik/etree: building runs, cloning run
// properties, splitting a run at an arbitrary text offset, and wrapping
// runs in revision markup (w:ins/w:del) or comment range markers.
//
// Elements are built by calling CreateElement/CreateAttr with "w:"-prefixed
// tag and attribute names directly, the same convention the reference
// WordprocessingML tooling this package is modeled on uses for its
// hand-written (non-generated) element constructors.
package oxml

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// fixedTextOf maps the run children that contribute a fixed single
// character to the visible-text projection. The editable text tag ("t",
// with an arbitrary split point) and w:br are handled separately.
var fixedTextOf = map[string]string{
	"tab":           "\t",
	"cr":            "\n",
	"noBreakHyphen": "-",
	"ptab":          "\t",
}

// NewRun builds a bare <w:r><w:t xml:space="preserve">text</w:t></w:r>.
func NewRun(text string) *etree.Element {
	r := etree.NewElement("w:r")
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return r
}

// ClonePr returns a deep copy of run's <w:rPr> child, or nil if absent.
func ClonePr(run *etree.Element) *etree.Element {
	rPr := ChildOf(run, "rPr")
	if rPr == nil {
		return nil
	}
	return rPr.Copy()
}

// ChildOf returns the first direct child of el in the "w" namespace with
// the given local tag, or nil.
func ChildOf(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Space == "w" && c.Tag == tag {
			return c
		}
	}
	return nil
}

// NewRunWithPr builds a run containing text and a cloned copy of pr (which
// may be nil) as its <w:rPr>.
func NewRunWithPr(text string, pr *etree.Element) *etree.Element {
	r := NewRun(text)
	if pr != nil {
		clone := pr.Copy()
		r.InsertChildAt(0, clone)
	}
	return r
}

// RunText returns the visible text contributed by a <w:r> element: the
// concatenation of its w:t, w:tab, w:cr, w:noBreakHyphen, w:ptab children,
// in document order. w:br with type "page"/"column" contributes nothing;
// an absent or "textWrapping" type contributes "\n".
func RunText(run *etree.Element) string {
	return RunTextTag(run, "t")
}

// RunTextTag is RunText generalized over the text-bearing tag name, so
// callers can extract from <w:delText> inside a w:del/w:moveFrom the same
// way RunText extracts from <w:t>.
func RunTextTag(run *etree.Element, textTag string) string {
	var sb []byte
	for _, c := range run.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case textTag:
			sb = append(sb, c.Text()...)
		case "br":
			brType := c.SelectAttrValue("w:type", "")
			if brType == "" || brType == "textWrapping" {
				sb = append(sb, '\n')
			}
		default:
			if lit, ok := fixedTextOf[c.Tag]; ok {
				sb = append(sb, lit...)
			}
		}
	}
	return string(sb)
}

// SplitRun splits run's visible-text content at byte offset, returning two
// new run elements: left holds [0:offset), right holds [offset:end). Both
// carry an independent clone of run's <w:rPr>. The original run element is
// left untouched; the caller is responsible for replacing it with the two
// halves in the parent. offset must be in [0, len(RunText(run))]; offset 0
// or len produce a left/right half that is empty of text children beyond rPr.
func SplitRun(run *etree.Element, offset int) (left, right *etree.Element) {
	pr := ClonePr(run)
	left = etree.NewElement("w:r")
	right = etree.NewElement("w:r")
	if pr != nil {
		left.AddChild(pr.Copy())
		right.AddChild(pr.Copy())
	}

	pos := 0
	for _, c := range run.ChildElements() {
		if c.Space != "w" || c.Tag == "rPr" {
			continue
		}
		if c.Tag == "t" {
			text := c.Text()
			end := pos + len(text)
			switch {
			case end <= offset:
				appendTextChild(left, "t", text)
			case pos >= offset:
				appendTextChild(right, "t", text)
			default:
				cut := offset - pos
				appendTextChild(left, "t", text[:cut])
				appendTextChild(right, "t", text[cut:])
			}
			pos = end
			continue
		}
		lit, fixed := fixedTextOf[c.Tag]
		isBreak := c.Tag == "br"
		if isBreak {
			brType := c.SelectAttrValue("w:type", "")
			if brType != "" && brType != "textWrapping" {
				// Page/column breaks contribute no text; keep on the left.
				left.AddChild(c.Copy())
				continue
			}
			lit = "\n"
			fixed = true
		}
		if !fixed {
			// Non-text-bearing child (e.g. w:drawing, w:commentReference
			// nested oddly inside a run being split): keep with left.
			left.AddChild(c.Copy())
			continue
		}
		end := pos + len(lit)
		if pos >= offset {
			right.AddChild(c.Copy())
		} else if end <= offset {
			left.AddChild(c.Copy())
		} else {
			// Offset falls inside a 1-byte fixed atom: not reachable since
			// fixed atoms are exactly 1 byte and offsets only ever land on
			// atom boundaries, but keep the atom on the left defensively.
			left.AddChild(c.Copy())
		}
		pos = end
	}
	return left, right
}

func appendTextChild(run *etree.Element, tag, text string) {
	if text == "" {
		return
	}
	t := run.CreateElement("w:" + tag)
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
}

// ReplaceChild swaps old for one or more replacement elements at the same
// position among parent's children.
func ReplaceChild(parent, old *etree.Element, replacements ...*etree.Element) {
	idx := ChildIndex(parent, old)
	if idx < 0 {
		return
	}
	parent.RemoveChild(old)
	for i, rep := range replacements {
		parent.InsertChildAt(idx+i, rep)
	}
}

// InsertAfter inserts el immediately after ref among parent's children.
func InsertAfter(parent, ref, el *etree.Element) {
	idx := ChildIndex(parent, ref)
	if idx < 0 {
		parent.AddChild(el)
		return
	}
	parent.InsertChildAt(idx+1, el)
}

// InsertBefore inserts el immediately before ref among parent's children.
func InsertBefore(parent, ref, el *etree.Element) {
	idx := ChildIndex(parent, ref)
	if idx < 0 {
		parent.InsertChildAt(0, el)
		return
	}
	parent.InsertChildAt(idx, el)
}

// ChildIndex returns the index of child among parent's element children
// (ignoring comments/char-data/proc-insts), or -1.
func ChildIndex(parent, child *etree.Element) int {
	i := 0
	for _, tok := range parent.Child {
		if el, ok := tok.(*etree.Element); ok {
			if el == child {
				return i
			}
			i++
		}
	}
	return -1
}

// WrapDel converts each run's <w:t> (and hyperlink-style text atoms) to
// <w:delText> and wraps runs in a <w:del w:id w:author w:date> element.
// runs must be contiguous, already-split whole runs sharing one parent.
func WrapDel(runs []*etree.Element, id int, author string, date time.Time) *etree.Element {
	del := etree.NewElement("w:del")
	del.CreateAttr("w:id", strconv.Itoa(id))
	del.CreateAttr("w:author", author)
	del.CreateAttr("w:date", date.UTC().Format(time.RFC3339))
	for _, r := range runs {
		clone := r.Copy()
		convertTToDelText(clone)
		del.AddChild(clone)
	}
	return del
}

func convertTToDelText(run *etree.Element) {
	for _, c := range run.ChildElements() {
		if c.Space == "w" && c.Tag == "t" {
			c.Tag = "delText"
		}
	}
}

// WrapIns wraps runs in a <w:ins w:id w:author w:date> element.
func WrapIns(runs []*etree.Element, id int, author string, date time.Time) *etree.Element {
	ins := etree.NewElement("w:ins")
	ins.CreateAttr("w:id", strconv.Itoa(id))
	ins.CreateAttr("w:author", author)
	ins.CreateAttr("w:date", date.UTC().Format(time.RFC3339))
	for _, r := range runs {
		ins.AddChild(r.Copy())
	}
	return ins
}

// CommentRangeStart builds a <w:commentRangeStart w:id="id"/> element.
func CommentRangeStart(id int) *etree.Element {
	e := etree.NewElement("w:commentRangeStart")
	e.CreateAttr("w:id", strconv.Itoa(id))
	return e
}

// CommentRangeEnd builds a <w:commentRangeEnd w:id="id"/> element.
func CommentRangeEnd(id int) *etree.Element {
	e := etree.NewElement("w:commentRangeEnd")
	e.CreateAttr("w:id", strconv.Itoa(id))
	return e
}

// CommentReferenceRun builds the reference run:
//
//	<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr>
//	  <w:commentReference w:id="id"/></w:r>
func CommentReferenceRun(id int) *etree.Element {
	r := etree.NewElement("w:r")
	rPr := r.CreateElement("w:rPr")
	style := rPr.CreateElement("w:rStyle")
	style.CreateAttr("w:val", "CommentReference")
	ref := r.CreateElement("w:commentReference")
	ref.CreateAttr("w:id", strconv.Itoa(id))
	return r
}

// AnnotationReferenceRun builds the leading run of a comment body:
//
//	<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr>
//	  <w:annotationRef/></w:r>
func AnnotationReferenceRun() *etree.Element {
	r := etree.NewElement("w:r")
	rPr := r.CreateElement("w:rPr")
	style := rPr.CreateElement("w:rStyle")
	style.CreateAttr("w:val", "CommentReference")
	r.CreateElement("w:annotationRef")
	return r
}

// MaxRevisionID scans every w:ins/w:del/w:moveFrom/w:moveTo element (in
// the document and, if non-nil, the comments tree) for its w:id attribute
// and returns the largest value found, or 0 if none.
func MaxRevisionID(trees ...*etree.Element) int {
	max := 0
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el == nil {
			return
		}
		if el.Space == "w" {
			switch el.Tag {
			case "ins", "del", "moveFrom", "moveTo":
				if v := el.SelectAttrValue("w:id", ""); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > max {
						max = n
					}
				}
			}
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	for _, t := range trees {
		walk(t)
	}
	return max
}
