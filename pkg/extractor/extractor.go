// Package extractor is the read-only inverse of the edit path: it walks a
// document body once and produces the shared docmodel.Document used by
// read, diff, and textconv.
package extractor

import (
	"crypto/sha256"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/opc"
	"github.com/vortex/docxreview/pkg/oxml"
)

const (
	relTypeHeader   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeFootnote = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	relTypeEndnote  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"
)

// Document is the full in-memory read model of a .docx package.
type Document struct {
	Paragraphs     []docmodel.Paragraph
	Tables         []docmodel.Table
	Comments       []docmodel.Comment
	Images         []docmodel.Image
	HeadersFooters []docmodel.HeaderFooter
	Footnotes      []docmodel.Note
	Endnotes       []docmodel.Note
	Metadata       docmodel.PackageMetadata
}

// Extract walks store's main document body and related parts, producing a
// Document. It never mutates store.
func Extract(store *opc.Store) (*Document, error) {
	body := store.Body()
	if body == nil {
		return nil, fmt.Errorf("extractor: main document has no body")
	}

	doc := &Document{}
	anchors := map[int]anchorInfo{}
	walkBlockChildren(body, doc, &anchors)

	for id, rng := range anchors {
		c := docmodel.Comment{
			ID:             strconv.Itoa(id),
			AnchorText:     rng.text,
			ParagraphIndex: rng.paragraphIndex,
		}
		doc.Comments = append(doc.Comments, c)
	}
	mergeCommentBodies(doc, store)

	doc.Footnotes = extractNotes(store, relTypeFootnote, "word/footnotes.xml", "footnote")
	doc.Endnotes = extractNotes(store, relTypeEndnote, "word/endnotes.xml", "endnote")
	doc.Images = extractImages(store)
	doc.HeadersFooters = extractHeadersFooters(store)
	doc.Metadata = extractMetadata(store, doc)

	return doc, nil
}

type anchorInfo struct {
	text           string
	paragraphIndex int
}

// Summarize converts a Document into the JSON-facing ReadResult shape for
// the `read` command, flattening paragraphs/tables/comments and computing
// the author/count summary.
func Summarize(file string, doc *Document) docmodel.ReadResult {
	r := docmodel.ReadResult{File: file}

	changeAuthors := map[string]bool{}
	commentAuthors := map[string]bool{}

	for i, p := range doc.Paragraphs {
		tcs := TrackedChanges(p)
		for _, tc := range tcs {
			changeAuthors[tc.Author] = true
			if tc.Type == "insert" {
				r.Summary.Insertions++
			} else {
				r.Summary.Deletions++
			}
		}
		r.Summary.TotalTrackedChanges += len(tcs)
		r.Paragraphs = append(r.Paragraphs, docmodel.ParagraphOut{
			Index:          i,
			Style:          p.Style,
			Text:           VisibleText(p),
			TrackedChanges: tcs,
		})
	}

	for _, c := range doc.Comments {
		commentAuthors[c.Author] = true
		r.Comments = append(r.Comments, docmodel.CommentOut{
			ID:             c.ID,
			Author:         c.Author,
			Date:           c.Date,
			AnchorText:     c.AnchorText,
			Text:           c.Text,
			ParagraphIndex: c.ParagraphIndex,
		})
	}
	r.Summary.TotalComments = len(doc.Comments)

	for _, t := range doc.Tables {
		cells := make([][]string, len(t.Rows))
		cols := 0
		for ri, row := range t.Rows {
			cells[ri] = make([]string, len(row))
			if len(row) > cols {
				cols = len(row)
			}
			for ci, cell := range row {
				var sb strings.Builder
				for _, p := range cell.Paragraphs {
					sb.WriteString(VisibleText(p))
					sb.WriteString("\n")
				}
				cells[ri][ci] = strings.TrimRight(sb.String(), "\n")
			}
		}
		r.Tables = append(r.Tables, docmodel.TableOut{
			Index:          t.Index,
			Rows:           len(t.Rows),
			Cols:           cols,
			Cells:          cells,
			ParagraphIndex: t.Index,
		})
	}

	for _, img := range doc.Images {
		r.Images = append(r.Images, docmodel.ImageOut{
			RelID:     img.RelID,
			FileName:  img.FileName,
			MediaType: img.MediaType,
			Bytes:     img.Bytes,
			SHA256:    img.SHA256,
		})
	}

	for _, hf := range doc.HeadersFooters {
		r.HeadersFooters = append(r.HeadersFooters, docmodel.HeaderFooterOut{
			Kind:  hf.Kind,
			Scope: hf.Scope,
			Text:  hf.Text,
		})
	}

	for _, n := range doc.Footnotes {
		r.Footnotes = append(r.Footnotes, docmodel.NoteOut{ID: n.ID, Text: n.Text})
	}
	for _, n := range doc.Endnotes {
		r.Endnotes = append(r.Endnotes, docmodel.NoteOut{ID: n.ID, Text: n.Text})
	}

	m := doc.Metadata
	r.Metadata = docmodel.MetadataOut{
		Title:          m.Title,
		Author:         m.Author,
		LastModifiedBy: m.LastModifiedBy,
		Created:        m.Created,
		Modified:       m.Modified,
		Revision:       m.Revision,
		WordCount:      m.WordCount,
		ParagraphCount: m.ParagraphCount,
		Application:    m.Application,
		Company:        m.Company,
	}

	for a := range changeAuthors {
		r.Summary.ChangeAuthors = append(r.Summary.ChangeAuthors, a)
	}
	for a := range commentAuthors {
		r.Summary.CommentAuthors = append(r.Summary.CommentAuthors, a)
	}
	sort.Strings(r.Summary.ChangeAuthors)
	sort.Strings(r.Summary.CommentAuthors)

	return r
}

// walkBlockChildren walks a container (body or table cell) for paragraphs
// and tables, appending to doc.Paragraphs/doc.Tables and tracking
// open comment ranges in open/anchors.
func walkBlockChildren(container *etree.Element, doc *Document, anchors *map[int]anchorInfo) {
	open := map[int]*strings.Builder{}
	for _, child := range container.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "p":
			idx := len(doc.Paragraphs)
			p := walkParagraph(child, idx, open, anchors)
			doc.Paragraphs = append(doc.Paragraphs, p)
		case "tbl":
			doc.Tables = append(doc.Tables, walkTable(child, len(doc.Paragraphs)-1))
		}
	}
}

func walkTable(tbl *etree.Element, afterParaIndex int) docmodel.Table {
	t := docmodel.Table{Index: afterParaIndex}
	for _, tr := range tbl.ChildElements() {
		if tr.Space != "w" || tr.Tag != "tr" {
			continue
		}
		var row []docmodel.Cell
		for _, tc := range tr.ChildElements() {
			if tc.Space != "w" || tc.Tag != "tc" {
				continue
			}
			cellDoc := &Document{}
			anchors := map[int]anchorInfo{}
			walkBlockChildren(tc, cellDoc, &anchors)
			row = append(row, docmodel.Cell{Paragraphs: cellDoc.Paragraphs})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// walkParagraph builds a docmodel.Paragraph, recording comment anchor text
// into open (keyed by comment ID) for every range currently inside a
// CommentRangeStart/End pair at the moment each run is visited. anchors is
// finalized at commentRangeEnd: paragraphIndex records where the start
// marker was seen (possibly in an earlier paragraph), per the data
// model's definition of a comment's anchor paragraph.
func walkParagraph(p *etree.Element, paraIndex int, open map[int]*strings.Builder, anchors *map[int]anchorInfo) docmodel.Paragraph {
	para := docmodel.Paragraph{Style: paragraphStyle(p)}
	lvl, numID := numberingOf(p)
	para.NumberingLevel = lvl
	para.NumberingID = numID

	appendText := func(s string) {
		for _, sb := range open {
			sb.WriteString(s)
		}
	}

	for _, child := range p.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "r":
			run := runOf(child)
			para.Children = append(para.Children, run)
			appendText(run.Text)
		case "hyperlink":
			var runs []docmodel.Run
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					r := runOf(gc)
					runs = append(runs, r)
					appendText(r.Text)
				}
			}
			target := child.SelectAttrValue("r:id", "")
			para.Children = append(para.Children, docmodel.Hyperlink{Target: target, Runs: runs})
		case "ins", "moveTo":
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					rev := revisionOf(child, gc)
					if child.Tag == "ins" {
						para.Children = append(para.Children, rev)
					} else {
						para.Children = append(para.Children, docmodel.MoveToRun(rev))
					}
					appendText(rev.Text)
				}
			}
		case "del", "moveFrom":
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					rev := revisionOfDeleted(child, gc)
					if child.Tag == "del" {
						para.Children = append(para.Children, rev)
					} else {
						para.Children = append(para.Children, docmodel.MoveFromRun(rev))
					}
				}
			}
		case "commentRangeStart":
			id, err := strconv.Atoi(child.SelectAttrValue("w:id", ""))
			if err == nil {
				open[id] = &strings.Builder{}
				(*anchors)[id] = anchorInfo{paragraphIndex: paraIndex}
				para.Children = append(para.Children, docmodel.CommentRangeStart{ID: id})
			}
		case "commentRangeEnd":
			id, err := strconv.Atoi(child.SelectAttrValue("w:id", ""))
			if err == nil {
				if sb, ok := open[id]; ok {
					info := (*anchors)[id]
					info.text = sb.String()
					(*anchors)[id] = info
					delete(open, id)
				}
				para.Children = append(para.Children, docmodel.CommentRangeEnd{ID: id})
			}
		case "commentReference":
			id, err := strconv.Atoi(child.SelectAttrValue("w:id", ""))
			if err == nil {
				para.Children = append(para.Children, docmodel.CommentReference{ID: id})
			}
		}
	}
	return para
}

func paragraphStyle(p *etree.Element) string {
	pPr := oxml.ChildOf(p, "pPr")
	style := oxml.ChildOf(pPr, "pStyle")
	if style == nil {
		return ""
	}
	return style.SelectAttrValue("w:val", "")
}

func numberingOf(p *etree.Element) (*int, *string) {
	pPr := oxml.ChildOf(p, "pPr")
	numPr := oxml.ChildOf(pPr, "numPr")
	if numPr == nil {
		return nil, nil
	}
	ilvl := oxml.ChildOf(numPr, "ilvl")
	numId := oxml.ChildOf(numPr, "numId")
	var lvl *int
	var id *string
	if ilvl != nil {
		if n, err := strconv.Atoi(ilvl.SelectAttrValue("w:val", "")); err == nil {
			lvl = &n
		}
	}
	if numId != nil {
		v := numId.SelectAttrValue("w:val", "")
		id = &v
	}
	return lvl, id
}

func runOf(r *etree.Element) docmodel.Run {
	return docmodel.Run{Text: oxml.RunText(r), Props: propsOf(r)}
}

func revisionOf(container, r *etree.Element) docmodel.InsertedRun {
	return docmodel.InsertedRun{
		Text:   oxml.RunText(r),
		Props:  propsOf(r),
		Author: container.SelectAttrValue("w:author", ""),
		Date:   parseDate(container.SelectAttrValue("w:date", "")),
		ID:     atoiOr0(container.SelectAttrValue("w:id", "")),
	}
}

func revisionOfDeleted(container, r *etree.Element) docmodel.DeletedRun {
	return docmodel.DeletedRun{
		Text:   oxml.RunTextTag(r, "delText"),
		Props:  propsOf(r),
		Author: container.SelectAttrValue("w:author", ""),
		Date:   parseDate(container.SelectAttrValue("w:date", "")),
		ID:     atoiOr0(container.SelectAttrValue("w:id", "")),
	}
}

func atoiOr0(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func propsOf(run *etree.Element) docmodel.RunProperties {
	rPr := oxml.ChildOf(run, "rPr")
	if rPr == nil {
		return docmodel.RunProperties{}
	}
	p := docmodel.RunProperties{
		Bold:          toggle(rPr, "b"),
		Italic:        toggle(rPr, "i"),
		Underline:     underline(rPr),
		Strikethrough: toggle(rPr, "strike"),
	}
	if fonts := oxml.ChildOf(rPr, "rFonts"); fonts != nil {
		p.FontAscii = fonts.SelectAttrValue("w:ascii", "")
		p.FontHighAnsi = fonts.SelectAttrValue("w:hAnsi", "")
		p.FontCs = fonts.SelectAttrValue("w:cs", "")
	}
	if sz := oxml.ChildOf(rPr, "sz"); sz != nil {
		p.Size = sz.SelectAttrValue("w:val", "")
	}
	if color := oxml.ChildOf(rPr, "color"); color != nil {
		p.Color = color.SelectAttrValue("w:val", "")
	}
	if hl := oxml.ChildOf(rPr, "highlight"); hl != nil {
		p.Highlight = hl.SelectAttrValue("w:val", "")
	}
	return p
}

func toggle(rPr *etree.Element, tag string) *bool {
	el := oxml.ChildOf(rPr, tag)
	if el == nil {
		return nil
	}
	v := el.SelectAttrValue("w:val", "")
	b := !(v == "false" || v == "0")
	return &b
}

func underline(rPr *etree.Element) *bool {
	el := oxml.ChildOf(rPr, "u")
	if el == nil {
		return nil
	}
	v := el.SelectAttrValue("w:val", "")
	b := v != "none"
	return &b
}

// mergeCommentBodies reads the comments part (if present) and fills in
// Author, Date, and Text for every comment whose anchor was discovered by
// walkBlockChildren; comments with a range but no CommentsPart entry, or a
// CommentsPart entry with no range, are both kept (the former with an
// empty body, the latter with no anchor and ParagraphIndex -1) so the
// mismatch stays visible in the result instead of silently dropping data.
func mergeCommentBodies(doc *Document, store *opc.Store) {
	if !store.HasComments() {
		return
	}
	byID := map[string]*docmodel.Comment{}
	for i := range doc.Comments {
		byID[doc.Comments[i].ID] = &doc.Comments[i]
	}
	for _, c := range store.CommentsRoot().ChildElements() {
		if c.Space != "w" || c.Tag != "comment" {
			continue
		}
		id := c.SelectAttrValue("w:id", "")
		author := c.SelectAttrValue("w:author", "")
		date := parseDate(c.SelectAttrValue("w:date", ""))
		text := commentBodyText(c)
		if existing, ok := byID[id]; ok {
			existing.Author = author
			existing.Date = date
			existing.Text = text
			continue
		}
		doc.Comments = append(doc.Comments, docmodel.Comment{
			ID: id, Author: author, Date: date, Text: text, ParagraphIndex: -1,
		})
	}
}

func commentBodyText(comment *etree.Element) string {
	var lines []string
	for _, p := range comment.ChildElements() {
		if p.Space != "w" || p.Tag != "p" {
			continue
		}
		var sb strings.Builder
		for _, r := range p.ChildElements() {
			if r.Space == "w" && r.Tag == "r" {
				sb.WriteString(oxml.RunText(r))
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func extractNotes(store *opc.Store, relType, fallbackName, kind string) []docmodel.Note {
	name := partNameForRelType(store, relType, fallbackName)
	blob, ok := store.Blob(name)
	if !ok {
		return nil
	}
	xdoc := etree.NewDocument()
	xdoc.ReadSettings.Permissive = true
	if err := xdoc.ReadFromBytes(blob); err != nil || xdoc.Root() == nil {
		return nil
	}
	var notes []docmodel.Note
	for _, n := range xdoc.Root().ChildElements() {
		if n.Space != "w" || n.Tag != kind {
			continue
		}
		noteType := n.SelectAttrValue("w:type", "")
		if noteType == "separator" || noteType == "continuationSeparator" {
			continue
		}
		var sb strings.Builder
		for _, p := range n.ChildElements() {
			if p.Space != "w" || p.Tag != "p" {
				continue
			}
			for _, r := range p.ChildElements() {
				if r.Space == "w" && r.Tag == "r" {
					sb.WriteString(oxml.RunText(r))
				}
			}
		}
		notes = append(notes, docmodel.Note{ID: n.SelectAttrValue("w:id", ""), Text: sb.String()})
	}
	return notes
}

func partNameForRelType(store *opc.Store, relType, fallback string) string {
	for _, rel := range store.DocumentRelationships() {
		if rel.Type == relType {
			return rel.Target
		}
	}
	return fallback
}

func extractImages(store *opc.Store) []docmodel.Image {
	var images []docmodel.Image
	for _, rel := range store.DocumentRelationships() {
		if rel.Type != relTypeImage {
			continue
		}
		blob, ok := store.Blob(rel.Target)
		if !ok {
			continue
		}
		sum := sha256.Sum256(blob)
		images = append(images, docmodel.Image{
			RelID:     rel.ID,
			FileName:  baseName(rel.Target),
			MediaType: mediaTypeOf(rel.Target),
			Bytes:     len(blob),
			SHA256:    fmt.Sprintf("%x", sum),
		})
	}
	return images
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func mediaTypeOf(path string) string {
	ext := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = strings.ToLower(path[i+1:])
			break
		}
		if path[i] == '/' {
			break
		}
	}
	switch ext {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return "image/svg+xml"
	case "emf":
		return "image/x-emf"
	case "wmf":
		return "image/x-wmf"
	case "tiff", "tif":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func extractHeadersFooters(store *opc.Store) []docmodel.HeaderFooter {
	var result []docmodel.HeaderFooter
	for _, rel := range store.DocumentRelationships() {
		var kind string
		switch rel.Type {
		case relTypeHeader:
			kind = "header"
		case relTypeFooter:
			kind = "footer"
		default:
			continue
		}
		blob, ok := store.Blob(rel.Target)
		if !ok {
			continue
		}
		xdoc := etree.NewDocument()
		xdoc.ReadSettings.Permissive = true
		if err := xdoc.ReadFromBytes(blob); err != nil || xdoc.Root() == nil {
			continue
		}
		var sb strings.Builder
		collectBodyText(xdoc.Root(), &sb)
		result = append(result, docmodel.HeaderFooter{
			Kind:  kind,
			Scope: "default",
			Text:  sb.String(),
		})
	}
	return result
}

func collectBodyText(el *etree.Element, sb *strings.Builder) {
	for _, c := range el.ChildElements() {
		if c.Space == "w" && c.Tag == "r" {
			sb.WriteString(oxml.RunText(c))
			continue
		}
		collectBodyText(c, sb)
	}
}

// coreProperties mirrors the docProps/core.xml fields we read.
type coreProperties struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Creator        string   `xml:"creator"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
	Revision       string   `xml:"revision"`
}

// appProperties mirrors the docProps/app.xml fields we read.
type appProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
	Company     string   `xml:"Company"`
}

func extractMetadata(store *opc.Store, doc *Document) docmodel.PackageMetadata {
	m := docmodel.PackageMetadata{}
	if blob, ok := store.Blob("docProps/core.xml"); ok {
		var cp coreProperties
		if xml.Unmarshal(blob, &cp) == nil {
			m.Title = cp.Title
			m.Author = cp.Creator
			m.LastModifiedBy = cp.LastModifiedBy
			m.Created = parseDate(cp.Created)
			m.Modified = parseDate(cp.Modified)
			if n, err := strconv.Atoi(cp.Revision); err == nil {
				m.Revision = n
			}
		}
	}
	if blob, ok := store.Blob("docProps/app.xml"); ok {
		var ap appProperties
		if xml.Unmarshal(blob, &ap) == nil {
			m.Application = ap.Application
			m.Company = ap.Company
		}
	}
	m.ParagraphCount = len(doc.Paragraphs)
	m.WordCount = 0
	for _, p := range doc.Paragraphs {
		m.WordCount += len(strings.Fields(VisibleText(p)))
	}
	return m
}

// VisibleText concatenates a paragraph's visible text: Run and
// InsertedRun/MoveToRun contribute; DeletedRun/MoveFromRun do not.
func VisibleText(p docmodel.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case docmodel.Run:
			sb.WriteString(c.Text)
		case docmodel.InsertedRun:
			sb.WriteString(c.Text)
		case docmodel.MoveToRun:
			sb.WriteString(c.Text)
		case docmodel.Hyperlink:
			for _, r := range c.Runs {
				sb.WriteString(r.Text)
			}
		}
	}
	return sb.String()
}

// TrackedChanges flattens a paragraph's DeletedRun/InsertedRun/
// MoveFromRun/MoveToRun children into output entries. MoveFromRun reports
// as "delete" and MoveToRun as "insert", matching their differencing
// semantics.
func TrackedChanges(p docmodel.Paragraph) []docmodel.TrackedChangeOut {
	var out []docmodel.TrackedChangeOut
	for _, child := range p.Children {
		switch c := child.(type) {
		case docmodel.DeletedRun:
			out = append(out, docmodel.TrackedChangeOut{Type: "delete", Text: c.Text, Author: c.Author, Date: c.Date, ID: c.ID})
		case docmodel.InsertedRun:
			out = append(out, docmodel.TrackedChangeOut{Type: "insert", Text: c.Text, Author: c.Author, Date: c.Date, ID: c.ID})
		case docmodel.MoveFromRun:
			out = append(out, docmodel.TrackedChangeOut{Type: "delete", Text: c.Text, Author: c.Author, Date: c.Date, ID: c.ID})
		case docmodel.MoveToRun:
			out = append(out, docmodel.TrackedChangeOut{Type: "insert", Text: c.Text, Author: c.Author, Date: c.Date, ID: c.ID})
		}
	}
	return out
}
