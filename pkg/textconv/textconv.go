// Package textconv renders an extractor.Document as a deterministic,
// line-oriented plain-text form suitable for use as a git diff driver.
package textconv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/extractor"
)

// Render produces the full textconv output for doc.
func Render(doc *extractor.Document) string {
	var sb strings.Builder
	writeMetadata(&sb, doc.Metadata)
	sb.WriteString("\n")
	writeBody(&sb, doc)
	sb.WriteString("\n")
	writeTables(&sb, doc.Tables)
	sb.WriteString("\n")
	writeComments(&sb, doc.Comments)
	sb.WriteString("\n")
	writeImages(&sb, doc.Images)
	if len(doc.Footnotes) > 0 || len(doc.Endnotes) > 0 {
		sb.WriteString("\n")
		writeFootnotes(&sb, doc.Footnotes, doc.Endnotes)
	}
	return sb.String()
}

func writeMetadata(sb *strings.Builder, m docmodel.PackageMetadata) {
	sb.WriteString("=== METADATA ===\n")
	writeLine(sb, "Title", m.Title)
	writeLine(sb, "Author", m.Author)
	writeLine(sb, "LastModifiedBy", m.LastModifiedBy)
	if !m.Modified.IsZero() {
		writeLine(sb, "Modified", m.Modified.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if m.Revision != 0 {
		writeLine(sb, "Revision", strconv.Itoa(m.Revision))
	}
	writeLine(sb, "Words", strconv.Itoa(m.WordCount))
	writeLine(sb, "Paragraphs", strconv.Itoa(m.ParagraphCount))
}

func writeLine(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

func writeBody(sb *strings.Builder, doc *extractor.Document) {
	sb.WriteString("=== BODY ===\n")
	commentsByPara := map[int][]docmodel.Comment{}
	for _, c := range doc.Comments {
		commentsByPara[c.ParagraphIndex] = append(commentsByPara[c.ParagraphIndex], c)
	}
	for i, p := range doc.Paragraphs {
		sb.WriteString(fmt.Sprintf("\u00b6%d", i))
		if p.Style != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", p.Style))
		}
		sb.WriteString(" ")
		sb.WriteString(richText(p))
		for _, c := range commentsByPara[i] {
			sb.WriteString(fmt.Sprintf(" /* [%s] %s */", c.Author, c.Text))
		}
		sb.WriteString("\n")
	}
}

// richText concatenates a paragraph's children with inline markers:
// deletions as [-text-], insertions as [+text+], and bold/italic/
// underline/strikethrough as [B]/[I]/[U]/[S] wrapped pairs.
func richText(p docmodel.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case docmodel.Run:
			sb.WriteString(withFormatMarkers(c.Text, c.Props))
		case docmodel.DeletedRun:
			sb.WriteString("[-")
			sb.WriteString(c.Text)
			sb.WriteString("-]")
		case docmodel.MoveFromRun:
			sb.WriteString("[-")
			sb.WriteString(c.Text)
			sb.WriteString("-]")
		case docmodel.InsertedRun:
			sb.WriteString("[+")
			sb.WriteString(c.Text)
			sb.WriteString("+]")
		case docmodel.MoveToRun:
			sb.WriteString("[+")
			sb.WriteString(c.Text)
			sb.WriteString("+]")
		case docmodel.Hyperlink:
			for _, r := range c.Runs {
				sb.WriteString(withFormatMarkers(r.Text, r.Props))
			}
		}
	}
	return sb.String()
}

func withFormatMarkers(text string, p docmodel.RunProperties) string {
	if text == "" {
		return text
	}
	s := text
	if p.Strikethrough != nil && *p.Strikethrough {
		s = "[S]" + s + "[/S]"
	}
	if p.Underline != nil && *p.Underline {
		s = "[U]" + s + "[/U]"
	}
	if p.Italic != nil && *p.Italic {
		s = "[I]" + s + "[/I]"
	}
	if p.Bold != nil && *p.Bold {
		s = "[B]" + s + "[/B]"
	}
	return s
}

func writeTables(sb *strings.Builder, tables []docmodel.Table) {
	sb.WriteString("=== TABLES ===\n")
	for n, t := range tables {
		rows := len(t.Rows)
		cols := 0
		if rows > 0 {
			cols = len(t.Rows[0])
		}
		sb.WriteString(fmt.Sprintf("Table %d (%d\u00d7%d) at \u00b6%d:\n", n+1, rows, cols, t.Index))
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				var texts []string
				for _, p := range cell.Paragraphs {
					texts = append(texts, extractor.VisibleText(p))
				}
				cells[i] = strings.Join(texts, " ")
			}
			sb.WriteString(strings.Join(cells, " | "))
			sb.WriteString("\n")
		}
	}
}

func writeComments(sb *strings.Builder, comments []docmodel.Comment) {
	sb.WriteString("=== COMMENTS ===\n")
	for _, c := range comments {
		anchor := c.AnchorText
		if len(anchor) > 60 {
			anchor = anchor[:60]
		}
		sb.WriteString(fmt.Sprintf("#%s [%s] on %q (\u00b6%d): %s\n", c.ID, c.Author, anchor, c.ParagraphIndex, c.Text))
	}
}

func writeImages(sb *strings.Builder, images []docmodel.Image) {
	sb.WriteString("=== IMAGES ===\n")
	for _, img := range images {
		hash := img.SHA256
		if len(hash) > 12 {
			hash = hash[:12]
		}
		sb.WriteString(fmt.Sprintf("[IMG] %s (%s, %d bytes, sha256:%s...)\n", img.FileName, img.MediaType, img.Bytes, hash))
	}
}

func writeFootnotes(sb *strings.Builder, footnotes, endnotes []docmodel.Note) {
	sb.WriteString("=== FOOTNOTES ===\n")
	for _, n := range footnotes {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", n.ID, n.ID, n.Text))
	}
	for _, n := range endnotes {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", n.ID, n.ID, n.Text))
	}
}
