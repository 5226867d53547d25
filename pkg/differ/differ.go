// Package differ compares two extractor.Documents: metadata fields,
// paragraphs (via a similarity-tolerant LCS alignment), comments, and
// tracked changes.
package differ

import (
	"strconv"
	"strings"

	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/extractor"
)

// Diff compares old and new extractor Documents and produces a
// docmodel.DiffResult.
func Diff(oldFile, newFile string, oldDoc, newDoc *extractor.Document) docmodel.DiffResult {
	md := diffMetadata(oldDoc.Metadata, newDoc.Metadata)
	pd := diffParagraphs(oldDoc.Paragraphs, newDoc.Paragraphs)
	cd := diffComments(oldDoc.Comments, newDoc.Comments)
	td := diffTrackedChanges(oldDoc.Paragraphs, newDoc.Paragraphs)

	summary := docmodel.DiffSummary{
		MetadataChanges:   len(md.Changes),
		ParagraphsAdded:   len(pd.Added),
		ParagraphsDeleted: len(pd.Deleted),
		ParagraphsChanged: len(pd.Modified),
		CommentsAdded:     len(cd.Added),
		CommentsDeleted:   len(cd.Deleted),
		CommentsChanged:   len(cd.Modified),
		TrackedAdded:      len(td.Added),
		TrackedDeleted:    len(td.Deleted),
	}
	summary.Identical = summary.MetadataChanges == 0 &&
		summary.ParagraphsAdded == 0 && summary.ParagraphsDeleted == 0 && summary.ParagraphsChanged == 0 &&
		summary.CommentsAdded == 0 && summary.CommentsDeleted == 0 && summary.CommentsChanged == 0 &&
		summary.TrackedAdded == 0 && summary.TrackedDeleted == 0

	return docmodel.DiffResult{
		OldFile:        oldFile,
		NewFile:        newFile,
		Metadata:       md,
		Paragraphs:     pd,
		Comments:       cd,
		TrackedChanges: td,
		Summary:        summary,
	}
}

func diffMetadata(o, n docmodel.PackageMetadata) docmodel.MetadataDiff {
	var changes []docmodel.MetadataFieldChange
	add := func(field, oldV, newV string) {
		if oldV != newV {
			changes = append(changes, docmodel.MetadataFieldChange{Field: field, Old: oldV, New: newV})
		}
	}
	add("title", o.Title, n.Title)
	add("author", o.Author, n.Author)
	add("last_modified_by", o.LastModifiedBy, n.LastModifiedBy)
	add("created", o.Created.Format(timeLayout), n.Created.Format(timeLayout))
	add("modified", o.Modified.Format(timeLayout), n.Modified.Format(timeLayout))
	add("revision", strconv.Itoa(o.Revision), strconv.Itoa(n.Revision))
	add("word_count", strconv.Itoa(o.WordCount), strconv.Itoa(n.WordCount))
	return docmodel.MetadataDiff{Changes: changes}
}

const timeLayout = "2006-01-02T15:04:05Z"

// similar reports whether two paragraphs' visible texts are close enough
// to be treated as the same paragraph across a revision: exact match,
// both whitespace-only, or word-set Jaccard similarity >= 0.5.
func similar(a, b string) bool {
	if a == b {
		return true
	}
	aBlank, bBlank := strings.TrimSpace(a) == "", strings.TrimSpace(b) == ""
	if aBlank && bBlank {
		return true
	}
	return jaccard(strings.Fields(a), strings.Fields(b)) >= 0.5
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := map[string]bool{}
	for _, w := range a {
		setA[w] = true
	}
	setB := map[string]bool{}
	for _, w := range b {
		setB[w] = true
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA)
	for w := range setB {
		if !setA[w] {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

type pair struct{ i, j int }

// diffParagraphs aligns old and new paragraph lists with a similarity
// LCS, then reports unmatched olds as deletions, unmatched news as
// additions, and matched pairs that differ as modifications.
func diffParagraphs(oldP, newP []docmodel.Paragraph) docmodel.ParagraphsDiff {
	oldText := make([]string, len(oldP))
	for i, p := range oldP {
		oldText[i] = extractor.VisibleText(p)
	}
	newText := make([]string, len(newP))
	for j, p := range newP {
		newText[j] = extractor.VisibleText(p)
	}

	n, m := len(oldP), len(newP)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if similar(oldText[i], newText[j]) {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	var matches []pair
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case similar(oldText[i], newText[j]):
			matches = append(matches, pair{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}

	var diff docmodel.ParagraphsDiff
	oi, ni, mi := 0, 0, 0
	for mi < len(matches) || oi < n || ni < m {
		if mi < len(matches) && oi == matches[mi].i && ni == matches[mi].j {
			p := modificationOf(matches[mi].i, matches[mi].j, oldText[oi], newText[ni], oldP[oi], newP[ni])
			if p != nil {
				diff.Modified = append(diff.Modified, *p)
			}
			oi++
			ni++
			mi++
			continue
		}
		if mi < len(matches) && oi < matches[mi].i {
			diff.Deleted = append(diff.Deleted, oldText[oi])
			oi++
			continue
		}
		if mi < len(matches) && ni < matches[mi].j {
			diff.Added = append(diff.Added, newText[ni])
			ni++
			continue
		}
		if oi < n {
			diff.Deleted = append(diff.Deleted, oldText[oi])
			oi++
			continue
		}
		if ni < m {
			diff.Added = append(diff.Added, newText[ni])
			ni++
			continue
		}
		break
	}
	return diff
}

func modificationOf(oi, ni int, oldText, newText string, oldP, newP docmodel.Paragraph) *docmodel.ParagraphModification {
	var styleChange *docmodel.StyleChange
	if oldP.Style != newP.Style {
		styleChange = &docmodel.StyleChange{Old: oldP.Style, New: newP.Style}
	}
	fmtChanges := diffFormatting(oldP, newP)
	wordChanges := diffWords(oldText, newText)

	if oldText == newText && styleChange == nil && len(fmtChanges) == 0 {
		return nil
	}
	return &docmodel.ParagraphModification{
		OldIndex:          oi,
		NewIndex:          ni,
		OldText:           oldText,
		NewText:           newText,
		StyleChange:       styleChange,
		FormattingChanges: fmtChanges,
		WordChanges:       wordChanges,
	}
}

// diffWords computes an LCS-based word diff, collapsing adjacent
// delete+add pairs into "replace" entries.
func diffWords(oldText, newText string) []docmodel.WordChange {
	oldTok := strings.Fields(oldText)
	newTok := strings.Fields(newText)
	n, m := len(oldTok), len(newTok)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldTok[i] == newTok[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	var raw []docmodel.WordChange
	i, j, oldPos, newPos := 0, 0, 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && oldTok[i] == newTok[j]:
			i++
			j++
			oldPos++
			newPos++
		case i < n && (j >= m || dp[i+1][j] >= dp[i][j+1]):
			raw = append(raw, docmodel.WordChange{Type: "delete", Old: oldTok[i], Position: oldPos})
			i++
			oldPos++
		default:
			raw = append(raw, docmodel.WordChange{Type: "add", New: newTok[j], Position: newPos})
			j++
			newPos++
		}
	}

	var out []docmodel.WordChange
	for k := 0; k < len(raw); k++ {
		if raw[k].Type == "delete" && k+1 < len(raw) && raw[k+1].Type == "add" && raw[k+1].Position == raw[k].Position {
			out = append(out, docmodel.WordChange{Type: "replace", Old: raw[k].Old, New: raw[k+1].New, Position: raw[k].Position})
			k++
			continue
		}
		out = append(out, raw[k])
	}
	return out
}

// diffFormatting compares the first run's properties for each word (first
// whitespace token of each Run's text) present in both paragraphs.
func diffFormatting(oldP, newP docmodel.Paragraph) []docmodel.FormattingChange {
	oldWords := firstRunPerWord(oldP)
	newWords := firstRunPerWord(newP)
	var out []docmodel.FormattingChange
	for word, op := range oldWords {
		np, ok := newWords[word]
		if !ok {
			continue
		}
		addIfDiffer := func(attr string, ov, nv string) {
			if ov != nv {
				out = append(out, docmodel.FormattingChange{Word: word, Attribute: attr, Old: ov, New: nv})
			}
		}
		addIfDiffer("bold", boolStr(op.Bold), boolStr(np.Bold))
		addIfDiffer("italic", boolStr(op.Italic), boolStr(np.Italic))
		addIfDiffer("underline", boolStr(op.Underline), boolStr(np.Underline))
		addIfDiffer("font", op.FontName(), np.FontName())
		addIfDiffer("size", op.Size, np.Size)
		addIfDiffer("color", op.Color, np.Color)
	}
	return out
}

func boolStr(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "true"
	}
	return "false"
}

// firstRunPerWord maps each word (first whitespace token) in a paragraph
// to the RunProperties of the first Run that produced it.
func firstRunPerWord(p docmodel.Paragraph) map[string]docmodel.RunProperties {
	out := map[string]docmodel.RunProperties{}
	for _, child := range p.Children {
		run, ok := child.(docmodel.Run)
		if !ok {
			continue
		}
		fields := strings.Fields(run.Text)
		if len(fields) == 0 {
			continue
		}
		word := fields[0]
		if _, seen := out[word]; !seen {
			out[word] = run.Props
		}
	}
	return out
}

func diffComments(oldC, newC []docmodel.Comment) docmodel.CommentsDiff {
	key := func(c docmodel.Comment) string { return c.Author + "\x00" + c.AnchorText }
	oldByKey := map[string]docmodel.Comment{}
	for _, c := range oldC {
		oldByKey[key(c)] = c
	}
	newByKey := map[string]docmodel.Comment{}
	for _, c := range newC {
		newByKey[key(c)] = c
	}

	var diff docmodel.CommentsDiff
	for k, oc := range oldByKey {
		nc, ok := newByKey[k]
		if !ok {
			diff.Deleted = append(diff.Deleted, toCommentOut(oc))
			continue
		}
		if oc.Text != nc.Text {
			diff.Modified = append(diff.Modified, docmodel.CommentDiffEntry{
				Author: oc.Author, AnchorText: oc.AnchorText, OldText: oc.Text, NewText: nc.Text,
			})
		}
	}
	for k, nc := range newByKey {
		if _, ok := oldByKey[k]; !ok {
			diff.Added = append(diff.Added, toCommentOut(nc))
		}
	}
	return diff
}

func toCommentOut(c docmodel.Comment) docmodel.CommentOut {
	return docmodel.CommentOut{
		ID: c.ID, Author: c.Author, Date: c.Date, AnchorText: c.AnchorText,
		Text: c.Text, ParagraphIndex: c.ParagraphIndex,
	}
}

func diffTrackedChanges(oldP, newP []docmodel.Paragraph) docmodel.TrackedChangesDiff {
	key := func(t docmodel.TrackedChangeOut) string { return t.Type + "\x00" + t.Text + "\x00" + t.Author }
	oldSet := map[string]docmodel.TrackedChangeDiffEntry{}
	for _, p := range oldP {
		for _, t := range extractor.TrackedChanges(p) {
			oldSet[key(t)] = docmodel.TrackedChangeDiffEntry{Type: t.Type, Text: t.Text, Author: t.Author}
		}
	}
	newSet := map[string]docmodel.TrackedChangeDiffEntry{}
	for _, p := range newP {
		for _, t := range extractor.TrackedChanges(p) {
			newSet[key(t)] = docmodel.TrackedChangeDiffEntry{Type: t.Type, Text: t.Text, Author: t.Author}
		}
	}

	var diff docmodel.TrackedChangesDiff
	for k, e := range oldSet {
		if _, ok := newSet[k]; !ok {
			diff.Deleted = append(diff.Deleted, e)
		}
	}
	for k, e := range newSet {
		if _, ok := oldSet[k]; !ok {
			diff.Added = append(diff.Added, e)
		}
	}
	return diff
}
