// Package match implements ordinal substring search over a RunIndex's
// visible-text stream.
package match

import (
	"strings"

	"github.com/vortex/docxreview/pkg/runindex"
)

// Range is a half-open [Start, End) span of positions in a RunIndex's
// visible stream.
type Range struct {
	Start int
	End   int
}

// Len returns the number of characters spanned.
func (r Range) Len() int { return r.End - r.Start }

// Find returns the first occurrence of needle in ix's visible text, using
// plain ordinal (byte-for-byte) comparison: no Unicode normalization, no
// case folding, no whitespace collapsing. ok is false if needle does not
// occur.
func Find(ix *runindex.Index, needle string) (Range, bool) {
	if needle == "" {
		return Range{}, false
	}
	idx := strings.Index(ix.Text, needle)
	if idx < 0 {
		return Range{}, false
	}
	return Range{Start: idx, End: idx + len(needle)}, true
}
