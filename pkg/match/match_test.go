package match

import (
	"testing"

	"github.com/vortex/docxreview/pkg/runindex"
)

func TestFindOrdinal(t *testing.T) {
	ix := &runindex.Index{Text: "The quick brown fox"}

	rng, ok := Find(ix, "quick")
	if !ok {
		t.Fatalf("Find(%q) not found", "quick")
	}
	if rng.Start != 4 || rng.End != 9 {
		t.Fatalf("Find(%q) = %+v, want {4 9}", "quick", rng)
	}
	if rng.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", rng.Len())
	}
}

func TestFindNoMatch(t *testing.T) {
	ix := &runindex.Index{Text: "The quick brown fox"}
	if _, ok := Find(ix, "slow"); ok {
		t.Fatalf("Find(%q) ok = true, want false", "slow")
	}
}

func TestFindEmptyNeedle(t *testing.T) {
	ix := &runindex.Index{Text: "anything"}
	if _, ok := Find(ix, ""); ok {
		t.Fatalf("Find(\"\") ok = true, want false")
	}
}

func TestFindIsCaseSensitive(t *testing.T) {
	ix := &runindex.Index{Text: "Quick brown fox"}
	if _, ok := Find(ix, "quick"); ok {
		t.Fatalf("Find(%q) matched case-insensitively", "quick")
	}
}
