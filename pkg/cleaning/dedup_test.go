package cleaning

import (
	"strings"
	"testing"

	"github.com/corpusforge/corpusforge/models"
)

func docsOf(texts ...string) []models.Document {
	docs := make([]models.Document, len(texts))
	for i, t := range texts {
		docs[i] = models.Document{Text: t}
	}
	return docs
}

func textsOf(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

func TestMinHashSignatureDeterministic(t *testing.T) {
	h := NewMinHasher(128)
	a := h.Sum("the quick brown fox")
	b := h.Sum("the quick brown fox")
	if EstimateJaccard(a, b) != 1.0 {
		t.Error("identical texts must produce identical signatures")
	}
	// Token order must not matter: the sketch is over a set.
	c := h.Sum("fox brown quick the")
	if EstimateJaccard(a, c) != 1.0 {
		t.Error("token order changed the signature")
	}
}

func TestDeduplicateFirstOccurrenceWins(t *testing.T) {
	a := "the quick brown fox jumps over the lazy dog"
	aDup := "the quick brown fox jumps over the lazy dog"
	b := "an entirely different sentence about cooking pasta at home"

	kept := Deduplicate(docsOf(a, aDup, b), 128, 0.9)
	got := textsOf(kept)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Deduplicate kept %v, want [first A, B]", got)
	}

	// Reordering flips which representative survives.
	kept = Deduplicate(docsOf(aDup, a, b), 128, 0.9)
	got = textsOf(kept)
	if len(got) != 2 || got[0] != aDup {
		t.Errorf("Deduplicate after reorder kept %v, want the new first occurrence", got)
	}
}

func TestDeduplicateNearDuplicate(t *testing.T) {
	base := "alpha beta gamma delta epsilon zeta eta theta iota kappa " +
		"lambda mu nu xi omicron pi rho sigma tau upsilon"
	near := base + " extra" // strict superset token set, Jaccard ~0.95

	kept := Deduplicate(docsOf(base, near), 128, 0.5)
	if len(kept) != 1 {
		t.Fatalf("near-duplicate not dropped, kept %d documents", len(kept))
	}
	if kept[0].Text != base {
		t.Errorf("kept %q, want the first occurrence", kept[0].Text)
	}
}

func TestDeduplicateKeepsDistinct(t *testing.T) {
	docs := docsOf(
		"completely unrelated text about astronomy and telescopes",
		"a recipe for sourdough bread with rye flour",
		"notes on garbage collection in modern runtimes",
	)
	kept := Deduplicate(docs, 128, 0.9)
	if len(kept) != len(docs) {
		t.Errorf("distinct documents dropped: kept %d of %d", len(kept), len(docs))
	}
}

func TestLSHIndexQueryInsert(t *testing.T) {
	h := NewMinHasher(128)
	ix := NewLSHIndex(128, 0.9)

	sig := h.Sum(strings.Repeat("token ", 10) + "one two three")
	if ix.Query(sig) {
		t.Error("empty index returned a match")
	}
	ix.Insert(sig)
	if !ix.Query(sig) {
		t.Error("inserted signature not found")
	}
}
