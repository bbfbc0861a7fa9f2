package cleaning

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/corpusforge/corpusforge/models"
)

// Signature is a fixed-size minwise sketch of a document's distinct
// token set. It is derived data, never persisted with the dataset.
type Signature []uint64

// MinHasher computes signatures with one murmur3 seed per permutation.
type MinHasher struct {
	seeds []uint32
}

// NewMinHasher creates a hasher with numPerm independent permutations.
func NewMinHasher(numPerm int) *MinHasher {
	seeds := make([]uint32, numPerm)
	for i := range seeds {
		seeds[i] = uint32(i + 1)
	}
	return &MinHasher{seeds: seeds}
}

// Sum sketches the distinct whitespace-delimited tokens of text. Token
// order is irrelevant: the sketch is over a set, not a sequence.
func (m *MinHasher) Sum(text string) Signature {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		tokens[tok] = struct{}{}
	}

	sig := make(Signature, len(m.seeds))
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	for tok := range tokens {
		data := []byte(tok)
		for i, seed := range m.seeds {
			if h := murmur3.Sum64WithSeed(data, seed); h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// EstimateJaccard estimates the Jaccard similarity of the underlying
// token sets as the fraction of matching signature positions.
func EstimateJaccard(a, b Signature) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(a))
}

// LSHIndex is a banded locality-sensitive index over signatures. Query
// returns candidates whose estimated similarity exceeds the threshold
// without pairwise comparison against every stored signature.
type LSHIndex struct {
	bands     int
	rows      int
	threshold float64
	tables    []map[string][]int
	sigs      []Signature
}

// NewLSHIndex picks the band/row split of numPerm whose collision
// curve (1/bands)^(1/rows) lands closest to the threshold.
func NewLSHIndex(numPerm int, threshold float64) *LSHIndex {
	bestBands, bestRows := 1, numPerm
	bestDist := math.Inf(1)
	for bands := 1; bands <= numPerm; bands++ {
		if numPerm%bands != 0 {
			continue
		}
		rows := numPerm / bands
		curve := math.Pow(1/float64(bands), 1/float64(rows))
		if d := math.Abs(curve - threshold); d < bestDist {
			bestDist = d
			bestBands, bestRows = bands, rows
		}
	}

	tables := make([]map[string][]int, bestBands)
	for i := range tables {
		tables[i] = make(map[string][]int)
	}
	return &LSHIndex{
		bands:     bestBands,
		rows:      bestRows,
		threshold: threshold,
		tables:    tables,
	}
}

func (ix *LSHIndex) bandKey(sig Signature, band int) string {
	buf := make([]byte, 8*ix.rows)
	for r := 0; r < ix.rows; r++ {
		binary.LittleEndian.PutUint64(buf[8*r:], sig[band*ix.rows+r])
	}
	return string(buf)
}

// Query reports whether any previously inserted signature estimates at
// or above the index threshold.
func (ix *LSHIndex) Query(sig Signature) bool {
	seen := make(map[int]struct{})
	for band := 0; band < ix.bands; band++ {
		for _, id := range ix.tables[band][ix.bandKey(sig, band)] {
			if _, done := seen[id]; done {
				continue
			}
			seen[id] = struct{}{}
			if EstimateJaccard(sig, ix.sigs[id]) >= ix.threshold {
				return true
			}
		}
	}
	return false
}

// Insert stores a signature in every band table.
func (ix *LSHIndex) Insert(sig Signature) {
	id := len(ix.sigs)
	ix.sigs = append(ix.sigs, sig)
	for band := 0; band < ix.bands; band++ {
		key := ix.bandKey(sig, band)
		ix.tables[band][key] = append(ix.tables[band][key], id)
	}
}

// Deduplicate walks documents in order and keeps only the first-seen
// representative of each similarity cluster. First occurrence always
// wins, so the result depends on input order and is stable across
// re-runs with the same order.
func Deduplicate(docs []models.Document, numPerm int, threshold float64) []models.Document {
	hasher := NewMinHasher(numPerm)
	index := NewLSHIndex(numPerm, threshold)

	kept := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		sig := hasher.Sum(doc.Text)
		if index.Query(sig) {
			continue
		}
		index.Insert(sig)
		kept = append(kept, doc)
	}
	return kept
}
