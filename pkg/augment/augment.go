// Package augment implements best-effort lexical augmentation: random
// synonym substitution and sentence-order perturbation. Failures and
// missing capabilities degrade to a no-op; the stage never aborts a
// run.
package augment

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/corpusforge/corpusforge/models"
)

// Lexicon provides candidate synonyms for a word. A nil Lexicon makes
// the whole stage an identity transform.
type Lexicon interface {
	Synonyms(word string) []string
}

// Augmenter applies per-word synonym replacement and per-document
// sentence shuffling. Rand must be seeded by the caller; reproducible
// runs come from a fixed seed, not from avoiding randomness.
type Augmenter struct {
	Lexicon     Lexicon
	Rand        *rand.Rand
	ReplaceProb float64
	ShuffleProb float64
}

// New creates an Augmenter with a deterministic random source.
func New(lexicon Lexicon, seed int64, replaceProb, shuffleProb float64) *Augmenter {
	return &Augmenter{
		Lexicon:     lexicon,
		Rand:        rand.New(rand.NewSource(seed)),
		ReplaceProb: replaceProb,
		ShuffleProb: shuffleProb,
	}
}

// Run augments each document independently. Input documents are never
// mutated; the output has the same length and order as the input.
func (a *Augmenter) Run(docs []models.Document) []models.Document {
	if a.Lexicon == nil {
		return docs
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		d = a.replaceSynonyms(d)
		d = a.shuffleSentences(d)
		out = append(out, d)
	}
	return out
}

// replaceSynonyms swaps each word, with ReplaceProb, for a synonym.
// Candidates are sorted and the original word excluded, so the same
// seed always picks the same replacement.
func (a *Augmenter) replaceSynonyms(doc models.Document) models.Document {
	words := strings.Split(doc.Text, " ")
	changed := false
	for i, w := range words {
		if a.Rand.Float64() >= a.ReplaceProb {
			continue
		}
		candidates := a.candidates(w)
		if len(candidates) == 0 {
			continue
		}
		words[i] = candidates[a.Rand.Intn(len(candidates))]
		changed = true
	}
	if !changed {
		return doc
	}
	return models.Document{
		Text:     strings.Join(words, " "),
		Language: doc.Language,
		Metadata: doc.Metadata,
	}
}

func (a *Augmenter) candidates(word string) []string {
	seen := make(map[string]struct{})
	for _, s := range a.Lexicon.Synonyms(word) {
		s = strings.ReplaceAll(s, "_", " ")
		if s == word {
			continue
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// shuffleSentences reorders sentences with ShuffleProb when the
// document has more than two. Sentences split on the literal ". "
// separator.
func (a *Augmenter) shuffleSentences(doc models.Document) models.Document {
	sentences := strings.Split(doc.Text, ". ")
	if a.Rand.Float64() >= a.ShuffleProb || len(sentences) <= 2 {
		return doc
	}
	a.Rand.Shuffle(len(sentences), func(i, j int) {
		sentences[i], sentences[j] = sentences[j], sentences[i]
	})
	return models.Document{
		Text:     strings.Join(sentences, ". "),
		Language: doc.Language,
		Metadata: doc.Metadata,
	}
}
