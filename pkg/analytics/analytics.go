// Package analytics computes stopword-filtered keyword frequencies
// over a document batch, feeding the cleaning-stage metrics event and
// the metadata summary.
package analytics

import (
	"sort"
	"strings"

	"github.com/corpusforge/corpusforge/models"
)

// stopwords are high-frequency words excluded from keyword counts.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "but": {}, "by": {},
	"can": {}, "could": {}, "did": {}, "do": {}, "does": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "he": {}, "her": {},
	"his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "just": {}, "may": {}, "more": {},
	"most": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"one": {}, "only": {}, "or": {}, "other": {}, "our": {}, "out": {},
	"over": {}, "she": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "under": {}, "up": {}, "us": {}, "very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "why": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {},
}

// IsStopword reports whether a word is excluded from keyword counts.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// WordFrequency counts non-stopword tokens of one text, lowercased and
// stripped of surrounding punctuation.
func WordFrequency(text string) map[string]int {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if word == "" || IsStopword(word) {
			continue
		}
		counts[word]++
	}
	return counts
}

// CorpusFrequency aggregates per-document frequencies over a batch.
func CorpusFrequency(docs []models.Document) map[string]int {
	total := make(map[string]int)
	for _, d := range docs {
		for word, count := range WordFrequency(d.Text) {
			total[word] += count
		}
	}
	return total
}

// Keyword is a word with its corpus count.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TopKeywords returns the n most frequent keywords, ties broken
// lexicographically for stable output.
func TopKeywords(counts map[string]int, n int) []Keyword {
	all := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		all = append(all, Keyword{Word: w, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Word < all[j].Word
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
