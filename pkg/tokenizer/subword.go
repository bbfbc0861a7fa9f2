package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultModelName is the filename used when persisting a trained
// model into a directory.
const DefaultModelName = "subword.model.json"

// The whitespace separator piece, following the SentencePiece
// convention of marking word starts instead of emitting raw spaces.
const whitespaceSep = "▁"

const unknownPiece = "<unk>"

// CharacterCoverage is the fraction of corpus characters the trained
// vocabulary must cover; rarer characters encode as <unk>.
const CharacterCoverage = 0.9995

// SubwordModel is a unigram-style vocabulary with greedy longest-match
// encoding. Values[0] is always the unknown piece.
type SubwordModel struct {
	Values []string `json:"values"`

	maxPieceLen int
	idsOnce     sync.Once
	ids         map[string]int
}

func (m *SubwordModel) Len() int { return len(m.Values) }

func (m *SubwordModel) pieceID(piece string) (int, bool) {
	m.idsOnce.Do(func() {
		m.ids = make(map[string]int, len(m.Values))
		for i, v := range m.Values {
			m.ids[v] = i
			if len(v) > m.maxPieceLen {
				m.maxPieceLen = len(v)
			}
		}
	})
	id, ok := m.ids[piece]
	return id, ok
}

// Encode maps text to token ids by greedy longest-match over the
// vocabulary. Newlines normalize to spaces, mirroring training, and
// characters outside the vocabulary map to the unknown id.
func (m *SubwordModel) Encode(text string) []int {
	text = strings.ReplaceAll(text, "\n", " ")
	transformed := whitespaceSep + strings.ReplaceAll(text, " ", whitespaceSep)
	m.pieceID(unknownPiece) // force index build

	var ids []int
	for i := 0; i < len(transformed); {
		end := i + m.maxPieceLen
		if end > len(transformed) {
			end = len(transformed)
		}
		matched := false
		for j := end; j > i; j-- {
			if j < len(transformed) && !utf8.RuneStart(transformed[j]) {
				continue // not a rune boundary
			}
			if id, ok := m.pieceID(transformed[i:j]); ok {
				ids = append(ids, id)
				i = j
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(transformed[i:])
			ids = append(ids, 0)
			i += size
		}
	}
	return ids
}

// Decode concatenates the pieces for ids and restores whitespace.
// Unknown ids decode to nothing; the result is a preview, not a
// lossless inverse.
func (m *SubwordModel) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		if id <= 0 || id >= len(m.Values) {
			continue
		}
		sb.WriteString(m.Values[id])
	}
	out := strings.ReplaceAll(sb.String(), whitespaceSep, " ")
	return strings.TrimPrefix(out, " ")
}

// Save writes the vocabulary as JSON.
func (m *SubwordModel) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadSubwordModel reads a vocabulary previously written by Save.
func LoadSubwordModel(path string) (*SubwordModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m SubwordModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	if len(m.Values) == 0 || m.Values[0] != unknownPiece {
		return nil, fmt.Errorf("model %s has no unknown piece at id 0", path)
	}
	return &m, nil
}

// SubwordTrainer builds a SubwordModel from corpus texts: the covered
// character set first, then whole-word pieces by descending frequency
// until the vocabulary is full.
type SubwordTrainer struct{}

type pieceCount struct {
	piece string
	count int
}

func sortedByCount(counts map[string]int) []pieceCount {
	out := make([]pieceCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, pieceCount{p, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].piece < out[j].piece
	})
	return out
}

// Train builds a vocabulary of exactly vocabSize pieces, or returns
// *VocabTooLargeError when the corpus has fewer candidate pieces than
// requested.
func (SubwordTrainer) Train(texts []string, vocabSize int) (Model, error) {
	if vocabSize < 1 {
		return nil, fmt.Errorf("vocabulary size must be positive, got %d", vocabSize)
	}

	runeCounts := make(map[string]int)
	wordCounts := make(map[string]int)
	totalRunes := 0
	for _, t := range texts {
		t = strings.ReplaceAll(t, "\n", " ")
		for _, r := range t {
			if r == ' ' {
				continue
			}
			runeCounts[string(r)]++
			totalRunes++
		}
		for _, w := range strings.Fields(t) {
			wordCounts[whitespaceSep+w]++
		}
	}

	// Cover CharacterCoverage of the corpus characters, most frequent
	// runes first.
	runes := sortedByCount(runeCounts)
	covered := make([]string, 0, len(runes))
	cum := 0
	for _, rc := range runes {
		if totalRunes > 0 && float64(cum)/float64(totalRunes) >= CharacterCoverage {
			break
		}
		covered = append(covered, rc.piece)
		cum += rc.count
	}

	maxSupported := 2 + len(covered) + len(wordCounts) // <unk>, ▁, runes, words
	if vocabSize > maxSupported {
		return nil, &VocabTooLargeError{Requested: vocabSize, Max: maxSupported}
	}

	values := make([]string, 0, vocabSize)
	values = append(values, unknownPiece, whitespaceSep)
	for _, r := range covered {
		if len(values) == vocabSize {
			break
		}
		values = append(values, r)
	}
	for _, wc := range sortedByCount(wordCounts) {
		if len(values) == vocabSize {
			break
		}
		values = append(values, wc.piece)
	}

	return &SubwordModel{Values: values}, nil
}
