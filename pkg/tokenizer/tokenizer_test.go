package tokenizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/corpusforge/corpusforge/models"
)

// wordModel maps each distinct word to a unique id. Test double for
// the external subword capability.
type wordModel struct {
	ids   map[string]int
	words []string
}

func newWordModel(texts []string) *wordModel {
	m := &wordModel{ids: make(map[string]int)}
	for _, t := range texts {
		for _, w := range strings.Fields(t) {
			if _, ok := m.ids[w]; !ok {
				m.ids[w] = len(m.words)
				m.words = append(m.words, w)
			}
		}
	}
	return m
}

func (m *wordModel) Encode(text string) []int {
	var ids []int
	for _, w := range strings.Fields(text) {
		if id, ok := m.ids[w]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *wordModel) Decode(ids []int) string {
	var words []string
	for _, id := range ids {
		if id >= 0 && id < len(m.words) {
			words = append(words, m.words[id])
		}
	}
	return strings.Join(words, " ")
}

func (m *wordModel) Len() int { return len(m.words) }

// rejectingTrainer rejects until the requested size reaches acceptAt,
// recording every attempt.
type rejectingTrainer struct {
	acceptAt int
	max      int // reported maximum, 0 for none
	attempts []int
}

func (tr *rejectingTrainer) Train(texts []string, vocabSize int) (Model, error) {
	tr.attempts = append(tr.attempts, vocabSize)
	if vocabSize > tr.acceptAt {
		return nil, &VocabTooLargeError{Requested: vocabSize, Max: tr.max}
	}
	return newWordModel(texts), nil
}

func TestBackoffUsesReportedMax(t *testing.T) {
	tr := &rejectingTrainer{acceptAt: 5000, max: 5000}
	model, err := TrainWithBackoff(tr, []string{"a b c"}, 32000, nil)
	if err != nil {
		t.Fatalf("TrainWithBackoff() error = %v", err)
	}
	if model == nil {
		t.Fatal("TrainWithBackoff() returned nil model")
	}
	// One rejection at 32000, then straight to the reported max.
	if want := []int{32000, 5000}; !reflect.DeepEqual(tr.attempts, want) {
		t.Errorf("attempts = %v, want %v", tr.attempts, want)
	}
}

func TestBackoffReportedMaxNearCurrent(t *testing.T) {
	// Reported max above current-1000: the decrement wins.
	tr := &rejectingTrainer{acceptAt: 31500, max: 31500}
	if _, err := TrainWithBackoff(tr, []string{"a b"}, 32000, nil); err != nil {
		t.Fatalf("TrainWithBackoff() error = %v", err)
	}
	if want := []int{32000, 31000}; !reflect.DeepEqual(tr.attempts, want) {
		t.Errorf("attempts = %v, want %v", tr.attempts, want)
	}
}

func TestBackoffWithoutReportedMax(t *testing.T) {
	tr := &rejectingTrainer{acceptAt: 2100}
	if _, err := TrainWithBackoff(tr, []string{"a b"}, 4000, nil); err != nil {
		t.Fatalf("TrainWithBackoff() error = %v", err)
	}
	// 4000 -> 3200 -> 2560 -> 2048
	if want := []int{4000, 3200, 2560, 2048}; !reflect.DeepEqual(tr.attempts, want) {
		t.Errorf("attempts = %v, want %v", tr.attempts, want)
	}
}

func TestBackoffFailsBelowMinimum(t *testing.T) {
	tr := &rejectingTrainer{acceptAt: 0}
	_, err := TrainWithBackoff(tr, []string{"a"}, 1100, nil)
	if err == nil {
		t.Fatal("expected fatal error when no viable size >= 1000 exists")
	}
	var tooLarge *VocabTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Errorf("error should wrap the trainer rejection, got %v", err)
	}
}

func TestBackoffStallsOnUnhelpfulMax(t *testing.T) {
	// The reported max clamps to the 1000 floor; a second rejection at
	// 1000 must terminate instead of looping.
	tr := &rejectingTrainer{acceptAt: 0, max: 200}
	_, err := TrainWithBackoff(tr, []string{"a"}, 5000, nil)
	if err == nil {
		t.Fatal("expected failure when the corpus supports fewer than 1000 pieces")
	}
	if want := []int{5000, 1000}; !reflect.DeepEqual(tr.attempts, want) {
		t.Errorf("attempts = %v, want %v", tr.attempts, want)
	}
}

func TestBackoffNonRetryableError(t *testing.T) {
	boom := fmt.Errorf("disk full")
	trainer := trainerFunc(func([]string, int) (Model, error) { return nil, boom })
	_, err := TrainWithBackoff(trainer, nil, 32000, nil)
	if !errors.Is(err, boom) {
		t.Errorf("non-rejection error not propagated: %v", err)
	}
}

type trainerFunc func([]string, int) (Model, error)

func (f trainerFunc) Train(texts []string, vocabSize int) (Model, error) {
	return f(texts, vocabSize)
}

func TestChunkReconstruction(t *testing.T) {
	docs := []models.Document{
		{Text: "one two three four five six seven"},
		{Text: "eight nine"},
		{Text: ""},
	}
	model := newWordModel([]string{docs[0].Text, docs[1].Text})

	chunkSize := 3
	chunks := Chunk(docs, model, chunkSize)

	// 7 tokens -> 3+3+1, 2 tokens -> 2, empty doc -> nothing.
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if i < 2 && len(c.Tokens) != chunkSize {
			t.Errorf("non-final chunk %d has %d tokens, want %d", i, len(c.Tokens), chunkSize)
		}
	}

	// Concatenating a document's chunks reproduces its full encoding.
	var got []int
	for _, c := range chunks[:3] {
		got = append(got, c.Tokens...)
	}
	if want := model.Encode(docs[0].Text); !reflect.DeepEqual(got, want) {
		t.Errorf("chunk concatenation = %v, want %v", got, want)
	}

	if chunks[0].Text != "one two three" {
		t.Errorf("chunk text = %q, want decoded window", chunks[0].Text)
	}
}

func TestLoadOrTrainSavesAndLoads(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"the quick brown fox", "jumps over the lazy dog"}

	model, err := LoadOrTrain("", dir, texts, 20, SubwordTrainer{}, nil)
	if err != nil {
		t.Fatalf("LoadOrTrain() training error = %v", err)
	}

	path := filepath.Join(dir, DefaultModelName)
	loaded, err := LoadOrTrain(path, "", nil, 0, SubwordTrainer{}, nil)
	if err != nil {
		t.Fatalf("LoadOrTrain() loading error = %v", err)
	}

	in := "the quick dog"
	if got, want := loaded.Encode(in), model.Encode(in); !reflect.DeepEqual(got, want) {
		t.Errorf("loaded model encodes %v, trained model %v", got, want)
	}
}

func TestLoadOrTrainReusesSavedModelInDirectory(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"the quick brown fox", "jumps over the lazy dog"}

	trains := 0
	trainer := trainerFunc(func(ts []string, vocabSize int) (Model, error) {
		trains++
		return SubwordTrainer{}.Train(ts, vocabSize)
	})

	model, err := LoadOrTrain("", dir, texts, 20, trainer, nil)
	if err != nil {
		t.Fatalf("LoadOrTrain() first run error = %v", err)
	}

	// Second run over the same train directory loads the saved model.
	reused, err := LoadOrTrain("", dir, texts, 20, trainer, nil)
	if err != nil {
		t.Fatalf("LoadOrTrain() second run error = %v", err)
	}
	if trains != 1 {
		t.Errorf("trainer ran %d times, want 1", trains)
	}
	in := "the lazy fox"
	if got, want := reused.Encode(in), model.Encode(in); !reflect.DeepEqual(got, want) {
		t.Errorf("reused model encodes %v, trained model %v", got, want)
	}

	// Same reuse when the directory arrives as the explicit model path.
	if _, err := LoadOrTrain(dir, "", nil, 0, trainer, nil); err != nil {
		t.Fatalf("LoadOrTrain() with directory model path error = %v", err)
	}
	if trains != 1 {
		t.Errorf("trainer ran %d times after directory model path, want 1", trains)
	}
}
