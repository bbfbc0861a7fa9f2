// Package tokenizer trains or loads a subword model and encodes
// documents into fixed-size token windows.
package tokenizer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// MinVocabSize is the floor for vocabulary backoff. Training that
// cannot reach a viable size at or above this is fatal to the run.
const MinVocabSize = 1000

// Model encodes text to token ids and back. Consumed as a black box;
// the pipeline only relies on Encode/Decode being mutually consistent.
type Model interface {
	Encode(text string) []int
	Decode(ids []int) string
	Len() int
}

// Trainer builds a Model from corpus texts. A corpus that cannot
// support the requested vocabulary size is signalled with
// *VocabTooLargeError so the caller can back off and retry.
type Trainer interface {
	Train(texts []string, vocabSize int) (Model, error)
}

// VocabTooLargeError reports that the corpus cannot support the
// requested vocabulary size. Max is the largest supported size, or 0
// when the trainer does not report one.
type VocabTooLargeError struct {
	Requested int
	Max       int
}

func (e *VocabTooLargeError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("vocabulary size %d too large for corpus, maximum supported is %d", e.Requested, e.Max)
	}
	return fmt.Sprintf("vocabulary size %d too large for corpus", e.Requested)
}

// TrainWithBackoff retries training with a shrinking vocabulary until
// it succeeds or no viable size >= MinVocabSize remains. When the
// trainer reports its supported maximum the next attempt is
// max(MinVocabSize, min(current-1000, reported)); otherwise the
// current size is multiplied by 0.8. The retry sequence is
// deterministic given the same corpus and starting size.
func TrainWithBackoff(trainer Trainer, texts []string, vocabSize int, logger *slog.Logger) (Model, error) {
	cur := vocabSize
	for {
		model, err := trainer.Train(texts, cur)
		if err == nil {
			return model, nil
		}

		var tooLarge *VocabTooLargeError
		if !errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("tokenizer training failed: %w", err)
		}

		var next int
		if tooLarge.Max > 0 {
			next = cur - 1000
			if tooLarge.Max < next {
				next = tooLarge.Max
			}
			if next < MinVocabSize {
				next = MinVocabSize
			}
		} else {
			next = cur * 8 / 10
		}

		if next < MinVocabSize {
			return nil, fmt.Errorf("no viable vocabulary size >= %d: %w", MinVocabSize, err)
		}
		if next >= cur {
			return nil, fmt.Errorf("vocabulary backoff stalled at %d: %w", cur, err)
		}

		if logger != nil {
			logger.Warn("vocabulary size rejected, backing off", "requested", cur, "next", next, "reported_max", tooLarge.Max)
		}
		cur = next
	}
}

// LoadOrTrain loads the model at modelPath when it is an existing
// file, or the previously saved model inside modelPath (or trainDir
// when modelPath is empty) when one is present. Otherwise it trains
// with backoff and, when the trained model is persistable, saves it
// into that directory so the next run over the same location reuses
// it instead of retraining.
func LoadOrTrain(modelPath, trainDir string, texts []string, vocabSize int, trainer Trainer, logger *slog.Logger) (Model, error) {
	if modelPath != "" {
		if info, err := os.Stat(modelPath); err == nil && !info.IsDir() {
			return LoadSubwordModel(modelPath)
		}
	}

	dir := modelPath
	if dir == "" {
		dir = trainDir
	}
	if dir != "" {
		saved := filepath.Join(dir, DefaultModelName)
		if info, err := os.Stat(saved); err == nil && !info.IsDir() {
			if logger != nil {
				logger.Info("reusing saved tokenizer model", "path", saved)
			}
			return LoadSubwordModel(saved)
		}
	}

	model, err := TrainWithBackoff(trainer, texts, vocabSize, logger)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if persistable, ok := model.(interface{ Save(path string) error }); ok {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create model directory: %w", err)
			}
			path := filepath.Join(dir, DefaultModelName)
			if err := persistable.Save(path); err != nil {
				return nil, fmt.Errorf("failed to save trained model: %w", err)
			}
			if logger != nil {
				logger.Info("saved trained tokenizer model", "path", path)
			}
		}
	}
	return model, nil
}
