package cleaning

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Classifier detects the language of a text. Implementations return
// the lowercase ISO 639-1 code and true, or ("", false) when no
// language could be determined. A nil Classifier on the Stage makes
// the language gate pass every document unfiltered.
type Classifier interface {
	Detect(text string) (string, bool)
}

// LinguaClassifier is the default Classifier, backed by lingua-go.
type LinguaClassifier struct {
	detector lingua.LanguageDetector
}

// NewLinguaClassifier builds a detector over all supported languages.
func NewLinguaClassifier() *LinguaClassifier {
	return &LinguaClassifier{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// Detect classifies a single text. Long texts are classified on a
// prefix; detection quality saturates well before 1000 characters.
func (lc *LinguaClassifier) Detect(text string) (string, bool) {
	text = strings.ReplaceAll(text, "\n", " ")
	if runes := []rune(text); len(runes) > 1000 {
		text = string(runes[:1000])
	}
	if text == "" {
		return "", false
	}
	lang, ok := lc.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
