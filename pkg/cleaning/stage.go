package cleaning

import (
	"log/slog"

	"github.com/corpusforge/corpusforge/models"
)

// Stage composes normalization, pattern scrubbing, the profanity gate,
// the language gate and the near-duplicate filter into one
// deterministic batch transform. Input order is significant: the
// dedup filter keeps first occurrences, so the stage is not
// commutative with respect to input ordering.
type Stage struct {
	ScrubPatterns   bool
	FilterProfanity bool
	FilterLanguage  bool
	Deduplicate     bool

	Denylist map[string]struct{}

	// Classifier may be nil, in which case the language gate passes
	// every document unfiltered.
	Classifier Classifier
	Whitelist  map[string]struct{}
	Blacklist  map[string]struct{}

	DedupNumPerm   int
	DedupThreshold float64

	Logger *slog.Logger
}

// NewStage builds a Stage from the run config. classifier may be nil.
func NewStage(cfg models.PipelineConfig, classifier Classifier, logger *slog.Logger) *Stage {
	return &Stage{
		ScrubPatterns:   cfg.EnablePatternScrub,
		FilterProfanity: cfg.EnableProfanityFilter,
		FilterLanguage:  cfg.EnableLanguageFilter,
		Deduplicate:     cfg.EnableDeduplication,
		Denylist:        BuildDenylist(cfg.ProfanityDenylist),
		Classifier:      classifier,
		Whitelist:       toSet(cfg.LanguageWhitelist),
		Blacklist:       toSet(cfg.LanguageBlacklist),
		DedupNumPerm:    cfg.DedupNumPerm,
		DedupThreshold:  cfg.DedupThreshold,
		Logger:          logger,
	}
}

func toSet(codes []string) map[string]struct{} {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Run transforms the ordered input into an ordered subsequence. Each
// surviving document is a new value; inputs are never mutated.
func (s *Stage) Run(docs []models.Document) []models.Document {
	normalized := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		text := Normalize(d.Text)
		if s.ScrubPatterns {
			text = PatternScrub(text)
		}
		if text == "" {
			continue
		}
		normalized = append(normalized, models.Document{
			Text:     text,
			Language: d.Language,
			Metadata: d.Metadata,
		})
	}

	if s.FilterProfanity {
		filtered := normalized[:0:0]
		for _, d := range normalized {
			if ContainsProfanity(d.Text, s.Denylist) {
				continue
			}
			filtered = append(filtered, d)
		}
		normalized = filtered
	}

	if s.FilterLanguage {
		normalized = s.applyLanguageGate(normalized)
	}

	if s.Deduplicate {
		before := len(normalized)
		normalized = Deduplicate(normalized, s.DedupNumPerm, s.DedupThreshold)
		if s.Logger != nil && before != len(normalized) {
			s.Logger.Info("dropped near-duplicates", "before", before, "after", len(normalized))
		}
	}

	return normalized
}

// applyLanguageGate classifies and filters. The whitelist is evaluated
// before the blacklist and both can reject. An undetected language
// never matches either list, so it survives unless a whitelist exists.
func (s *Stage) applyLanguageGate(docs []models.Document) []models.Document {
	if s.Classifier == nil {
		return docs
	}

	kept := docs[:0:0]
	for _, d := range docs {
		code, detected := s.Classifier.Detect(d.Text)
		if s.Whitelist != nil {
			if !detected {
				continue
			}
			if _, ok := s.Whitelist[code]; !ok {
				continue
			}
		}
		if detected && s.Blacklist != nil {
			if _, ok := s.Blacklist[code]; ok {
				continue
			}
		}
		kept = append(kept, models.Document{
			Text:     d.Text,
			Language: code,
			Metadata: d.Metadata,
		})
	}
	return kept
}

// LanguageDistribution counts detected language codes over a batch.
func LanguageDistribution(docs []models.Document) map[string]int {
	dist := make(map[string]int)
	for _, d := range docs {
		if d.Language != "" {
			dist[d.Language]++
		}
	}
	return dist
}
