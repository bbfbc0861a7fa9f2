package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Export format names accepted in PipelineConfig.ExportFormats.
const (
	FormatJSONL    = "jsonl"
	FormatText     = "txt"
	FormatCSV      = "csv"
	FormatColumnar = "columnar"
)

// Defaults applied by NewPipelineConfig / LoadConfig.
const (
	DefaultChunkSize      = 1024
	DefaultVocabSize      = 32000
	DefaultDedupThreshold = 0.9
	DefaultDedupNumPerm   = 128
)

// PipelineConfig is the immutable configuration snapshot for one run.
// It is constructed once before the run starts; the run never mutates
// its own config.
type PipelineConfig struct {
	InputPaths []string `yaml:"inputs"`
	OutputDir  string   `yaml:"output_dir"`

	DatasetName string `yaml:"dataset_name"`

	ChunkSize     int      `yaml:"chunk_size"`
	ExportFormats []string `yaml:"export"`

	// Language filter. DetectLanguage false disables classification,
	// which makes the language gate pass everything.
	DetectLanguage    bool     `yaml:"detect_language"`
	LanguageWhitelist []string `yaml:"lang_whitelist"`
	LanguageBlacklist []string `yaml:"lang_blacklist"`

	// Tokenizer. ModelPath may point at an existing trained model; when
	// it does not, a new model is trained into the output directory.
	TokenizerModelPath string `yaml:"tokenizer_model"`
	VocabSize          int    `yaml:"vocab_size"`

	// Cleaning toggles.
	EnablePatternScrub    bool `yaml:"enable_pattern_scrub"`
	EnableProfanityFilter bool `yaml:"enable_profanity_filter"`
	EnableLanguageFilter  bool `yaml:"enable_language_filter"`
	EnableDeduplication   bool `yaml:"enable_deduplication"`

	// Extra profane tokens merged into the built-in denylist.
	ProfanityDenylist []string `yaml:"profanity_denylist"`

	DedupThreshold float64 `yaml:"dedup_threshold"`
	DedupNumPerm   int     `yaml:"dedup_num_perm"`

	EnableAugmentation bool    `yaml:"augment"`
	AugmentSeed        int64   `yaml:"augment_seed"`
	AugmentReplaceProb float64 `yaml:"augment_replace_prob"`
	AugmentShuffleProb float64 `yaml:"augment_shuffle_prob"`

	Watermark   bool `yaml:"watermark"`
	ASCIIEscape bool `yaml:"ascii_escape"`

	// Path of the sqlite metadata store. Empty disables recording.
	MetadataDBPath string `yaml:"metadata_db"`
}

// NewPipelineConfig returns a config with all defaults and every
// cleaning step enabled.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:             DefaultChunkSize,
		VocabSize:             DefaultVocabSize,
		ExportFormats:         []string{FormatJSONL},
		EnablePatternScrub:    true,
		EnableProfanityFilter: true,
		EnableLanguageFilter:  true,
		EnableDeduplication:   true,
		DedupThreshold:        DefaultDedupThreshold,
		DedupNumPerm:          DefaultDedupNumPerm,
		AugmentReplaceProb:    0.05,
		AugmentShuffleProb:    0.2,
	}
}

// LoadConfig reads a YAML run config. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (PipelineConfig, error) {
	cfg := NewPipelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parts of the config that would otherwise fail
// deep inside a run.
func (c *PipelineConfig) Validate() error {
	if len(c.InputPaths) == 0 {
		return fmt.Errorf("no input paths configured")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("no output directory configured")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.EnableDeduplication && c.DedupNumPerm <= 0 {
		return fmt.Errorf("dedup permutation count must be positive, got %d", c.DedupNumPerm)
	}
	for _, f := range c.ExportFormats {
		switch f {
		case FormatJSONL, FormatText, FormatCSV, FormatColumnar:
		default:
			return fmt.Errorf("unknown export format %q", f)
		}
	}
	return nil
}
