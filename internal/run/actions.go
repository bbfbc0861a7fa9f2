// Package run implements the `run` CLI action: build the immutable
// pipeline config from flags and config file, wire the collaborators
// and drive one run.
package run

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/corpusforge/corpusforge/models"
	"github.com/corpusforge/corpusforge/pkg/cleaning"
	"github.com/corpusforge/corpusforge/pkg/db"
	"github.com/corpusforge/corpusforge/pkg/importer"
	"github.com/corpusforge/corpusforge/pkg/pipeline"
)

// dbSink adapts the sqlite store to the pipeline's metadata sink.
type dbSink struct {
	store *db.DB
}

func (s dbSink) RecordDataset(name string, numDocuments, numTokens int, languages []string, hash, outputDir string) error {
	_, err := s.store.InsertDataset(name, numDocuments, numTokens, languages, hash, outputDir)
	return err
}

// Action is the `run` command handler. Exit codes: 0 success, 1
// pipeline failure or cancellation, 2 missing required input.
func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := buildConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	deps := pipeline.Deps{
		Importer: &importer.FileImporter{Logger: logger},
		Observer: &logObserver{logger: logger},
		Logger:   logger,
	}

	if cfg.DetectLanguage {
		deps.Classifier = cleaning.NewLinguaClassifier()
	}

	var store *db.DB
	if cfg.MetadataDBPath != "" {
		store, err = db.Open(cfg.MetadataDBPath)
		if err != nil {
			// Recording is best effort; the run proceeds without it.
			logger.Warn("metadata store unavailable", "path", cfg.MetadataDBPath, "error", err)
		} else {
			defer store.Close()
			deps.Metadata = dbSink{store: store}
		}
	}

	manager := pipeline.NewManager(cfg, deps)
	if store != nil {
		if err := store.StartRun(manager.RunID()); err != nil {
			logger.Warn("failed to record run start", "error", err)
		}
	}

	// The pipeline runs on its own worker; SIGINT/SIGTERM flips the
	// cooperative cancel flag and the run stops at the next stage
	// boundary.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- manager.Run() }()

	var runErr error
loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, requesting cancellation", "signal", sig.String())
			manager.Cancel()
		case runErr = <-done:
			break loop
		}
	}

	if store != nil {
		status := db.RunStatusFinished
		switch {
		case errors.Is(runErr, pipeline.ErrCancelled):
			status = db.RunStatusCancelled
		case runErr != nil:
			status = db.RunStatusFailed
		}
		if err := store.FinishRun(manager.RunID(), status); err != nil {
			logger.Warn("failed to record run finish", "error", err)
		}
	}

	switch {
	case errors.Is(runErr, pipeline.ErrCancelled):
		logger.Warn("run cancelled", "run_id", manager.RunID())
		os.Exit(1)
	case runErr != nil:
		logger.Error("run failed", "run_id", manager.RunID(), "error", runErr)
		os.Exit(1)
	}

	stats := manager.Stats()
	fmt.Printf("Dataset written to %s\n", cfg.OutputDir)
	fmt.Printf("  documents: %d\n", stats.NumDocuments)
	fmt.Printf("  tokens:    %d\n", stats.NumTokens)
	fmt.Printf("  hash:      %s\n", stats.DatasetHash)
	return nil
}

// buildConfig merges the optional YAML config file with CLI flags;
// flags win.
func buildConfig(c *cli.Context) (models.PipelineConfig, error) {
	cfg := models.NewPipelineConfig()
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("inputs") {
		cfg.InputPaths = splitList(c.String("inputs"))
	}
	if c.IsSet("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("name") {
		cfg.DatasetName = c.String("name")
	}
	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("export") {
		cfg.ExportFormats = splitList(c.String("export"))
	}
	if c.IsSet("detect-language") {
		cfg.DetectLanguage = c.Bool("detect-language")
	}
	if c.IsSet("lang-whitelist") {
		cfg.LanguageWhitelist = splitList(c.String("lang-whitelist"))
	}
	if c.IsSet("lang-blacklist") {
		cfg.LanguageBlacklist = splitList(c.String("lang-blacklist"))
	}
	if c.IsSet("tokenizer-model") {
		cfg.TokenizerModelPath = c.String("tokenizer-model")
	}
	if c.IsSet("vocab-size") {
		cfg.VocabSize = c.Int("vocab-size")
	}
	if c.IsSet("pattern-scrub") {
		cfg.EnablePatternScrub = c.Bool("pattern-scrub")
	}
	if c.IsSet("profanity-filter") {
		cfg.EnableProfanityFilter = c.Bool("profanity-filter")
	}
	if c.IsSet("language-filter") {
		cfg.EnableLanguageFilter = c.Bool("language-filter")
	}
	if c.IsSet("dedup") {
		cfg.EnableDeduplication = c.Bool("dedup")
	}
	if c.IsSet("dedup-threshold") {
		cfg.DedupThreshold = c.Float64("dedup-threshold")
	}
	if c.IsSet("augment") {
		cfg.EnableAugmentation = c.Bool("augment")
	}
	if c.IsSet("augment-seed") {
		cfg.AugmentSeed = c.Int64("augment-seed")
	}
	if c.IsSet("watermark") {
		cfg.Watermark = c.Bool("watermark")
	}
	if c.IsSet("ascii-escape") {
		cfg.ASCIIEscape = c.Bool("ascii-escape")
	}
	if c.IsSet("metadata-db") || cfg.MetadataDBPath == "" {
		cfg.MetadataDBPath = c.String("metadata-db")
	}

	// Detection is implied whenever the language filter needs it.
	if cfg.EnableLanguageFilter && (len(cfg.LanguageWhitelist) > 0 || len(cfg.LanguageBlacklist) > 0) {
		cfg.DetectLanguage = true
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
