// Package pipeline sequences the import, clean, augment, tokenize and
// export stages of one dataset run.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/corpusforge/corpusforge/models"
	"github.com/corpusforge/corpusforge/pkg/analytics"
	"github.com/corpusforge/corpusforge/pkg/augment"
	"github.com/corpusforge/corpusforge/pkg/cleaning"
	"github.com/corpusforge/corpusforge/pkg/exporter"
	"github.com/corpusforge/corpusforge/pkg/importer"
	"github.com/corpusforge/corpusforge/pkg/tokenizer"
)

// State of a run. Transitions are strictly forward; a run never
// re-enters a prior stage.
type State int32

const (
	StateIdle State = iota
	StateImporting
	StateCleaning
	StateAugmenting
	StateTokenizing
	StateExporting
	StateFinished
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImporting:
		return "importing"
	case StateCleaning:
		return "cleaning"
	case StateAugmenting:
		return "augmenting"
	case StateTokenizing:
		return "tokenizing"
	case StateExporting:
		return "exporting"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrCancelled is returned when a run stops at a stage boundary
// because Cancel was called. It is distinct from a failure.
var ErrCancelled = errors.New("pipeline cancelled")

// ErrNoDocuments is returned when the import stage yields nothing.
var ErrNoDocuments = errors.New("no documents imported")

// MetadataSink records the final dataset facts. Consumed as an
// external capability; a nil sink disables recording and a failing
// sink only degrades the run.
type MetadataSink interface {
	RecordDataset(name string, numDocuments, numTokens int, languages []string, hash, outputDir string) error
}

// Deps are the collaborator capabilities a run consumes. Classifier,
// Lexicon, Columnar, Metadata and Observer may each be nil; every
// stage defines its degraded behavior under capability absence.
type Deps struct {
	Importer   importer.Importer
	Classifier cleaning.Classifier
	Lexicon    augment.Lexicon
	Trainer    tokenizer.Trainer
	Columnar   exporter.ColumnarEngine
	Metadata   MetadataSink
	Observer   Observer
	Logger     *slog.Logger
}

// Manager owns one run: the stage sequence, the cooperative
// cancellation flag and event emission. Stages execute synchronously
// on whichever goroutine calls Run; Cancel may be called from any
// goroutine and is polled at stage boundaries only; it does not
// preempt a stage already in flight.
type Manager struct {
	cfg       models.PipelineConfig
	deps      Deps
	observer  Observer
	logger    *slog.Logger
	cancelled atomic.Bool
	state     atomic.Int32
	runID     string
	stats     models.DatasetStats
}

// NewManager builds a Manager for one immutable config snapshot.
func NewManager(cfg models.PipelineConfig, deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Trainer == nil {
		deps.Trainer = tokenizer.SubwordTrainer{}
	}
	return &Manager{
		cfg:      cfg,
		deps:     deps,
		observer: deps.Observer,
		logger:   logger,
		runID:    ulid.Make().String(),
	}
}

// RunID identifies this run in logs and the metadata store.
func (m *Manager) RunID() string { return m.runID }

// State returns the current run state; safe from any goroutine.
func (m *Manager) State() State { return State(m.state.Load()) }

// Cancel requests a cooperative stop. The run terminates at the next
// stage boundary; in-flight work is not interrupted.
func (m *Manager) Cancel() { m.cancelled.Store(true) }

func (m *Manager) setState(s State) { m.state.Store(int32(s)) }

func (m *Manager) checkCancel() bool {
	if m.cancelled.Load() {
		m.logger.Warn("pipeline cancelled", "run_id", m.runID)
		m.setState(StateCancelled)
		return true
	}
	return false
}

// Stats returns the dataset stats of a finished run.
func (m *Manager) Stats() models.DatasetStats { return m.stats }

// Run executes the stage sequence to completion, cancellation or
// failure. No partial writes reach the output location before the
// export stage.
func (m *Manager) Run() error {
	m.logger.Info("starting pipeline", "run_id", m.runID, "inputs", m.cfg.InputPaths, "output_dir", m.cfg.OutputDir)
	if m.checkCancel() {
		return ErrCancelled
	}

	// Import
	m.setState(StateImporting)
	m.emitProgress("import", 0.0, "Starting import")
	docs, err := m.deps.Importer.Import(m.cfg.InputPaths)
	if err != nil {
		m.setState(StateFailed)
		return fmt.Errorf("import failed: %w", err)
	}
	m.emitProgress("import", 1.0, fmt.Sprintf("Imported %d items", len(docs)))
	m.emitPreview("import", sampleTexts(docs, 5))
	m.emitMetrics("import", map[string]interface{}{"raw_count": len(docs)})
	m.logger.Info("imported raw documents", "count", len(docs))
	if m.checkCancel() {
		return ErrCancelled
	}
	if len(docs) == 0 {
		m.setState(StateFailed)
		return ErrNoDocuments
	}

	// Clean
	m.setState(StateCleaning)
	m.emitProgress("clean", 0.0, "Starting cleaning")
	stage := cleaning.NewStage(m.cfg, m.deps.Classifier, m.logger)
	docs = stage.Run(docs)
	dist := cleaning.LanguageDistribution(docs)
	m.emitProgress("clean", 1.0, fmt.Sprintf("Cleaned: %d remain", len(docs)))
	m.emitPreview("clean", sampleTexts(docs, 5))
	m.emitMetrics("clean", map[string]interface{}{
		"kept":                  len(docs),
		"language_distribution": dist,
		"top_keywords":          analytics.TopKeywords(analytics.CorpusFrequency(docs), 10),
	})
	m.logger.Info("kept documents after cleaning", "count", len(docs))
	if m.checkCancel() {
		return ErrCancelled
	}

	// Augment (optional, best effort)
	if m.cfg.EnableAugmentation {
		m.setState(StateAugmenting)
		m.emitProgress("augment", Indeterminate, "Starting augmentation")
		aug := augment.New(m.deps.Lexicon, m.cfg.AugmentSeed, m.cfg.AugmentReplaceProb, m.cfg.AugmentShuffleProb)
		docs = aug.Run(docs)
		m.emitProgress("augment", 1.0, fmt.Sprintf("Augmentation produced %d docs", len(docs)))
		m.logger.Info("documents after augmentation", "count", len(docs))
		if m.checkCancel() {
			return ErrCancelled
		}
	}

	// Tokenize & chunk
	m.setState(StateTokenizing)
	m.emitProgress("tokenize", Indeterminate, "Preparing tokenizer")
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	trainDir := filepath.Join(m.cfg.OutputDir, "tokenizer")
	model, err := tokenizer.LoadOrTrain(m.cfg.TokenizerModelPath, trainDir, texts, m.cfg.VocabSize, m.deps.Trainer, m.logger)
	if err != nil {
		m.setState(StateFailed)
		return fmt.Errorf("tokenizer unavailable: %w", err)
	}
	chunks := tokenizer.Chunk(docs, model, m.cfg.ChunkSize)
	m.emitProgress("tokenize", 1.0, fmt.Sprintf("Chunks: %d", len(chunks)))
	m.emitMetrics("tokenize", map[string]interface{}{"chunk_count": len(chunks), "vocab_size": model.Len()})
	m.logger.Info("created chunks", "count", len(chunks))
	if m.checkCancel() {
		return ErrCancelled
	}

	// Export
	m.setState(StateExporting)
	m.emitProgress("export", 0.0, "Starting export")
	stats, err := exporter.Export(m.cfg.OutputDir, docs, chunks, m.cfg.ExportFormats, exporter.Options{
		Watermark:   m.cfg.Watermark,
		ASCIIEscape: m.cfg.ASCIIEscape,
		Columnar:    m.deps.Columnar,
		Logger:      m.logger,
	})
	if err != nil {
		m.setState(StateFailed)
		return fmt.Errorf("export failed: %w", err)
	}
	m.stats = stats
	m.emitProgress("export", 1.0, "Export finished")
	m.logger.Info("export complete", "output_dir", m.cfg.OutputDir, "dataset_hash", stats.DatasetHash)

	m.recordDataset(stats)

	m.setState(StateFinished)
	m.logger.Info("pipeline finished", "run_id", m.runID)
	return nil
}

// recordDataset pushes the final stats to the metadata sink. Best
// effort: a missing or failing sink only degrades the run.
func (m *Manager) recordDataset(stats models.DatasetStats) {
	if m.deps.Metadata == nil {
		return
	}
	name := m.cfg.DatasetName
	if name == "" {
		name = filepath.Base(m.cfg.OutputDir)
	}
	languages := make([]string, 0, len(stats.LanguageDistribution))
	for code := range stats.LanguageDistribution {
		languages = append(languages, code)
	}
	if err := m.deps.Metadata.RecordDataset(name, stats.NumDocuments, stats.NumTokens, languages, stats.DatasetHash, m.cfg.OutputDir); err != nil {
		m.logger.Warn("failed to record dataset metadata", "error", err)
	}
}

func sampleTexts(docs []models.Document, n int) []string {
	if len(docs) < n {
		n = len(docs)
	}
	samples := make([]string, 0, n)
	for _, d := range docs[:n] {
		text := d.Text
		if runes := []rune(text); len(runes) > 400 {
			text = string(runes[:400])
		}
		samples = append(samples, text)
	}
	return samples
}
