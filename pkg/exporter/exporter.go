// Package exporter serializes the final document and chunk sets,
// computes the dataset content hash and writes the per-run artifacts.
package exporter

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/corpusforge/corpusforge/models"
)

// Artifact filenames written under the output directory.
const (
	JSONLName    = "dataset.jsonl"
	TextName     = "dataset.txt"
	CSVName      = "dataset.csv"
	ColumnarName = "dataset.columnar"
	ChunksName   = "chunks.jsonl"
	MetadataName = "metadata.json"
)

// ColumnarEngine writes the documents in a columnar table format. The
// engine is an optional capability; when absent or failing, Export
// falls back to a CSV variant instead of aborting.
type ColumnarEngine interface {
	Write(path string, docs []models.Document) error
}

// Options control the optional parts of an export.
type Options struct {
	Watermark   bool
	ASCIIEscape bool
	Columnar    ColumnarEngine
	Logger      *slog.Logger
}

// DatasetHash streams a sha256 digest over every document text in
// final order, each followed by a newline separator. It fingerprints
// the corpus content, independent of any serialization format.
func DatasetHash(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Export writes each requested format plus the chunk dump and the
// metadata summary, and returns the dataset stats.
func Export(outputDir string, docs []models.Document, chunks []models.TokenizedChunk, formats []string, opts Options) (models.DatasetStats, error) {
	var stats models.DatasetStats
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	hash := DatasetHash(texts)

	languages := make(map[string]int)
	for _, d := range docs {
		if d.Language != "" {
			languages[d.Language]++
		}
	}

	mark := func(text string) string {
		if opts.Watermark {
			return Watermark(text, hash[:WatermarkHexLen])
		}
		return text
	}

	for _, format := range formats {
		var err error
		switch format {
		case models.FormatJSONL:
			err = writeJSONL(filepath.Join(outputDir, JSONLName), docs, mark, opts.ASCIIEscape)
		case models.FormatText:
			err = writeText(filepath.Join(outputDir, TextName), docs, mark)
		case models.FormatCSV:
			err = writeCSV(filepath.Join(outputDir, CSVName), docs)
		case models.FormatColumnar:
			err = writeColumnar(outputDir, docs, opts)
		default:
			err = fmt.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return stats, fmt.Errorf("export %s failed: %w", format, err)
		}
	}

	if err := writeChunks(filepath.Join(outputDir, ChunksName), chunks); err != nil {
		return stats, fmt.Errorf("chunk dump failed: %w", err)
	}

	numTokens := 0
	for _, c := range chunks {
		numTokens += len(c.Tokens)
	}
	stats = models.DatasetStats{
		NumDocuments:         len(docs),
		NumTokens:            numTokens,
		LanguageDistribution: languages,
		DatasetHash:          hash,
	}

	if err := writeMetadata(filepath.Join(outputDir, MetadataName), stats); err != nil {
		return stats, fmt.Errorf("metadata summary failed: %w", err)
	}
	return stats, nil
}

type jsonlRecord struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

func writeJSONL(path string, docs []models.Document, mark func(string) string, asciiEscape bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, d := range docs {
		line, err := json.Marshal(jsonlRecord{Text: mark(d.Text), Language: d.Language})
		if err != nil {
			return err
		}
		if asciiEscape {
			line = escapeNonASCII(line)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return f.Close()
}

func writeText(path string, docs []models.Document, mark func(string) string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, d := range docs {
		if _, err := f.WriteString(mark(d.Text) + "\n"); err != nil {
			return err
		}
	}
	return f.Close()
}

func writeCSVTo(path string, docs []models.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"text", "language"}); err != nil {
		return err
	}
	for _, d := range docs {
		if err := w.Write([]string{d.Text, d.Language}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, docs []models.Document) error {
	return writeCSVTo(path, docs)
}

// writeColumnar tries the injected engine and degrades to a CSV
// variant when the engine is missing or fails.
func writeColumnar(outputDir string, docs []models.Document, opts Options) error {
	if opts.Columnar != nil {
		err := opts.Columnar.Write(filepath.Join(outputDir, ColumnarName), docs)
		if err == nil {
			return nil
		}
		if opts.Logger != nil {
			opts.Logger.Warn("columnar engine failed, falling back to CSV", "error", err)
		}
	} else if opts.Logger != nil {
		opts.Logger.Warn("no columnar engine available, falling back to CSV")
	}
	return writeCSVTo(filepath.Join(outputDir, ColumnarName+".csv"), docs)
}

type chunkRecord struct {
	NumTokens int    `json:"num_tokens"`
	Tokens    []int  `json:"tokens"`
	Text      string `json:"text"`
}

func writeChunks(path string, chunks []models.TokenizedChunk) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, c := range chunks {
		line, err := json.Marshal(chunkRecord{NumTokens: len(c.Tokens), Tokens: c.Tokens, Text: c.Text})
		if err != nil {
			return err
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return f.Close()
}

func writeMetadata(path string, stats models.DatasetStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// escapeNonASCII rewrites runes above 0x7F inside an already-marshaled
// JSON line as \uXXXX escapes, using surrogate pairs beyond the BMP.
// Safe because non-ASCII bytes in valid JSON only occur inside string
// values.
func escapeNonASCII(line []byte) []byte {
	var sb strings.Builder
	sb.Grow(len(line))
	for _, r := range string(line) {
		if r < 0x80 {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&sb, `\u%04x`, r)
	}
	return []byte(sb.String())
}
