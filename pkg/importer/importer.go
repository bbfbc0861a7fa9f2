// Package importer reads heterogeneous raw inputs into an ordered
// document sequence. It is a thin adapter layer: a malformed file is
// logged and skipped, never fatal to the batch.
package importer

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/corpusforge/corpusforge/models"
)

// Importer returns an ordered Document sequence from input locations.
type Importer interface {
	Import(paths []string) ([]models.Document, error)
}

// textColumns are the CSV/JSONL field names tried, in order, for the
// document body.
var textColumns = []string{"text", "content", "body"}

// FileImporter imports .txt, .csv, .jsonl, .zip and .html inputs from
// files or directories.
type FileImporter struct {
	Logger *slog.Logger
}

func (im *FileImporter) warn(msg string, args ...any) {
	if im.Logger != nil {
		im.Logger.Warn(msg, args...)
	}
}

// Import walks every path (recursing into directories) and collects
// documents in file order. Unknown extensions are skipped.
func (im *FileImporter) Import(paths []string) ([]models.Document, error) {
	var docs []models.Document
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			im.warn("skipping unreadable input", "path", p, "error", err)
			continue
		}
		if info.IsDir() {
			err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				docs = append(docs, im.importFile(path)...)
				return nil
			})
			if err != nil {
				im.warn("directory walk failed", "path", p, "error", err)
			}
			continue
		}
		docs = append(docs, im.importFile(p)...)
	}
	return docs, nil
}

func (im *FileImporter) importFile(path string) []models.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		im.warn("skipping unreadable file", "path", path, "error", err)
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return importText(data)
	case ".csv":
		return im.importCSV(path, data)
	case ".jsonl":
		return importJSONL(data)
	case ".zip":
		return im.importZip(path, data)
	case ".html", ".htm":
		return im.importHTML(path, data)
	default:
		return nil
	}
}

// importText yields one document per non-blank line.
func importText(data []byte) []models.Document {
	var docs []models.Document
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		docs = append(docs, models.Document{Text: line})
	}
	return docs
}

// importCSV looks for a text/content/body column; without one, each
// row becomes the space-joined concatenation of its cells.
func (im *FileImporter) importCSV(path string, data []byte) []models.Document {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		im.warn("skipping malformed CSV", "path", path, "error", err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	textCol := -1
	for _, name := range textColumns {
		for i, header := range records[0] {
			if strings.EqualFold(strings.TrimSpace(header), name) {
				textCol = i
				break
			}
		}
		if textCol >= 0 {
			break
		}
	}

	var docs []models.Document
	if textCol >= 0 {
		for _, row := range records[1:] {
			if textCol >= len(row) {
				continue
			}
			if text := strings.TrimSpace(row[textCol]); text != "" {
				docs = append(docs, models.Document{Text: text})
			}
		}
		return docs
	}
	for _, row := range records {
		if text := strings.TrimSpace(strings.Join(row, " ")); text != "" {
			docs = append(docs, models.Document{Text: text})
		}
	}
	return docs
}

// importJSONL reads one object per line, trying the text/content/body
// keys and keeping the whole object as metadata. A malformed line
// falls back to a raw-text document.
func importJSONL(data []byte) []models.Document {
	var docs []models.Document
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			docs = append(docs, models.Document{Text: line})
			continue
		}
		text := ""
		for _, key := range textColumns {
			if v, ok := obj[key].(string); ok && v != "" {
				text = v
				break
			}
		}
		if text == "" {
			continue
		}
		docs = append(docs, models.Document{Text: text, Metadata: obj})
	}
	return docs
}

// importZip recurses into txt, jsonl and csv members.
func (im *FileImporter) importZip(path string, data []byte) []models.Document {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		im.warn("skipping malformed zip", "path", path, "error", err)
		return nil
	}

	var docs []models.Document
	for _, member := range zr.File {
		if strings.HasSuffix(member.Name, "/") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			im.warn("skipping unreadable zip member", "zip", path, "member", member.Name, "error", err)
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			im.warn("skipping unreadable zip member", "zip", path, "member", member.Name, "error", err)
			continue
		}
		switch strings.ToLower(filepath.Ext(member.Name)) {
		case ".txt":
			docs = append(docs, importText(content)...)
		case ".jsonl":
			docs = append(docs, importJSONL(content)...)
		case ".csv":
			docs = append(docs, im.importCSV(path+"!"+member.Name, content)...)
		}
	}
	return docs
}

// importHTML extracts the main article text via readability, falling
// back to the bare document text when readability cannot find an
// article.
func (im *FileImporter) importHTML(path string, data []byte) []models.Document {
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return []models.Document{{Text: text}}
		}
	}

	doc, qerr := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if qerr != nil {
		im.warn("skipping malformed HTML", "path", path, "error", qerr)
		return nil
	}
	text := strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
	if text == "" {
		return nil
	}
	return []models.Document{{Text: text}}
}
