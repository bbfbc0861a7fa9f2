package db

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DatasetRecord is one row of the datasets table.
type DatasetRecord struct {
	ID           int64     `yaml:"id"`
	Name         string    `yaml:"name"`
	CreatedAt    time.Time `yaml:"created_at"`
	NumDocuments int       `yaml:"num_documents"`
	NumTokens    int       `yaml:"num_tokens"`
	Languages    []string  `yaml:"languages"`
	Hash         string    `yaml:"hash"`
	OutputDir    string    `yaml:"output_dir"`
}

// InsertDataset records an exported dataset and returns its row id.
// Language codes are stored sorted and comma-joined.
func (db *DB) InsertDataset(name string, numDocuments, numTokens int, languages []string, hash, outputDir string) (int64, error) {
	codes := make([]string, len(languages))
	copy(codes, languages)
	sort.Strings(codes)

	res, err := db.Exec(
		`INSERT INTO datasets (name, num_documents, num_tokens, languages, hash, output_dir)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, numDocuments, numTokens, strings.Join(codes, ","), hash, outputDir,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert dataset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get dataset id: %w", err)
	}
	return id, nil
}

// ListDatasets returns all recorded datasets, newest first.
func (db *DB) ListDatasets() ([]DatasetRecord, error) {
	rows, err := db.Query(
		`SELECT id, name, created_at, num_documents, num_tokens, languages, hash, output_dir
		 FROM datasets ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var records []DatasetRecord
	for rows.Next() {
		var r DatasetRecord
		var langs string
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.NumDocuments, &r.NumTokens, &langs, &r.Hash, &r.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		if langs != "" {
			r.Languages = strings.Split(langs, ",")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset rows: %w", err)
	}
	return records, nil
}
