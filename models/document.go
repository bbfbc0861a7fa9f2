// Package models defines the data types shared across the pipeline stages.
package models

// Document is a single unit of text flowing through the pipeline.
// Stages never mutate a Document in place; they produce new values.
type Document struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"` // ISO 639-1, empty when undetected
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TokenizedChunk is a fixed-size window of token ids from one document,
// paired with the detokenized form of those ids. Chunks never span
// documents.
type TokenizedChunk struct {
	Tokens []int  `json:"tokens"`
	Text   string `json:"text"`
}

// DatasetStats summarizes an exported dataset. Computed once per export
// from the final document and chunk sets.
type DatasetStats struct {
	NumDocuments         int            `json:"num_documents"`
	NumTokens            int            `json:"num_tokens"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	DatasetHash          string         `json:"dataset_hash"`
}
