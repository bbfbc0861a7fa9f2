package tokenizer

import (
	"github.com/corpusforge/corpusforge/models"
)

// Chunk encodes each document and partitions the ids into
// non-overlapping windows of chunkSize. Only the final window of a
// document may be shorter, and windows never span documents:
// concatenating a document's windows in order reproduces exactly its
// full encoded sequence. Each window is decoded back to text so users
// can preview the effect of chunk boundaries on word breaks.
func Chunk(docs []models.Document, model Model, chunkSize int) []models.TokenizedChunk {
	var chunks []models.TokenizedChunk
	for _, d := range docs {
		ids := model.Encode(d.Text)
		for i := 0; i < len(ids); i += chunkSize {
			end := i + chunkSize
			if end > len(ids) {
				end = len(ids)
			}
			window := make([]int, end-i)
			copy(window, ids[i:end])
			chunks = append(chunks, models.TokenizedChunk{
				Tokens: window,
				Text:   model.Decode(window),
			})
		}
	}
	return chunks
}
