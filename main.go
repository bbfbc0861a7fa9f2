// corpusforge turns heterogeneous raw text into a cleaned,
// deduplicated, tokenized and reproducibly-hashed dataset.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/corpusforge/corpusforge/internal/datasets"
	"github.com/corpusforge/corpusforge/internal/run"
	"github.com/corpusforge/corpusforge/models"
)

func main() {
	app := &cli.App{
		Name:  "corpusforge",
		Usage: "offline AI dataset factory",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the dataset pipeline over the given inputs",
				Action: run.Action,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "YAML run config; flags override file values"},
					&cli.StringFlag{Name: "inputs", Usage: "comma-separated input files or directories"},
					&cli.StringFlag{Name: "output-dir", Value: "output", Usage: "directory to write exports"},
					&cli.StringFlag{Name: "name", Usage: "dataset name recorded in the metadata store"},
					&cli.IntFlag{Name: "chunk-size", Value: models.DefaultChunkSize, Usage: "token chunk size"},
					&cli.StringFlag{Name: "export", Value: models.FormatJSONL, Usage: "comma-separated export formats: jsonl,txt,csv,columnar"},
					&cli.BoolFlag{Name: "detect-language", Usage: "classify document languages"},
					&cli.StringFlag{Name: "lang-whitelist", Usage: "keep only these ISO 639-1 codes (comma-separated)"},
					&cli.StringFlag{Name: "lang-blacklist", Usage: "drop these ISO 639-1 codes (comma-separated)"},
					&cli.StringFlag{Name: "tokenizer-model", Usage: "existing tokenizer model file, or directory for training"},
					&cli.IntFlag{Name: "vocab-size", Value: models.DefaultVocabSize, Usage: "requested tokenizer vocabulary size"},
					&cli.BoolFlag{Name: "pattern-scrub", Value: true, Usage: "remove emails, URLs and HTML tags"},
					&cli.BoolFlag{Name: "profanity-filter", Value: true, Usage: "drop documents containing denylisted words"},
					&cli.BoolFlag{Name: "language-filter", Value: true, Usage: "apply the language whitelist/blacklist"},
					&cli.BoolFlag{Name: "dedup", Value: true, Usage: "drop near-duplicate documents"},
					&cli.Float64Flag{Name: "dedup-threshold", Value: models.DefaultDedupThreshold, Usage: "estimated Jaccard similarity threshold"},
					&cli.BoolFlag{Name: "augment", Usage: "enable lexical augmentation"},
					&cli.Int64Flag{Name: "augment-seed", Usage: "seed for reproducible augmentation"},
					&cli.BoolFlag{Name: "watermark", Usage: "embed the invisible provenance watermark"},
					&cli.BoolFlag{Name: "ascii-escape", Usage: "escape non-ASCII characters in JSONL output"},
					&cli.StringFlag{Name: "metadata-db", Value: "corpusforge.db", Usage: "sqlite metadata store path (empty disables recording)"},
					&cli.BoolFlag{Name: "quiet", Usage: "log errors only"},
				},
			},
			{
				Name:   "datasets",
				Usage:  "list datasets recorded in the metadata store",
				Action: datasets.Action,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "metadata-db", Value: "corpusforge.db", Usage: "sqlite metadata store path"},
					&cli.StringFlag{Name: "format", Value: "table", Usage: "output format: table or yaml"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
