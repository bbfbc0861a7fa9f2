// Package datasets implements the `datasets` CLI action: list the
// datasets recorded in the metadata store.
package datasets

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/corpusforge/corpusforge/pkg/db"
)

// Action lists recorded datasets as a table, or as YAML with
// --format yaml.
func Action(c *cli.Context) error {
	store, err := db.Open(c.String("metadata-db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open metadata store: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	records, err := store.ListDatasets()
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if c.String("format") == "yaml" {
		out, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal datasets: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No datasets recorded.")
		return nil
	}

	fmt.Printf("%-5s %-24s %-10s %-12s %-12s %s\n", "ID", "NAME", "DOCS", "TOKENS", "LANGS", "HASH")
	for _, r := range records {
		hash := r.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Printf("%-5d %-24s %-10d %-12d %-12s %s\n",
			r.ID, r.Name, r.NumDocuments, r.NumTokens, strings.Join(r.Languages, ","), hash)
	}
	return nil
}
