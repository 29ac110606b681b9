//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Corpus groups the data loading targets.
type Corpus mg.Namespace

func bin() string {
	return filepath.Join(binDir, binName)
}

// Import builds the CLI and imports the thesis records under corpus/.
func (Corpus) Import() error {
	mg.Deps(Build, Init)
	return sh.RunV(bin(), "corpus", "import", "corpus")
}

// Rebuild imports the corpus and recomputes every lab feature vector.
func (Corpus) Rebuild() error {
	mg.SerialDeps(Corpus.Import)
	return sh.RunV(bin(), "features", "rebuild")
}

// Scrape runs the batch scrape in queries/queries.yaml.
func (Corpus) Scrape() error {
	mg.Deps(Build, Init)
	qf := filepath.Join("queries", "queries.yaml")
	if err := sh.RunV(bin(), "scrape", "--query-file", qf); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	return nil
}
