package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ahrav/go-rolecall/infrastructure/questionbank"
	"github.com/ahrav/go-rolecall/internal/testutils"
)

func main() {
	var (
		teams      = flag.Int("teams", 20, "Number of teams to generate")
		minSize    = flag.Int("min-size", 3, "Smallest team size")
		maxSize    = flag.Int("max-size", 12, "Largest team size")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed; fix it for reproducible output")
		bankPath   = flag.String("bank", "", "Question bank file (YAML or JSON); the reference bank when empty")
		outputPath = flag.String("output", "testdata/sample_responses/sample_responses.json", "Output file path")
	)
	flag.Parse()

	bank, err := questionbank.SourceFor(*bankPath).Load()
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}

	dataset := testutils.GenerateSampleDataset(bank, *teams, *minSize, *maxSize, *seed)
	if *bankPath != "" {
		dataset.Metadata.Bank = filepath.Base(*bankPath)
	}
	if err := testutils.ValidateSampleDataset(dataset, bank); err != nil {
		log.Fatalf("Generated dataset is invalid: %v", err)
	}

	if err := testutils.SaveSampleDataset(dataset, *outputPath); err != nil {
		log.Fatalf("Failed to save dataset: %v", err)
	}

	stats := testutils.ComputeDatasetStatistics(dataset)

	fmt.Printf("Generated sample responses:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Seed: %d\n", *seed)
	fmt.Printf("- Teams: %d\n", stats.Teams)
	fmt.Printf("- Respondents: %d\n", stats.Respondents)
	fmt.Printf("- Team sizes: %d to %d\n", stats.MinTeamSize, stats.MaxTeamSize)
	fmt.Printf("- Answers: %d\n", stats.AnswersTotal)

	readmePath := filepath.Join(filepath.Dir(*outputPath), "README.md")
	if _, err := os.Stat(readmePath); os.IsNotExist(err) {
		readme := `# Sample Responses

Synthetic respondents generated with cmd/generate_sample_responses. Each
member is a specialist leaning toward one randomly chosen role, with
Gaussian jitter on every slider position.

These files are for exercising the rolecall CLI and graphs. They are not
survey data and say nothing about real people.
`
		if err := os.WriteFile(readmePath, []byte(readme), 0o600); err != nil {
			log.Printf("Warning: Failed to create README: %v", err)
		}
	}
}
