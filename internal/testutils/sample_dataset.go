package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// SampleDataset is a collection of synthetic teams for exercising the
// analysis tools end to end.
type SampleDataset struct {
	// Metadata describes how the dataset was produced.
	Metadata DatasetMetadata `json:"metadata"`

	// Teams holds the generated groups.
	Teams []SampleTeam `json:"teams"`
}

// DatasetMetadata records the provenance of a sample dataset.
type DatasetMetadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Seed        uint64 `json:"seed"`
	// Bank names the question bank the answers refer to.
	Bank string `json:"question_bank"`
}

// SampleTeam is one named group of respondents.
type SampleTeam struct {
	Name    string                 `json:"name"`
	Members []domain.MemberAnswers `json:"members"`
}

// DatasetStatistics summarizes a sample dataset.
type DatasetStatistics struct {
	Teams        int
	Respondents  int
	MinTeamSize  int
	MaxTeamSize  int
	AnswersTotal int
}

// GenerateSampleDataset builds teams random-sized teams of between
// minSize and maxSize specialists each, reproducibly from seed.
func GenerateSampleDataset(bank *domain.QuestionBank, teams, minSize, maxSize int, seed uint64) *SampleDataset {
	if maxSize < minSize {
		maxSize = minSize
	}
	gen := NewGenerator(bank, seed)
	ds := &SampleDataset{
		Metadata: DatasetMetadata{
			Name:        "Sample Respondent Dataset",
			Version:     "1.0.0",
			Description: "Synthetic respondents generated for testing. Not survey data.",
			Seed:        seed,
			Bank:        "reference",
		},
		Teams: make([]SampleTeam, 0, teams),
	}
	for i := range teams {
		size := minSize + gen.rng.IntN(maxSize-minSize+1)
		ds.Teams = append(ds.Teams, SampleTeam{
			Name:    fmt.Sprintf("team-%03d", i+1),
			Members: gen.Team(size),
		})
	}
	return ds
}

// ComputeDatasetStatistics summarizes ds.
func ComputeDatasetStatistics(ds *SampleDataset) DatasetStatistics {
	var stats DatasetStatistics
	stats.Teams = len(ds.Teams)
	for i, team := range ds.Teams {
		n := len(team.Members)
		stats.Respondents += n
		if i == 0 || n < stats.MinTeamSize {
			stats.MinTeamSize = n
		}
		stats.MaxTeamSize = max(stats.MaxTeamSize, n)
		for _, m := range team.Members {
			stats.AnswersTotal += len(m.Answers)
		}
	}
	return stats
}

// ValidateSampleDataset checks that every answer in ds refers to a bank
// question and lies on the slider, and that team and member IDs are
// unique.
func ValidateSampleDataset(ds *SampleDataset, bank *domain.QuestionBank) error {
	if ds == nil {
		return fmt.Errorf("dataset is nil")
	}
	if ds.Metadata.Name == "" {
		return fmt.Errorf("dataset name is required")
	}

	teamNames := make(map[string]struct{}, len(ds.Teams))
	memberIDs := make(map[string]struct{})
	for _, team := range ds.Teams {
		if _, dup := teamNames[team.Name]; dup {
			return fmt.Errorf("duplicate team name: %s", team.Name)
		}
		teamNames[team.Name] = struct{}{}

		for _, m := range team.Members {
			if _, dup := memberIDs[m.ID]; dup {
				return fmt.Errorf("team %s: duplicate member ID: %s", team.Name, m.ID)
			}
			memberIDs[m.ID] = struct{}{}
			for _, a := range m.Answers {
				if _, ok := bank.Question(a.QuestionID); !ok {
					return fmt.Errorf("team %s: member %s: %w: %d", team.Name, m.ID, domain.ErrUnknownQuestion, a.QuestionID)
				}
				if !a.ValidPosition() {
					return fmt.Errorf("team %s: member %s: %w: %d", team.Name, m.ID, domain.ErrInvalidPosition, a.Position)
				}
			}
		}
	}
	return nil
}

// SaveSampleDataset writes ds as indented JSON, creating parent
// directories as needed.
func SaveSampleDataset(ds *SampleDataset, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// LoadSampleDataset reads a dataset written by SaveSampleDataset.
func LoadSampleDataset(path string) (*SampleDataset, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	var ds SampleDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return &ds, nil
}
