package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

// responseFile is the accepted shape of an input file. It holds either a
// single respondent (id and answers), one group (name and members), or a
// list of teams. Extra fields such as dataset metadata are ignored, and
// the YAML decoder reads JSON as well.
type responseFile struct {
	ID      string          `yaml:"id"`
	Answers []domain.Answer `yaml:"answers"`

	Name    string                 `yaml:"name"`
	Members []domain.MemberAnswers `yaml:"members"`

	Teams []responseGroup `yaml:"teams"`
}

type responseGroup struct {
	Name    string                 `yaml:"name"`
	Members []domain.MemberAnswers `yaml:"members"`
}

var (
	errNoResponses = errors.New("input contains no answers, members or teams")

	// errMemberID reports a group member without an ID or sharing one with
	// another member of the same group. Group statistics identify members
	// by ID, so such members would be merged away silently.
	errMemberID = errors.New("invalid member id")
)

// readResponses reads path, or standard input when path is "-".
func readResponses(path string, stdin io.Reader) (*responseFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rf responseFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := rf.checkMemberIDs(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rf, nil
}

// checkMemberIDs requires every group member to carry a non-blank ID that
// is unique within its group. The same ID in two teams is one person
// belonging to both.
func (rf *responseFile) checkMemberIDs() error {
	groups := slices.Clone(rf.Teams)
	if len(rf.Members) > 0 {
		groups = append(groups, responseGroup{Name: rf.Name, Members: rf.Members})
	}
	for gi, g := range groups {
		label := g.Name
		if label == "" {
			label = fmt.Sprintf("#%d", gi+1)
		}
		seen := make(map[string]int, len(g.Members))
		for i, m := range g.Members {
			if strings.TrimSpace(m.ID) == "" {
				return fmt.Errorf("%w: group %s: member %d has no id", errMemberID, label, i+1)
			}
			if prev, dup := seen[m.ID]; dup {
				return fmt.Errorf("%w: group %s: members %d and %d share id %q", errMemberID, label, prev+1, i+1, m.ID)
			}
			seen[m.ID] = i
		}
	}
	return nil
}

// respondents returns every answer set in the file.
func (rf *responseFile) respondents() ([]domain.MemberAnswers, error) {
	var sets []domain.MemberAnswers
	if len(rf.Answers) > 0 {
		id := rf.ID
		if id == "" {
			id = "respondent"
		}
		sets = append(sets, domain.MemberAnswers{ID: id, Answers: rf.Answers})
	}
	for _, g := range rf.groups("") {
		sets = append(sets, g.Members...)
	}
	if len(sets) == 0 {
		return nil, errNoResponses
	}
	return sets, nil
}

// groups returns the teams of the file. A bare member list becomes one
// group named after the file unless it names itself.
func (rf *responseFile) groups(source string) []responseGroup {
	if len(rf.Teams) > 0 {
		return rf.Teams
	}
	if len(rf.Members) == 0 {
		return nil
	}
	name := rf.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return []responseGroup{{Name: name, Members: rf.Members}}
}

// respondentResult is the per-respondent output of score.
type respondentResult struct {
	ID       string            `json:"id"`
	Scores   domain.RoleScores `json:"scores"`
	Profile  domain.Profile    `json:"profile"`
	Progress scoring.Progress  `json:"progress"`
}
