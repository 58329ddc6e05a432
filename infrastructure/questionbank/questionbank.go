// Package questionbank loads question banks from YAML or JSON files and
// ships the embedded reference bank.
package questionbank

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/ports"
)

// Format selects the encoding of a question bank file.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// maxSuggestionDistance is the largest edit distance for which an unknown
// role name gets a "did you mean" hint.
const maxSuggestionDistance = 3

//go:embed reference_bank.yaml
var referenceBankYAML []byte

var validate = validator.New()

// fold normalizes role names for case-insensitive comparison. A Caser is
// stateful, so access is serialized.
var (
	foldMu sync.Mutex
	folder = cases.Fold()
)

// bankFile is the on-disk schema of a question bank.
type bankFile struct {
	Version     string           `yaml:"version,omitempty" json:"version,omitempty" validate:"omitempty,max=32"`
	Name        string           `yaml:"name,omitempty" json:"name,omitempty" validate:"max=255"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty" validate:"max=1000"`
	Questions   []questionRecord `yaml:"questions" json:"questions" validate:"required,min=1,dive"`
}

type questionRecord struct {
	ID         int             `yaml:"id" json:"id" validate:"min=1"`
	StatementA statementRecord `yaml:"statement_a" json:"statement_a"`
	StatementB statementRecord `yaml:"statement_b" json:"statement_b"`
}

type statementRecord struct {
	Text string `yaml:"text" json:"text" validate:"required,max=500"`
	Role string `yaml:"role" json:"role" validate:"required"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported question bank extension %q", filepath.Ext(path))
	}
}

// Parse decodes and validates a question bank. Unknown fields are
// rejected; role names match case-insensitively and misspellings carry a
// suggestion. Every problem found is reported in one error wrapping
// domain.ErrInvalidQuestionBank.
func Parse(data []byte, format Format) (*domain.QuestionBank, error) {
	var file bankFile
	if err := decode(data, format, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuestionBank, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuestionBank, err)
	}

	verr := domain.NewValidationError("QuestionBank")
	questions := make([]domain.Question, 0, len(file.Questions))
	for _, rec := range file.Questions {
		roleA, errA := ResolveRole(rec.StatementA.Role)
		roleB, errB := ResolveRole(rec.StatementB.Role)
		if errA != nil {
			verr.AddError(fmt.Sprintf("question %d: statement a: %v", rec.ID, errA))
		}
		if errB != nil {
			verr.AddError(fmt.Sprintf("question %d: statement b: %v", rec.ID, errB))
		}
		questions = append(questions, domain.Question{
			ID:         rec.ID,
			StatementA: domain.Statement{Text: strings.TrimSpace(rec.StatementA.Text), Role: roleA},
			StatementB: domain.Statement{Text: strings.TrimSpace(rec.StatementB.Text), Role: roleB},
		})
	}
	if verr.HasErrors() {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuestionBank, verr)
	}

	return domain.NewQuestionBank(questions)
}

func decode(data []byte, format Format, out *bankFile) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("empty document")
			}
			return fmt.Errorf("YAML decode failed: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("JSON decode failed: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// ResolveRole parses a role name ignoring case and surrounding space.
// Unknown names wrap domain.ErrUnknownRole and name the closest role when
// one is near enough.
func ResolveRole(name string) (domain.Role, error) {
	foldMu.Lock()
	folded := folder.String(strings.TrimSpace(name))
	foldMu.Unlock()

	if r, err := domain.ParseRole(folded); err == nil {
		return r, nil
	}

	if suggestion, ok := suggestRole(folded); ok {
		return 0, fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrUnknownRole, name, suggestion)
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownRole, name)
}

// suggestRole returns the role name closest to name by edit distance.
func suggestRole(name string) (string, bool) {
	best, bestDist := "", maxSuggestionDistance+1
	for _, r := range domain.AllRoles() {
		if d := levenshtein.ComputeDistance(name, r.String()); d < bestDist {
			best, bestDist = r.String(), d
		}
	}
	return best, best != ""
}

// LoadFile reads and parses the bank at path, inferring the format from
// its extension.
func LoadFile(path string) (*domain.QuestionBank, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	bank, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bank, nil
}

// Reference returns the embedded 40-question reference bank. It is parsed
// once; the same immutable bank is returned on every call.
var Reference = sync.OnceValues(func() (*domain.QuestionBank, error) {
	return Parse(referenceBankYAML, FormatYAML)
})

// Marshal encodes bank in the file schema accepted by Parse.
func Marshal(bank *domain.QuestionBank, format Format) ([]byte, error) {
	file := bankFile{Questions: make([]questionRecord, 0, bank.Len())}
	for _, q := range bank.Questions() {
		file.Questions = append(file.Questions, questionRecord{
			ID:         q.ID,
			StatementA: statementRecord{Text: q.StatementA.Text, Role: q.StatementA.Role.String()},
			StatementB: statementRecord{Text: q.StatementB.Text, Role: q.StatementB.Role.String()},
		})
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(&file)
	case FormatJSON:
		return json.MarshalIndent(&file, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// FileSource loads a bank from a file on every call.
type FileSource struct {
	Path string
}

// Load implements ports.QuestionBankSource.
func (s FileSource) Load() (*domain.QuestionBank, error) { return LoadFile(s.Path) }

// ReferenceSource serves the embedded reference bank.
type ReferenceSource struct{}

// Load implements ports.QuestionBankSource.
func (ReferenceSource) Load() (*domain.QuestionBank, error) { return Reference() }

var (
	_ ports.QuestionBankSource = FileSource{}
	_ ports.QuestionBankSource = ReferenceSource{}
)

// SourceFor returns the reference bank for an empty path and a file source
// otherwise.
func SourceFor(path string) ports.QuestionBankSource {
	if path == "" {
		return ReferenceSource{}
	}
	return FileSource{Path: path}
}
