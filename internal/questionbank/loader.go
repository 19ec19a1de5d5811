// Package questionbank provides the read-only question content of the quiz:
// the built-in bank, YAML bank files, and validation of both.
package questionbank

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"progressive-quiz/internal/domain"
)

//go:embed bank.schema.json
var bankSchema string

type bankFile struct {
	Levels map[string][]domain.Question `yaml:"levels"`
}

// LoadFile reads and validates a YAML question bank.
func LoadFile(path string) (domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML question bank, checks it against the bank schema and
// then against the rules the schema cannot express.
func Parse(data []byte) (domain.Bank, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := validateShape(doc); err != nil {
		return nil, err
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	bank := make(domain.Bank, domain.LevelCount)
	for name, questions := range file.Levels {
		level, err := domain.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuestionBank, err)
		}
		bank[level] = questions
	}
	if err := Validate(bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func validateShape(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(bankSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuestionBank, err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidQuestionBank, strings.Join(problems, "; "))
}

// Validate checks every level holds exactly QuestionsPerLevel well-formed questions.
func Validate(bank domain.Bank) error {
	ids := make(map[string]domain.Level)
	for _, level := range domain.Levels() {
		questions, ok := bank[level]
		if !ok {
			return fmt.Errorf("%w: level %s missing", domain.ErrInvalidQuestionBank, level)
		}
		if len(questions) != domain.QuestionsPerLevel {
			return fmt.Errorf("%w: level %s has %d questions, want %d",
				domain.ErrInvalidQuestionBank, level, len(questions), domain.QuestionsPerLevel)
		}
		for i, q := range questions {
			if err := validateQuestion(q); err != nil {
				return fmt.Errorf("%w: %s question %d: %v", domain.ErrInvalidQuestionBank, level, i, err)
			}
			if other, dup := ids[q.ID]; dup {
				return fmt.Errorf("%w: id %q used in %s and %s", domain.ErrInvalidQuestionBank, q.ID, other, level)
			}
			ids[q.ID] = level
		}
	}
	return nil
}

func validateQuestion(q domain.Question) error {
	if q.ID == "" || q.Text == "" {
		return fmt.Errorf("id and text are required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("needs at least two options")
	}
	switch q.Mode {
	case domain.SingleAnswer:
		if len(q.CorrectAnswers) != 1 {
			return fmt.Errorf("single answer question needs exactly one correct option")
		}
	case domain.MultipleAnswer:
		if len(q.CorrectAnswers) == 0 {
			return fmt.Errorf("multiple answer question needs a correct option")
		}
	default:
		return fmt.Errorf("unknown answer type %q", q.Mode)
	}
	seen := make(map[int]bool, len(q.CorrectAnswers))
	for _, idx := range q.CorrectAnswers {
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("correct option %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("correct option %d listed twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// StaticLoader serves a fixed bank (built-in or loaded from a file).
type StaticLoader struct {
	bank domain.Bank
}

func NewStaticLoader(bank domain.Bank) *StaticLoader {
	return &StaticLoader{bank: bank}
}

func (l *StaticLoader) LoadLevel(_ context.Context, level domain.Level) ([]domain.Question, error) {
	questions, ok := l.bank[level]
	if !ok {
		return nil, fmt.Errorf("%w: level %s missing", domain.ErrInvalidQuestionBank, level)
	}
	return append([]domain.Question(nil), questions...), nil
}

// Questions lets a StaticLoader act as the engine's bank directly.
func (l *StaticLoader) Questions(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	return l.LoadLevel(ctx, level)
}
