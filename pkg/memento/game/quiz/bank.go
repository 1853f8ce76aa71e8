package quiz

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionsPerQuestion is the number of choices every question offers.
const OptionsPerQuestion = 4

// ErrInvalidBank is returned for question banks that cannot be played.
var ErrInvalidBank = errors.New("invalid question bank")

// Question is a prompt with its choices and the correct choice.
type Question struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []string `yaml:"options" json:"options"`
	Answer  string   `yaml:"answer" json:"-"`
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

//go:embed questions.yaml
var defaultBank []byte

// DefaultQuestions returns the built-in four question bank.
func DefaultQuestions() []Question {
	questions, err := LoadQuestions(bytes.NewReader(defaultBank))
	if err != nil {
		panic(fmt.Sprintf("quiz: built-in bank: %v", err))
	}
	return questions
}

// LoadQuestions decodes and validates a YAML question bank.
func LoadQuestions(r io.Reader) ([]Question, error) {
	var bank bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bank); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no questions", ErrInvalidBank)
		}
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := Validate(bank.Questions); err != nil {
		return nil, err
	}
	return bank.Questions, nil
}

// LoadFile reads a YAML question bank from path.
func LoadFile(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return LoadQuestions(f)
}

// Validate checks that every question can be answered.
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.Prompt) == "":
			return fmt.Errorf("%w: question %d has no prompt", ErrInvalidBank, i+1)
		case len(q.Options) != OptionsPerQuestion:
			return fmt.Errorf("%w: question %d has %d options, want %d", ErrInvalidBank, i+1, len(q.Options), OptionsPerQuestion)
		case !slices.Contains(q.Options, q.Answer):
			return fmt.Errorf("%w: question %d answer %q is not an option", ErrInvalidBank, i+1, q.Answer)
		}
	}
	return nil
}
