// Package quiz serves multiple-choice trivia questions about the characters.
package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
)

//go:embed questions.json
var defaultQuestions []byte

// minOptions is the smallest number of choices a question may offer
const minOptions = 2

// Question is one multiple-choice question. Answer is one of Options.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Bank is an immutable, validated set of questions.
type Bank struct {
	questions []Question
}

// LoadDefault returns the built-in question bank.
func LoadDefault() (*Bank, error) {
	return Parse(defaultQuestions, "embedded")
}

// Load reads a JSON array of questions from path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return nil, errors.New(err).
			Component("quiz").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return Parse(data, path)
}

// Parse decodes and validates a JSON array of questions. source names the
// origin in errors.
func Parse(data []byte, source string) (*Bank, error) {
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, errors.Newf("failed to decode quiz questions: %w", err).
			Component("quiz").
			Category(errors.CategoryFileParsing).
			Context("source", source).
			Build()
	}

	if err := validate(questions); err != nil {
		return nil, errors.New(err).
			Component("quiz").
			Category(errors.CategoryValidation).
			Context("source", source).
			Build()
	}
	return &Bank{questions: questions}, nil
}

func validate(questions []Question) error {
	if len(questions) == 0 {
		return errors.NewStd("question bank is empty")
	}

	var errs []error
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.Question) == "":
			errs = append(errs, fmt.Errorf("question %d: text is empty", i+1))
		case len(q.Options) < minOptions:
			errs = append(errs, fmt.Errorf("question %d: needs at least %d options, has %d", i+1, minOptions, len(q.Options)))
		case !slices.Contains(q.Options, q.Answer):
			errs = append(errs, fmt.Errorf("question %d: answer %q is not one of the options", i+1, q.Answer))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Questions returns a copy of every question in file order.
func (b *Bank) Questions() []Question {
	return slices.Clone(b.questions)
}

// Random returns n distinct questions in random order. n outside 1..Len
// returns the whole bank shuffled. A nil rng uses the global source.
func (b *Bank) Random(n int, rng *rand.Rand) []Question {
	if n <= 0 || n > len(b.questions) {
		n = len(b.questions)
	}

	var order []int
	if rng != nil {
		order = rng.Perm(len(b.questions))
	} else {
		order = rand.Perm(len(b.questions))
	}

	picked := make([]Question, 0, n)
	for _, idx := range order[:n] {
		picked = append(picked, b.questions[idx])
	}
	return picked
}

// Check reports whether answer matches the correct option, ignoring case
// and surrounding whitespace.
func Check(q Question, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), q.Answer)
}
