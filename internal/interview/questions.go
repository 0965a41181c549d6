package interview

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"interview-coach-backend/internal/domain"
)

var defaultQuestions = []domain.Question{
	{Category: domain.CategoryTechnical, Prompt: "Tell me about your experience with TypeScript."},
	{Category: domain.CategoryTechnical, Prompt: "How do you approach system design problems?"},
	{Category: domain.CategoryBehavioral, Prompt: "Describe a time you handled a difficult team situation."},
	{Category: domain.CategoryBehavioral, Prompt: "Tell me about your proudest project accomplishment."},
	{Category: domain.CategoryTechnical, Prompt: "What are your strengths as a developer?"},
	{Category: domain.CategoryGrowth, Prompt: "Where do you see yourself in 5 years?"},
	{Category: domain.CategoryTechnical, Prompt: "How do you stay updated with new technologies?"},
}

// QuestionBank is the YAML layout of a custom question file:
//
//	questions:
//	  - category: Technical
//	    prompt: How do you approach system design problems?
type QuestionBank struct {
	Questions []domain.Question `yaml:"questions"`
}

// DefaultQuestions returns a fresh copy of the built-in question sequence.
func DefaultQuestions() []domain.Question {
	qs := make([]domain.Question, len(defaultQuestions))
	copy(qs, defaultQuestions)
	for i := range qs {
		qs[i].Index = i
	}
	return qs
}

// LoadQuestionBank reads and validates a YAML question bank.
func LoadQuestionBank(filename string) ([]domain.Question, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", filename, err)
	}
	return ParseQuestionBank(data)
}

func ParseQuestionBank(data []byte) ([]domain.Question, error) {
	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := validateBank(&bank); err != nil {
		return nil, fmt.Errorf("validate question bank: %w", err)
	}
	for i := range bank.Questions {
		bank.Questions[i].Index = i
	}
	return bank.Questions, nil
}

func validateBank(bank *QuestionBank) error {
	if len(bank.Questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}
	for i := range bank.Questions {
		q := &bank.Questions[i]
		q.Prompt = strings.TrimSpace(q.Prompt)
		if q.Prompt == "" {
			return fmt.Errorf("question %d must have a prompt", i+1)
		}
		cat, err := ParseCategory(string(q.Category))
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		q.Category = cat
	}
	return nil
}

// ParseCategory accepts category names case-insensitively.
func ParseCategory(s string) (domain.QuestionCategory, error) {
	for _, c := range []domain.QuestionCategory{domain.CategoryTechnical, domain.CategoryBehavioral, domain.CategoryGrowth} {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown question category %q", s)
}

// FilterByCategory keeps the questions in any of the given categories, in
// their original order. No categories keeps everything.
func FilterByCategory(questions []domain.Question, categories []domain.QuestionCategory) []domain.Question {
	if len(categories) == 0 {
		return questions
	}
	want := make(map[domain.QuestionCategory]struct{}, len(categories))
	for _, c := range categories {
		want[c] = struct{}{}
	}
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if _, ok := want[q.Category]; ok {
			out = append(out, q)
		}
	}
	return out
}
