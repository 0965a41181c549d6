package interview_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/interview"
)

func TestDefaultQuestions(t *testing.T) {
	qs := interview.DefaultQuestions()
	require.Len(t, qs, 7)
	for i, q := range qs {
		assert.Equal(t, i, q.Index)
		assert.NotEmpty(t, q.Prompt)
	}
	assert.Equal(t, domain.CategoryGrowth, qs[5].Category)

	qs[0].Prompt = "mutated"
	assert.NotEqual(t, "mutated", interview.DefaultQuestions()[0].Prompt)
}

func TestParseQuestionBank(t *testing.T) {
	t.Run("Should load a valid bank", func(t *testing.T) {
		data := []byte(`
questions:
  - category: technical
    prompt: "  Explain Go interfaces.  "
  - category: Growth
    prompt: What are you learning next?
`)
		qs, err := interview.ParseQuestionBank(data)
		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, domain.CategoryTechnical, qs[0].Category)
		assert.Equal(t, "Explain Go interfaces.", qs[0].Prompt)
		assert.Equal(t, 1, qs[1].Index)
	})

	t.Run("Should reject an empty bank", func(t *testing.T) {
		_, err := interview.ParseQuestionBank([]byte("questions: []"))
		assert.Error(t, err)
	})

	t.Run("Should reject unknown categories", func(t *testing.T) {
		_, err := interview.ParseQuestionBank([]byte("questions:\n  - category: Trivia\n    prompt: Why?\n"))
		assert.ErrorContains(t, err, "unknown question category")
	})

	t.Run("Should reject blank prompts", func(t *testing.T) {
		_, err := interview.ParseQuestionBank([]byte("questions:\n  - category: Technical\n    prompt: ' '\n"))
		assert.ErrorContains(t, err, "must have a prompt")
	})

	t.Run("Should reject malformed yaml", func(t *testing.T) {
		_, err := interview.ParseQuestionBank([]byte("questions: [unterminated"))
		assert.Error(t, err)
	})
}

func TestLoadQuestionBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions:\n  - category: Behavioral\n    prompt: Tell me about a conflict.\n"), 0o600))

	qs, err := interview.LoadQuestionBank(path)
	require.NoError(t, err)
	assert.Equal(t, "Tell me about a conflict.", qs[0].Prompt)

	_, err = interview.LoadQuestionBank(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFilterByCategory(t *testing.T) {
	qs := interview.DefaultQuestions()

	assert.Len(t, interview.FilterByCategory(qs, nil), 7)

	behavioral := interview.FilterByCategory(qs, []domain.QuestionCategory{domain.CategoryBehavioral})
	require.Len(t, behavioral, 2)
	assert.Equal(t, 2, behavioral[0].Index)
}
