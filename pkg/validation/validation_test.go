package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Personality string   `validate:"omitempty,personality"`
	Answer      string   `validate:"required,not_blank,max=10"`
	Email       string   `validate:"omitempty,email,no_emoji"`
	Answers     []string `validate:"omitempty,min=2"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

func TestValidators(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.Struct(sample{Personality: "ruthless", Answer: "ok"}))
	assert.NoError(t, v.Struct(sample{Answer: "fine"}))
	assert.Error(t, v.Struct(sample{Personality: "sarcastic", Answer: "ok"}))
	assert.Error(t, v.Struct(sample{Answer: "   "}))
	assert.Error(t, v.Struct(sample{Answer: "ok", Email: "a😀@x.io"}))
}

func TestFormatValidationErrors(t *testing.T) {
	v := newValidator()

	err := v.Struct(sample{Personality: "sarcastic", Answer: "this answer is too long", Answers: []string{"one"}})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Contains(t, msgs, "Feedback mode: must be supportive or direct")
	assert.Contains(t, msgs, "Answer: must be at most 10 characters")
	assert.Contains(t, msgs, "Answers: must contain at least 2 items")

	assert.Equal(t, []string{"boom"}, FormatValidationErrors(errors.New("boom")))
}

func TestFormatCamelCase(t *testing.T) {
	assert.Equal(t, "Job Spec Text", getFieldLabel("JobSpecText"))
}
