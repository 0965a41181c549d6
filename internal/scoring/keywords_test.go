package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_SplitsLowercasesAndDropsStopWords(t *testing.T) {
	got := ExtractKeywords("The React, TypeScript; and react/Node (AWS)", 3)
	assert.Equal(t, []string{"react", "typescript", "node", "aws"}, got)
}

func TestExtractKeywords_MinLength(t *testing.T) {
	assert.Equal(t, []string{"rust", "java"}, ExtractKeywords("go rust java", 4))
}

func TestExtractKeywords_EmDashAndColon(t *testing.T) {
	assert.Equal(t, []string{"leadership", "mentoring", "skills"}, ExtractKeywords("leadership—mentoring: skills", 4))
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	got := ExtractKeywords("", 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = ExtractKeywords("  ,;.  ", 1)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractKeywords_Idempotent(t *testing.T) {
	first := ExtractKeywords("Designed scalable APIs, scaled APIs for growth, and mentored engineers.", 4)
	second := ExtractKeywords(strings.Join(first, " "), 4)
	assert.Equal(t, first, second)
}
