package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"interview-coach-backend/internal/domain"
)

func repeatWords(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestScoreAnswer_EmptyAnswerScoresZero(t *testing.T) {
	for _, answer := range []string{"", "   \n\t"} {
		got := ScoreAnswer("Tell me about your experience with TypeScript.", answer, "TypeScript engineer", domain.PersonalityDirect)

		assert.Equal(t, 0.0, got.Score)
		assert.Equal(t, 0, got.WordCount)
		assert.Equal(t, domain.AnswerBreakdown{}, got.Breakdown)
		assert.Equal(t, "🔴 Off-topic (0/10). Your answer doesn't directly address the question. Refocus and answer what was asked.", got.Feedback)
	}
}

func TestScoreAnswer_SpecificityIsCapped(t *testing.T) {
	got := ScoreAnswer("", "implemented built designed created developed", "", domain.PersonalitySupportive)

	assert.Equal(t, 2.0, got.Breakdown.Specificity)
	assert.Equal(t, 2.0, got.Breakdown.Relevance) // no question keywords to miss
	assert.Equal(t, 4.0, got.Score)
	assert.True(t, strings.HasPrefix(got.Feedback, "○ This is a start (4/10)."))
}

func TestScoreAnswer_SpecificityMatchesPhrases(t *testing.T) {
	got := ScoreAnswer("", "For instance, tools such as Go. Specifically, an Example.", "", domain.PersonalitySupportive)
	assert.Equal(t, 2.0, got.Breakdown.Specificity)
}

func TestScoreAnswer_DepthIsCapped(t *testing.T) {
	got := ScoreAnswer("What went wrong?", repeatWords("because", 6), "", domain.PersonalityDirect)

	assert.Equal(t, 2.0, got.Breakdown.Depth)
	assert.Equal(t, 0.0, got.Breakdown.Relevance)
	assert.Equal(t, 2.0, got.Score)
	assert.True(t, strings.HasPrefix(got.Feedback, "🔴 Off-topic (2/10)."))
}

func TestScoreAnswer_JobAlignment(t *testing.T) {
	t.Run("Should count answer words found in the job keywords", func(t *testing.T) {
		got := ScoreAnswer("", "kubernetes terraform kubernetes", "Kubernetes, Terraform; observability.", domain.PersonalityDirect)

		assert.InDelta(t, 0.9, got.Breakdown.Alignment, 1e-9)
		assert.Equal(t, 2.9, got.Score)
	})

	t.Run("Should ignore alignment without a job spec", func(t *testing.T) {
		got := ScoreAnswer("", "kubernetes terraform kubernetes", "", domain.PersonalityDirect)
		assert.Equal(t, 0.0, got.Breakdown.Alignment)
	})

	t.Run("Should cap alignment", func(t *testing.T) {
		got := ScoreAnswer("", repeatWords("kubernetes", 10), "kubernetes", domain.PersonalityDirect)
		assert.Equal(t, 2.0, got.Breakdown.Alignment)
	})
}

func TestScoreAnswer_QuestionRelevanceBands(t *testing.T) {
	question := "Explain your testing strategy and deployment pipeline"

	assert.Equal(t, 1.0, ScoreAnswer(question, "testing pipeline", "", domain.PersonalityDirect).Breakdown.Relevance)
	assert.Equal(t, 2.0, ScoreAnswer(question, "testing pipeline deployment", "", domain.PersonalityDirect).Breakdown.Relevance)
	assert.Equal(t, 0.0, ScoreAnswer(question, "testing", "", domain.PersonalityDirect).Breakdown.Relevance)
}

func TestScoreAnswer_LengthBands(t *testing.T) {
	cases := []struct {
		words int
		want  float64
	}{
		{30, 0},
		{31, 0.5},
		{80, 0.5},
		{81, 1.5},
		{150, 1.5},
		{151, 2},
	}
	for _, tc := range cases {
		got := ScoreAnswer("", repeatWords("word", tc.words), "", domain.PersonalityDirect)
		assert.Equal(t, tc.want, got.Breakdown.Length, "words=%d", tc.words)
		assert.Equal(t, tc.words, got.WordCount)
	}
}

func TestScoreAnswer_LengthNeverDecreasesWithMoreWords(t *testing.T) {
	prev := -1.0
	for n := 20; n <= 200; n++ {
		got := ScoreAnswer("", repeatWords("word", n), "", domain.PersonalityDirect).Breakdown.Length
		assert.GreaterOrEqual(t, got, prev, "words=%d", n)
		prev = got
	}
}

func TestScoreAnswer_ScoreIsBoundedWithOneDecimal(t *testing.T) {
	answer := repeatWords("because implemented kubernetes challenge designed", 40)
	got := ScoreAnswer("Describe kubernetes challenge", answer, "kubernetes challenge", domain.PersonalityDirect)

	assert.LessOrEqual(t, got.Score, 10.0)
	assert.GreaterOrEqual(t, got.Score, 0.0)
	assert.InDelta(t, math.Round(got.Score*10), got.Score*10, 1e-9)
	assert.Equal(t, 10.0, got.Score)
	assert.True(t, strings.HasPrefix(got.Feedback, "✅ Strong answer (10/10)."))
}
