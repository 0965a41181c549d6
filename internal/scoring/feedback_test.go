package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"interview-coach-backend/internal/domain"
)

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "0", FormatScore(0))
	assert.Equal(t, "7.5", FormatScore(7.5))
	assert.Equal(t, "10", FormatScore(10))
}

func TestAnswerFeedback_Bands(t *testing.T) {
	cases := []struct {
		score  float64
		mode   domain.PersonalityMode
		prefix string
	}{
		{8, domain.PersonalityDirect, "✅ Strong answer (8/10)."},
		{7.5, domain.PersonalityDirect, "⚠️ Good (7.5/10), but could be stronger."},
		{6.5, domain.PersonalityDirect, "⚠️ Good (6.5/10)"},
		{6.4, domain.PersonalityDirect, "❌ Needs work (6.4/10)."},
		{2.5, domain.PersonalityDirect, "🔴 Weak response (2.5/10)."},
		{2.4, domain.PersonalityDirect, "🔴 Off-topic (2.4/10)."},
		{9.1, domain.PersonalitySupportive, "✅ Excellent answer (9.1/10)!"},
		{7, domain.PersonalitySupportive, "✓ Good foundation (7/10)!"},
		{5, domain.PersonalitySupportive, "○ You've got the right idea (5/10)."},
		{3, domain.PersonalitySupportive, "○ This is a start (3/10)."},
		{0, domain.PersonalitySupportive, "○ I see you're thinking (0/10)."},
	}
	for _, tc := range cases {
		got := AnswerFeedback(tc.score, tc.mode)
		assert.True(t, strings.HasPrefix(got, tc.prefix), "score=%v mode=%s got=%q", tc.score, tc.mode, got)
	}
}

func TestCVFeedback_BandsRequireBothThresholds(t *testing.T) {
	assert.True(t, strings.HasPrefix(CVFeedback(8, 80, domain.PersonalitySupportive), "✅ Excellent CV! (8/10, 80% job alignment)."))
	assert.True(t, strings.HasPrefix(CVFeedback(8, 79, domain.PersonalityDirect), "⚠️ Your CV is solid (8/10, 79% alignment), but there are gaps."))
	assert.True(t, strings.HasPrefix(CVFeedback(5, 90, domain.PersonalityDirect), "❌ Your CV needs improvement (5/10, 90% alignment)."))
	assert.True(t, strings.HasPrefix(CVFeedback(3, 90, domain.PersonalityDirect), "🔴 Your CV is not a good fit (3/10, 90% alignment)."))
}

func TestInterviewFeedback_Bands(t *testing.T) {
	assert.Equal(t, "✅ Outstanding performance. You're well-prepared for this role.", InterviewFeedback(80, domain.PersonalityDirect))
	assert.Equal(t, "⚠️ Decent effort, but you need to dig deeper. More specific examples required.", InterviewFeedback(79, domain.PersonalityDirect))
	assert.Equal(t, "❌ Weak responses. Your preparation is insufficient for this role. Study harder.", InterviewFeedback(59, domain.PersonalityDirect))
	assert.Equal(t, "✓ Good potential match! Keep practicing and building confidence.", InterviewFeedback(60, domain.PersonalitySupportive))
}

func TestFeedback_UnknownModeUsesSupportiveWording(t *testing.T) {
	assert.Equal(t, InterviewFeedback(90, domain.PersonalitySupportive), InterviewFeedback(90, domain.PersonalityMode("cheerful")))
}
