package scoring

import (
	"fmt"
	"strconv"

	"interview-coach-backend/internal/domain"
)

// Bands are ordered from highest to lowest; the first band whose threshold is
// met wins, and the last entry of each table is the fallback.

var answerBands = []float64{8, 6.5, 5, 2.5}

var answerFeedback = map[domain.PersonalityMode][]string{
	domain.PersonalityDirect: {
		"✅ Strong answer (%s/10). Specific and relevant. Maintain this quality.",
		"⚠️ Good (%s/10), but could be stronger. Add more specific examples or metrics. Include concrete technologies or outcomes you achieved.",
		"❌ Needs work (%s/10). Your answer is too vague. Include specific examples, technologies, or measurable results. Show concrete evidence, not just concepts.",
		"🔴 Weak response (%s/10). This lacks substance and specifics. Add real examples, detailed context, or metrics to strengthen your answer.",
		"🔴 Off-topic (%s/10). Your answer doesn't directly address the question. Refocus and answer what was asked.",
	},
	domain.PersonalitySupportive: {
		"✅ Excellent answer (%s/10)! Your specific examples really demonstrate your experience. Keep that energy!",
		"✓ Good foundation (%s/10)! You're on the right track. Try adding one more concrete example or metric to make it even stronger.",
		"○ You've got the right idea (%s/10). Let's strengthen this by including specific technologies, projects, or numbers. This will really showcase your capabilities!",
		"○ This is a start (%s/10). Take a moment to think of a specific project or example you can share. More detail will help you stand out!",
		"○ I see you're thinking (%s/10). Let's refocus on the question and share a real example. You've got great experience—let it shine!",
	},
}

type cvBand struct {
	strength  int
	alignment int
}

var cvBands = []cvBand{{8, 80}, {6, 60}, {4, 40}}

var cvFeedback = map[domain.PersonalityMode][]string{
	domain.PersonalityDirect: {
		"✅ Your CV is strong (%d/10, %d%% job alignment). Well-positioned for this role.",
		"⚠️ Your CV is solid (%d/10, %d%% alignment), but there are gaps. Consider adding key technologies or achievements that align with the role.",
		"❌ Your CV needs improvement (%d/10, %d%% alignment). You're missing relevant experience. Consider building experience in key areas or tailoring your CV better.",
		"🔴 Your CV is not a good fit (%d/10, %d%% alignment). Significant gaps in alignment. Gain more relevant experience before applying to similar roles.",
	},
	domain.PersonalitySupportive: {
		"✅ Excellent CV! (%d/10, %d%% job alignment). You're a great match for this role!",
		"✓ Good CV foundation! (%d/10, %d%% alignment). With a few additions—like highlighting some of the mentioned skills or adding metrics—you'll be very competitive.",
		"○ You have potential! (%d/10, %d%% alignment). Consider adding more specific projects, skills, or achievements. Every addition brings you closer to being a strong candidate!",
		"○ Let's strengthen this together! (%d/10, %d%% alignment). Add more details about your work, projects, and the impact you've had. You have more to offer than you think!",
	},
}

var interviewBands = []int{80, 60}

var interviewFeedback = map[domain.PersonalityMode][]string{
	domain.PersonalityDirect: {
		"✅ Outstanding performance. You're well-prepared for this role.",
		"⚠️ Decent effort, but you need to dig deeper. More specific examples required.",
		"❌ Weak responses. Your preparation is insufficient for this role. Study harder.",
	},
	domain.PersonalitySupportive: {
		"✅ Excellent fit for this role! Great preparation!",
		"✓ Good potential match! Keep practicing and building confidence.",
		"○ Continue preparing and retake the test when ready. You're on the right track!",
	},
}

// table falls back to the supportive wording for unknown modes.
func table(tables map[domain.PersonalityMode][]string, mode domain.PersonalityMode) []string {
	if t, ok := tables[mode]; ok {
		return t
	}
	return tables[domain.PersonalitySupportive]
}

// FormatScore renders a score with the fewest decimals needed (0 -> "0", 7.5 -> "7.5").
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func AnswerFeedback(score float64, mode domain.PersonalityMode) string {
	t := table(answerFeedback, mode)
	band := len(answerBands)
	for i, threshold := range answerBands {
		if score >= threshold {
			band = i
			break
		}
	}
	return fmt.Sprintf(t[band], FormatScore(score))
}

func CVFeedback(strength, alignment int, mode domain.PersonalityMode) string {
	t := table(cvFeedback, mode)
	band := len(cvBands)
	for i, b := range cvBands {
		if strength >= b.strength && alignment >= b.alignment {
			band = i
			break
		}
	}
	return fmt.Sprintf(t[band], strength, alignment)
}

// InterviewFeedback summarizes a whole session from its 0-100 employability score.
func InterviewFeedback(employability int, mode domain.PersonalityMode) string {
	t := table(interviewFeedback, mode)
	band := len(interviewBands)
	for i, threshold := range interviewBands {
		if employability >= threshold {
			band = i
			break
		}
	}
	return t[band]
}
