package scoring

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	pointsPerAnswer   = 15
	longAnswerChars   = 200
	longAnswerBonus   = 20
	mediumAnswerChars = 100
	mediumAnswerBonus = 10
	pointsPerJobMatch = 2
	maxJobMatchPoints = 15
	maxEmployability  = 100
)

// AverageAnswerLength is the mean character count of answers, 0 when there are none.
func AverageAnswerLength(answers []string) float64 {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += utf8.RuneCountInString(a)
	}
	return float64(total) / float64(len(answers))
}

// EmployabilityScore rates a set of interview answers on a 0-100 scale from
// how many were given, how long they are on average and how many job spec
// keywords they reuse.
func EmployabilityScore(answers []string, jobSpec string) int {
	score := float64(len(answers) * pointsPerAnswer)

	switch avg := AverageAnswerLength(answers); {
	case avg > longAnswerChars:
		score += longAnswerBonus
	case avg > mediumAnswerChars:
		score += mediumAnswerBonus
	}

	if jobSpec != "" && len(answers) > 0 {
		keywords := toSet(longTokens(words(jobSpec)))
		matched := countIn(words(strings.Join(answers, " ")), keywords)
		score += math.Min(float64(matched*pointsPerJobMatch), maxJobMatchPoints)
	}

	return int(math.Min(math.Round(score), maxEmployability))
}

// ResponseQuality labels the average answer length for the interview summary.
func ResponseQuality(answers []string) string {
	if AverageAnswerLength(answers) > longAnswerChars {
		return "Excellent"
	}
	return "Good"
}
