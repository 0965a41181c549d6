package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"interview-coach-backend/internal/domain"
)

func TestAnalyzeCV_EmptyCVAgainstTechHeavyJob(t *testing.T) {
	got := AnalyzeCV("", "React TypeScript AWS required", domain.PersonalitySupportive)

	assert.Equal(t, 0, got.Alignment)
	assert.Equal(t, 5, got.OverallStrength)
	assert.Empty(t, got.Strengths)
	assert.Subset(t, got.Weaknesses, []string{
		"Limited work experience mentioned",
		"Lacks quantified metrics and impact",
		"Low tech alignment (0%) - missing key skills",
		"No portfolio or projects mentioned",
	})
	assert.Contains(t, got.Weaknesses, "Limited technical skills listed")
	assert.Equal(t, []string{"react", "typescript"}, got.RequiredTechnologies)
	assert.Empty(t, got.MatchedTechnologies)
	assert.Equal(t, []string{"react", "typescript"}, got.MissingTechnologies)
	assert.Equal(t, domain.PersonalitySupportive, got.Personality)
	assert.Equal(t, "○ Let's strengthen this together! (5/10, 0% alignment). Add more details about your work, projects, and the impact you've had. You have more to offer than you think!", got.Feedback)
}

func TestAnalyzeCV_NoRequiredTechnologiesIsNeutral(t *testing.T) {
	got := AnalyzeCV("Python developer", "Friendly team player", domain.PersonalityDirect)

	assert.Equal(t, 50, got.Alignment)
	assert.Equal(t, 5, got.OverallStrength)
	assert.Contains(t, got.Weaknesses, "Low tech alignment (50%) - missing key skills")
	assert.Equal(t, "❌ Your CV needs improvement (5/10, 50% alignment). You're missing relevant experience. Consider building experience in key areas or tailoring your CV better.", got.Feedback)
}

func TestAnalyzeCV_StrongCV(t *testing.T) {
	cv := "Senior engineer with 8 years experience. Built and deployed React and TypeScript services on Docker and Kubernetes. " +
		"Improved performance by 40%. Bachelor degree in computer science. Github portfolio with many projects including " +
		"python tooling, graphql gateways, terraform modules, monitoring dashboards, message queues, caching layers."
	job := "We need React, TypeScript, Docker and Kubernetes experience."

	got := AnalyzeCV(cv, job, domain.PersonalityDirect)

	assert.Equal(t, 100, got.Alignment)
	assert.Equal(t, 10, got.OverallStrength)
	assert.Equal(t, []string{
		"Clear professional experience",
		"Results-oriented with quantified achievements",
		"Strong tech alignment (100%)",
		"Demonstrates portfolio/projects",
		"Diverse skill set",
	}, got.Strengths)
	assert.Empty(t, got.Weaknesses)
	assert.ElementsMatch(t, []string{"react", "typescript", "docker", "kubernetes"}, got.MatchedTechnologies)
	assert.Empty(t, got.MissingTechnologies)
	assert.Equal(t, "✅ Your CV is strong (10/10, 100% job alignment). Well-positioned for this role.", got.Feedback)
}

func TestAnalyzeCV_AlignmentIsClamped(t *testing.T) {
	// both "java" and "javascript" overlap the single required technology
	got := AnalyzeCV("java javascript", "javascript developer", domain.PersonalityDirect)
	assert.Equal(t, 100, got.Alignment)
}

func TestAnalyzeCV_StrengthNeverExceedsTen(t *testing.T) {
	got := AnalyzeCV("experience bachelor project improved react", "react", domain.PersonalityDirect)
	assert.LessOrEqual(t, got.OverallStrength, 10)
	assert.GreaterOrEqual(t, got.OverallStrength, 5)
}
