package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"interview-coach-backend/internal/domain"
)

// neutralAlignment is reported when the job spec names no known technology.
const neutralAlignment = 50

const (
	baseStrength = 5
	maxStrength  = 10

	strongAlignmentBonus = 80 // raw alignment above this adds a strength point
	strongAlignmentLabel = 70 // raw alignment above this is listed as a strength

	diverseSkillCount = 15
	limitedSkillCount = 5
)

var (
	technologyPattern = regexp.MustCompile(`(?i)\b(javascript|typescript|react|vue|angular|python|java|c\+\+|sql|aws|azure|docker|kubernetes)\b`)

	experiencePattern = regexp.MustCompile(`(?i)\b(experience|worked|developed|led|managed|created|built)\b`)
	educationPattern  = regexp.MustCompile(`(?i)\b(bachelor|master|phd|degree|certification|bootcamp|university|college)\b`)
	projectsPattern   = regexp.MustCompile(`(?i)\b(project|portfolio|github|deployed|shipped|launched)\b`)
	metricsPattern    = regexp.MustCompile(`(?i)\b(improved|increased|reduced|optimized|scaled|performance)\b`)
)

func technologies(keywords []string) []string {
	out := make([]string, 0)
	for _, kw := range keywords {
		if technologyPattern.MatchString(kw) {
			out = append(out, kw)
		}
	}
	return out
}

// AnalyzeCV rates a CV against a job spec: a 0-10 strength, a 0-100
// technology alignment and the strengths and weaknesses behind them.
func AnalyzeCV(cv, jobSpec string, mode domain.PersonalityMode) domain.CVAnalysis {
	required := technologies(ExtractKeywords(jobSpec, 5))
	cvSkills := ExtractKeywords(cv, 4)
	cvTechs := technologies(cvSkills)

	matched := make([]string, 0)
	for _, tech := range cvTechs {
		for _, req := range required {
			if strings.Contains(req, tech) || strings.Contains(tech, req) {
				matched = append(matched, tech)
				break
			}
		}
	}

	missing := make([]string, 0)
	for _, req := range required {
		covered := false
		for _, tech := range matched {
			if strings.Contains(req, tech) || strings.Contains(tech, req) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, req)
		}
	}

	rawAlignment := float64(neutralAlignment)
	if len(required) > 0 {
		rawAlignment = float64(len(matched)) / float64(len(required)) * 100
	}
	alignment := int(math.Round(rawAlignment))
	if alignment > 100 {
		alignment = 100
	}

	hasExperience := experiencePattern.MatchString(cv)
	hasEducation := educationPattern.MatchString(cv)
	hasProjects := projectsPattern.MatchString(cv)
	hasMetrics := metricsPattern.MatchString(cv)

	strength := baseStrength
	for _, present := range []bool{hasExperience, hasEducation, hasProjects, hasMetrics, rawAlignment > strongAlignmentBonus} {
		if present {
			strength++
		}
	}
	if strength > maxStrength {
		strength = maxStrength
	}

	strengths := make([]string, 0)
	weaknesses := make([]string, 0)

	if hasExperience {
		strengths = append(strengths, "Clear professional experience")
	} else {
		weaknesses = append(weaknesses, "Limited work experience mentioned")
	}

	if hasMetrics {
		strengths = append(strengths, "Results-oriented with quantified achievements")
	} else {
		weaknesses = append(weaknesses, "Lacks quantified metrics and impact")
	}

	if rawAlignment > strongAlignmentLabel {
		strengths = append(strengths, fmt.Sprintf("Strong tech alignment (%d%%)", alignment))
	} else {
		weaknesses = append(weaknesses, fmt.Sprintf("Low tech alignment (%d%%) - missing key skills", alignment))
	}

	if hasProjects {
		strengths = append(strengths, "Demonstrates portfolio/projects")
	} else {
		weaknesses = append(weaknesses, "No portfolio or projects mentioned")
	}

	switch {
	case len(cvSkills) > diverseSkillCount:
		strengths = append(strengths, "Diverse skill set")
	case len(cvSkills) < limitedSkillCount:
		weaknesses = append(weaknesses, "Limited technical skills listed")
	}

	return domain.CVAnalysis{
		OverallStrength:      strength,
		Alignment:            alignment,
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		Feedback:             CVFeedback(strength, alignment, mode),
		Personality:          mode,
		RequiredTechnologies: required,
		MatchedTechnologies:  matched,
		MissingTechnologies:  missing,
	}
}
