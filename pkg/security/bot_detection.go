package security

import (
	"regexp"
	"strings"
)

// DefaultBotScoreThreshold flags a request whose score is strictly above it.
const DefaultBotScoreThreshold = 50

var (
	botUserAgentTokens = []string{
		"bot", "crawler", "spider", "scraper", "curl", "wget", "python", "java",
		"node", "go-http-client", "axios", "http", "request", "selenium", "phantom", "headless",
	}

	suspiciousEmailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^test`),
		regexp.MustCompile(`^\d+@`),
		regexp.MustCompile(`^admin`),
		regexp.MustCompile(`^root`),
		regexp.MustCompile(`^demo`),
		regexp.MustCompile(`faker`),
		regexp.MustCompile(`placeholder`),
		regexp.MustCompile(`example@example`),
		regexp.MustCompile(`test@test`),
	}

	headlessTokens = []string{"headless", "headlesschrome", "chrome-lighthouse", "phantomjs"}

	// Always refused regardless of score.
	blockedUserAgentTokens = []string{"bot", "crawler", "spider", "scraper", "scan", "nmap", "nessus", "masscan"}

	expectedHeaders = []string{"Accept-Language", "Accept-Encoding", "Referer"}
)

type BotDetectionResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// HeaderGetter is satisfied by http.Header.
type HeaderGetter interface {
	Get(key string) string
}

// CalculateBotScore rates how bot-like a client looks on a 0-100 scale.
// email may be empty for requests that carry none.
func CalculateBotScore(userAgent, email string, headers HeaderGetter) BotDetectionResult {
	result := BotDetectionResult{Reasons: make([]string, 0)}
	ua := strings.ToLower(userAgent)

	if len(ua) < 5 {
		result.Score += 20
		result.Reasons = append(result.Reasons, "missing or short user agent")
	}

	for _, tok := range botUserAgentTokens {
		if strings.Contains(ua, tok) {
			result.Score += 25
			result.Reasons = append(result.Reasons, "bot user agent: "+tok)
			break
		}
	}

	if email != "" {
		lower := strings.ToLower(email)
		for _, re := range suspiciousEmailPatterns {
			if re.MatchString(lower) {
				result.Score += 20
				result.Reasons = append(result.Reasons, "suspicious email pattern")
				break
			}
		}
	}

	if headers != nil {
		for _, h := range expectedHeaders {
			if headers.Get(h) == "" {
				result.Score += 10
				result.Reasons = append(result.Reasons, "missing header: "+strings.ToLower(h))
			}
		}
	}

	if strings.Contains(ua, "vpn") || strings.Contains(ua, "proxy") {
		result.Score += 15
		result.Reasons = append(result.Reasons, "vpn or proxy user agent")
	}

	for _, tok := range headlessTokens {
		if strings.Contains(ua, tok) {
			result.Score += 30
			result.Reasons = append(result.Reasons, "headless browser")
			break
		}
	}

	if result.Score > 100 {
		result.Score = 100
	}
	return result
}

// IsSuspicious reports whether the score crosses threshold.
func (r BotDetectionResult) IsSuspicious(threshold int) bool {
	return r.Score > threshold
}

// IsBlockedUserAgent reports user agents refused on every route.
func IsBlockedUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, tok := range blockedUserAgentTokens {
		if strings.Contains(ua, tok) {
			return true
		}
	}
	return false
}
