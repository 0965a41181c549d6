package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/pkg/security"
)

const (
	BotScoreKey     = "BotScore"
	BotSuspectedKey = "BotSuspected"
)

// BlockObviousBotsMiddleware refuses clients whose user agent names a crawler or scanner.
func BlockObviousBotsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ua := c.GetHeader("User-Agent")
		if !security.IsBlockedUserAgent(ua) {
			c.Next()
			return
		}

		if logger := security.DefaultLogger(); logger != nil {
			logger.LogBotDetection(c.Request.Context(), true, c.ClientIP(), ua,
				c.GetString(RequestIDKey), c.Request.URL.Path,
				security.BotDetectionResult{Score: 100, Reasons: []string{"blocked user agent"}})
		}
		response.Error(c, http.StatusForbidden, "Automated access is not permitted", nil)
		c.Abort()
	}
}

// BotDetectionMiddleware scores sign-in style POSTs and flags suspicious ones
// in the context. Flagged requests are logged, not rejected.
func BotDetectionMiddleware(threshold int) gin.HandlerFunc {
	if threshold <= 0 {
		threshold = security.DefaultBotScoreThreshold
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ua := c.GetHeader("User-Agent")
		result := security.CalculateBotScore(ua, peekJSONEmail(c), c.Request.Header)
		suspicious := result.IsSuspicious(threshold)
		c.Set(BotScoreKey, result.Score)
		c.Set(BotSuspectedKey, suspicious)

		if suspicious {
			if logger := security.DefaultLogger(); logger != nil {
				logger.LogBotDetection(c.Request.Context(), false, c.ClientIP(), ua,
					c.GetString(RequestIDKey), c.Request.URL.Path, result)
			}
		}
		c.Next()
	}
}
