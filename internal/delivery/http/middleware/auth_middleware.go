package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/auth"
	"interview-coach-backend/pkg/security"
)

const authCookieName = "auth_token"

// bearerToken reads the token from the Authorization header, then the auth cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// setUser exposes the identity both to gin handlers and to the request context
// that usecases receive.
func setUser(c *gin.Context, claims *auth.Claims) {
	c.Set(string(domain.KeyUserID), claims.UserID)
	c.Set(string(domain.KeyUserEmail), claims.Email)
	c.Request = c.Request.WithContext(domain.WithUser(c.Request.Context(), claims.UserID, claims.Email))
}

func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			if logger := security.DefaultLogger(); logger != nil {
				logger.Log(c.Request.Context(), security.SecurityEvent{
					Event:     security.EventUnauthorizedAccess,
					IP:        c.ClientIP(),
					UserAgent: c.GetHeader("User-Agent"),
					RequestID: c.GetString(RequestIDKey),
					Details:   map[string]interface{}{"path": c.FullPath()},
				})
			}
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is present
// and lets anonymous requests through unchanged.
func OptionalAuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := tokens.Validate(tokenString); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}
