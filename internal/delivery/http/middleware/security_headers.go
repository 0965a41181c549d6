package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	baseCSP        = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'; base-uri 'self'; form-action 'self';"
	productionCSP  = baseCSP + " connect-src 'self'; script-src 'self';"
	developmentCSP = baseCSP + " connect-src 'self' http://localhost:* http://127.0.0.1:* ws:; script-src 'self' 'unsafe-inline' 'unsafe-eval';"
	// The swagger UI loads its bundle inline.
	docsCSP = baseCSP + " connect-src 'self'; script-src 'self' 'unsafe-inline';"
)

// SecurityHeadersMiddleware adds the baseline security headers and a CSP that is
// strict in production and allows local dev servers otherwise.
func SecurityHeadersMiddleware(isProduction bool) gin.HandlerFunc {
	csp := developmentCSP
	if isProduction {
		csp = productionCSP
	}

	return func(c *gin.Context) {
		if isProduction {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

		if isSwaggerPath(c.Request.URL.Path) {
			c.Header("Content-Security-Policy", docsCSP)
		} else {
			c.Header("Content-Security-Policy", csp)
		}

		// Authenticated responses carry personal scores
		if c.GetHeader("Authorization") != "" {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}

		c.Next()
	}
}

func isSwaggerPath(path string) bool {
	return strings.HasPrefix(path, "/v1/swagger/")
}
