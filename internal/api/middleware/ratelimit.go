package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/abbiehooper/PolicyChatbot/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimitedResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

// RateLimitMiddleware gates a route through the limiter. Applied only to the
// generation call path; everything else stays ungated.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := resolveClientID(c)

		decision := limiter.Admit(clientID)
		if !decision.Allowed {
			logger.Warn("Request rate limited",
				zap.String("client_id", clientID),
				zap.Int("retry_after_seconds", decision.RetryAfterSeconds),
			)
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
				Error:             "Too many requests. Please try again later.",
				RetryAfterSeconds: decision.RetryAfterSeconds,
			})
			return
		}

		c.Next()
	}
}

// resolveClientID prefers the first X-Forwarded-For value, then the peer
// address. Callers with neither all share the single "unknown" bucket.
func resolveClientID(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}
	if c.Request.RemoteAddr != "" {
		return c.Request.RemoteAddr
	}

	return "unknown"
}
