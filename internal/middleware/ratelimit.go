package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/ratelimit"
	"github.com/rajac/admission-portal/pkg/response"
)

// KeyFunc picks the identifier a request is limited under.
type KeyFunc func(c *gin.Context) string

// ByClient limits per browser, falling back to the remote address.
func ByClient(c *gin.Context) string {
	if req := SessionFrom(c); req != nil && req.ClientID != "" {
		return req.ClientID
	}
	return c.ClientIP()
}

// ByIP limits per remote address.
func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit rejects requests over the limiter's rule with RATE_LIMITED.
// Limiter outages let the request through.
func RateLimit(limiter ratelimit.Limiter, key KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), key(c))
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("rule", limiter.Rule().Name), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Rule().Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retry := time.Until(decision.ResetAt)
			if retry < time.Second {
				retry = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "Too many attempts. Please try again later."))
			c.Abort()
			return
		}
		c.Next()
	}
}
