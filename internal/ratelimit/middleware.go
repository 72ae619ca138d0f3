package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/voltvend/voltvend/internal/actorctx"
)

// GinMiddleware throttles authenticated API calls per vendor. Admin
// callers and requests without an actor pass through untouched.
func GinMiddleware(limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		vendorID, ok := actorctx.VendorIDFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		result := limiter.Allow(c.Request.Context(), vendorID.String())
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
