package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds a map of tenants to their rate limiters.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

var limiterStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
}

// getLimiter returns the rate limiter for a given key, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		// 200 requests per minute per tenant.
		limiter = rate.NewLimiter(rate.Every(time.Minute/200), 200)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits requests per tenant, falling back to the
// client IP before tenant extraction has run.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(tenantHeader)
		if key == "" {
			key = c.ClientIP()
		}
		limiter := limiterStore.getLimiter(key)
		if !limiter.Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
