package mw

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"huts4u-backend/internal/ttlcache"
)

// limiterIdleTTL is how long an address keeps its bucket after its last
// request.
const limiterIdleTTL = 10 * time.Minute

// sweepEvery is the number of lookups between sweeps of idle buckets.
const sweepEvery = 1024

// IPRateLimiter hands out one token bucket per client address. Buckets of
// addresses that stay quiet for the idle TTL are dropped.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *ttlcache.Cache
	lookups  int
	r        rate.Limit
	b        int
}

// NewIPRateLimiter creates a new IPRateLimiter. A nil clock means the wall
// clock.
func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration, clock ttlcache.Clock) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: ttlcache.New(idle, clock),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket of ip, creating it on first use, and
// extends its idle deadline.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.lookups++
	if i.lookups%sweepEvery == 0 {
		i.limiters.DeleteExpired()
	}

	limiter := rate.NewLimiter(i.r, i.b)
	if v, ok := i.limiters.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	}
	i.limiters.Set(ip, limiter)
	return limiter
}

// Len returns the number of tracked addresses, idle ones not yet swept
// included.
func (i *IPRateLimiter) Len() int {
	return i.limiters.ItemCount()
}

// ClientIP returns the caller's address. When header is set and carries a
// valid address (the first one for X-Forwarded-For style lists), it wins over
// gin's ClientIP.
func ClientIP(c *gin.Context, header string) string {
	if header != "" {
		if v := c.GetHeader(header); v != "" {
			first := strings.TrimSpace(strings.Split(v, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
	}
	return c.ClientIP()
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b, limiterIdleTTL, nil)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(ClientIP(c, ipHeader)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
