package middlewares

import (
	"math"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/geocoder89/eventmanager/internal/apperr"
)

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// idleTTL are dropped on the next sweep.
type RateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	clients map[string]*client
	now     func() time.Time

	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (rl *RateLimiter) reserve(key string) (ok bool, retryAfter time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.idleTTL {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > rl.idleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	cl, found := rl.clients[key]
	if !found {
		cl = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	if cl.limiter.AllowN(now, 1) {
		return true, 0
	}

	r := cl.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// Middleware enforces the limit for the key derived by keyFn.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		ok, retryAfter := rl.reserve(key)
		if !ok {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abortWith(c, apperr.WithDetail(apperr.KindThrottled,
				"Request was throttled. Expected available in "+strconv.Itoa(secs)+" seconds."))
			return
		}

		c.Next()
	}
}

// KeyByIP is for unauthenticated endpoints.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user so NATed clients do not share a bucket.
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
