package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const visitorIdleEviction = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter hands out one token bucket per client IP. Checkpoint hardware
// and kiosk clients each get their own budget so a chatty scanner cannot
// starve the dashboard.
type clientLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

func newClientLimiter(r rate.Limit, burst int) *clientLimiter {
	cl := &clientLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
	go cl.evictIdle()
	return cl
}

func (cl *clientLimiter) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	v, ok := cl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// evictIdle drops buckets for clients that have gone quiet, bounding the map.
func (cl *clientLimiter) evictIdle() {
	for range time.Tick(visitorIdleEviction / 2) {
		cl.mu.Lock()
		for ip, v := range cl.visitors {
			if time.Since(v.lastSeen) > visitorIdleEviction {
				delete(cl.visitors, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimiter enforces a per-client-IP request rate on the API.
func RateLimiter(r rate.Limit, burst int) gin.HandlerFunc {
	limiter := newClientLimiter(r, burst)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
