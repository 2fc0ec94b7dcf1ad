package daemon

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter rate limits requests per client address using a token bucket.
type clientLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// newClientLimiter allows perSec requests per second per client, with a burst
// of the same size.
func newClientLimiter(perSec int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSec),
		burst:    perSec,
	}
}

func (cl *clientLimiter) limiter(key string) *rate.Limiter {
	cl.mu.RLock()
	l, ok := cl.limiters[key]
	cl.mu.RUnlock()
	if ok {
		return l
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if l, ok = cl.limiters[key]; ok {
		return l
	}
	l = rate.NewLimiter(cl.rate, cl.burst)
	cl.limiters[key] = l
	return l
}

// Allow reports whether a request from key may proceed now.
func (cl *clientLimiter) Allow(key string) bool {
	return cl.limiter(key).Allow()
}

// Wrap rejects requests over the limit with 429. The server only listens on
// loopback, so the key is the remote host without its port.
func (cl *clientLimiter) Wrap(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !cl.Allow(key) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"success": false,
				"error":   "too many requests",
			})
			return
		}
		next(w, r)
	})
}
