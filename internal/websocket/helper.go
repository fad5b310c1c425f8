package websocket

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter for one client IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts []time.Time
	window   time.Duration
	limit    int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	kept := rl.attempts[:0]
	for _, t := range rl.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rl.attempts = kept

	if len(rl.attempts) >= rl.limit {
		return false
	}
	rl.attempts = append(rl.attempts, time.Now())
	return true
}

func (rl *rateLimiter) idle(maxIdle time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.attempts) == 0 {
		return true
	}
	return time.Since(rl.attempts[len(rl.attempts)-1]) > maxIdle
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
