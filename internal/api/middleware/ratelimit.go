package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lzjever/mbos-wso/internal/observability"
)

// RateLimiter is a per-client-address sliding window. Entries expire by
// time and the map is swept periodically; nothing persists across
// restarts.
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	limit   int
	stop    chan struct{}
	stopped sync.Once
}

func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		window: window,
		limit:  limit,
		stop:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Close stops the background sweeper.
func (rl *RateLimiter) Close() {
	rl.stopped.Do(func() { close(rl.stop) })
}

// Allow records a hit for the client and reports whether it is within
// the window limit.
func (rl *RateLimiter) Allow(client string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	recent := rl.hits[client][:0]
	for _, t := range rl.hits[client] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= rl.limit {
		rl.hits[client] = recent
		return false
	}
	rl.hits[client] = append(recent, now)
	return true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-rl.window)
			rl.mu.Lock()
			for client, hits := range rl.hits {
				if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
					delete(rl.hits, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimit rejects clients exceeding the window limit with 429.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				client = r.RemoteAddr
			}
			if !rl.Allow(client, time.Now()) {
				observability.RateLimitedTotal.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"code":    "WSO_TOO_MANY_REQUESTS",
					"message": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
