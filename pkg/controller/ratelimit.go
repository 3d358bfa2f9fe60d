package controller

import (
	"betblocker/pkg/metrics"
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitOptions configure WithRateLimit.
type RateLimitOptions struct {
	// RPS is the sustained number of requests per second per client IP.
	RPS float64
	// Burst is the bucket size per client IP.
	Burst int
	// TTL is how long an idle client bucket is kept.
	TTL time.Duration
}

type limiterEntry struct {
	lim  *rate.Limiter
	last time.Time
}

// WithRateLimit returns a middleware keeping one token bucket per client IP,
// keyed on RemoteIP so forwarded headers cannot mint fresh buckets. Idle
// buckets are evicted until ctx is done. Rejected requests get 429.
func WithRateLimit(ctx context.Context, opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*limiterEntry)
	)

	go func() {
		ticker := time.NewTicker(opts.TTL / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				cut := now.Add(-opts.TTL)
				mu.Lock()
				for ip, e := range clients {
					if e.last.Before(cut) {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := RemoteIP(r)

			mu.Lock()
			e, ok := clients[ip]
			if !ok {
				e = &limiterEntry{lim: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst)}
				clients[ip] = e
			}
			e.last = time.Now()
			allowed := e.lim.Allow()
			mu.Unlock()

			if !allowed {
				metrics.RateLimitRejectedTotal.Inc()
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests","code":"RATE_LIMITED"}`))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
