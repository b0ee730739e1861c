package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumescreen/internal/errors"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key (API key or IP)
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	rejects int64
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
	logger  *errors.Logger
}

// RateLimitStats is the /stats view of the limiter
type RateLimitStats struct {
	Enabled       bool    `json:"enabled"`
	ActiveClients int     `json:"activeClients"`
	RatePerSecond float64 `json:"ratePerSecond"`
	BurstCapacity int     `json:"burstCapacity"`
	RejectedTotal int64   `json:"rejectedTotal"`
}

// NewRateLimiter allows requests per window for each client, with bursts of
// up to burst requests. A zero window means one minute.
func NewRateLimiter(requests int, window time.Duration, burst int, logger *errors.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		now:     time.Now,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go rl.cleanupLoop(limiterCleanupInterval)
	return rl
}

// Allow takes a token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = rl.now()
	rl.mu.Unlock()

	if c.limiter.Allow() {
		return true
	}

	rl.mu.Lock()
	rl.rejects++
	rl.mu.Unlock()
	return false
}

// Stats reports the limiter state
func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return RateLimitStats{
		Enabled:       true,
		ActiveClients: len(rl.clients),
		RatePerSecond: float64(rl.rate),
		BurstCapacity: rl.burst,
		RejectedTotal: rl.rejects,
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(interval)
		case <-rl.done:
			return
		}
	}
}

// evictIdle forgets clients not seen for longer than idle
func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
	rl.logger.Debug("Rate limiter cleanup completed", "remaining_clients", len(rl.clients))
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	if rl == nil {
		return
	}
	rl.stop.Do(func() { close(rl.done) })
}

// rateLimitMiddleware rejects requests over the client's budget with 429 and
// counts each rejection per route
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := rateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" {
			next(w, r)
			return
		}

		if !s.RateLimiter.Allow(key) {
			s.Logger.Info("Rate limit exceeded",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r))
			s.Services.Telemetry.Metrics().RecordRateLimitHit(r.Context(), r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeErrorResponse(w, "Rate limit exceeded", "", "Too many requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}

// rateLimitKey prefers the API key and falls back to the client IP
func rateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + clientIP(r)
	}
	return ""
}

// requestAPIKey reads X-API-Key or an Authorization bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// clientIP extracts the client address, honoring proxy headers
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for ip := range strings.SplitSeq(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
