package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/thoughtstream/thoughtstream-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Per-IP token bucket: 2 req/s sustained, burst 20. Idle limiters are evicted
// so the map does not grow with every client ever seen.
const (
	requestsPerSecond = 2
	requestBurst      = 20
	limiterTTL        = 30 * time.Minute
	cleanupInterval   = 5 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	limiterEntries   = make(map[string]*limiterEntry)
	limiterEntriesMu sync.Mutex
	limiterCleanup   bool
)

func getLimiter(ip string) *rate.Limiter {
	limiterEntriesMu.Lock()
	defer limiterEntriesMu.Unlock()
	startCleanupOnce()

	e, ok := limiterEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		}
		limiterEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startCleanupOnce() {
	if limiterCleanup {
		return
	}
	limiterCleanup = true
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			limiterEntriesMu.Lock()
			now := time.Now()
			for k, e := range limiterEntries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(limiterEntries, k)
				}
			}
			limiterEntriesMu.Unlock()
		}
	}()
}

// RateLimit rejects clients exceeding the per-IP budget with 429.
func RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.FromRequest(r)
		if !getLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
