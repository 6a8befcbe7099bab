/*
Package limiter provides connection rate limiting based on client IP addresses.

It uses the Token Bucket algorithm (rate.Limiter) to bound how fast each
remote address may open new connections, and runs a cleanup goroutine that
periodically removes idle limiters to keep the map from growing without bound.
*/
package limiter

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tinyirc/internal/pkg/logx"
)

// cleanupPeriod is how often idle per-IP buckets are swept from the map.
const cleanupPeriod = 3 * time.Minute

// IPRateLimiter implements a connection rate limiter keyed by client IP address.
type IPRateLimiter struct {
	// mu protects concurrent access to the limits map.
	mu sync.RWMutex

	// limits maps a client IP address to its *rate.Limiter instance.
	limits map[string]*rate.Limiter

	// r is the sustained rate, in events per second, each IP is allowed.
	r rate.Limit

	// b is the burst size (token bucket capacity) each IP is allowed.
	b int
}

// NewIPRateLimiter creates a new IPRateLimiter with the given rate and burst
// and starts the background goroutine that removes idle limiters.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanupIdle()

	return i
}

// Allow reports whether a connection from the given remote address (host:port
// or bare host) is within the per-IP rate. Each call consumes one token from
// the address's bucket.
func (i *IPRateLimiter) Allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if host == "" {
		host = "unknown_ip"
	}

	return i.getLimiter(host).Allow()
}

// getLimiter returns the limiter for the given IP, creating one on first use.
// Double-checked locking keeps creation concurrent-safe without serializing
// the common lookup path.
func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if limiter, exists = i.limits[ip]; !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}

	return limiter
}

// cleanupIdle periodically removes limiters whose buckets have refilled
// completely, meaning the IP has been quiet long enough to forget.
func (i *IPRateLimiter) cleanupIdle() {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		removed := 0
		for ip, limiter := range i.limits {
			if limiter.TokensAt(time.Now()) >= float64(limiter.Burst()) {
				delete(i.limits, ip)
				removed++
			}
		}
		remaining := len(i.limits)
		i.mu.Unlock()

		if removed > 0 {
			logx.Info("Rate limiter cleanup finished.", "removed", removed, "remaining", remaining)
		}
	}
}
