package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is the counting window per client IP.
	RateLimitWindow = 60 * time.Second
	// RateLimitMaxRequests is the number of requests allowed per window.
	RateLimitMaxRequests = 100
	// BlockedIPDuration is how long an abusive IP stays blocked.
	BlockedIPDuration = 1 * time.Hour

	rateLimitKeyPrefix = "ratelimit:"
	blockedIPKeyPrefix = "blocked_ip:"
)

// RateLimit returns a per-IP rate limiting middleware backed by Redis.
// When Redis is unavailable requests are allowed through (fail open).
func RateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ipAddress := clientIP(r)

			blockedKey := blockedIPKeyPrefix + ipAddress
			if blocked, err := client.Exists(ctx, blockedKey).Result(); err == nil && blocked > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded","message":"your IP has been temporarily blocked due to excessive requests"}`))
				return
			}

			rateLimitKey := rateLimitKeyPrefix + ipAddress
			count, err := client.Incr(ctx, rateLimitKey).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, rateLimitKey, RateLimitWindow)
			}

			if count > RateLimitMaxRequests {
				client.Set(ctx, blockedKey, "1", BlockedIPDuration)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"error":"rate limit exceeded","message":"too many requests, retry after %d seconds"}`, int(RateLimitWindow.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(RateLimitMaxRequests-count, 10))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
