package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

// RateLimiter guarda um token bucket por IP; buckets ociosos são varridos
// no máximo uma vez por minuto, dentro do próprio Allow.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow consome um token do bucket da chave.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	now := r.now()
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	if now.Sub(r.lastSweep) >= limiterSweepEvery {
		r.sweep(now)
	}
	r.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

func (r *RateLimiter) sweep(now time.Time) {
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(r.buckets, key)
		}
	}
	r.lastSweep = now
}

// IPRateLimit limita por IP do cliente. Depende do chi RealIP antes na cadeia,
// que já reescreve RemoteAddr a partir de X-Real-IP/X-Forwarded-For.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r.RemoteAddr)) {
				w.Header().Set("Retry-After", "1")
				render.Error(w, http.StatusTooManyRequests, "Limite de requisições excedido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
