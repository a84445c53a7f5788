package portfolio

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const visitorIdle = 10 * time.Minute

// ProxyLimiter rate-limits proxy calls per client IP with a token bucket.
type ProxyLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewProxyLimiter allows perMinute requests per IP with the given burst.
// A negative perMinute disables limiting.
func NewProxyLimiter(perMinute, burst int) *ProxyLimiter {
	l := &ProxyLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Inf,
		burst:    burst,
		now:      time.Now,
	}
	if perMinute >= 0 {
		l.limit = rate.Limit(float64(perMinute) / 60)
	}
	if l.burst < 1 {
		l.burst = 1
	}
	return l
}

// Allow reports whether ip may make another request now.
func (l *ProxyLimiter) Allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than visitorIdle. Caller holds mu.
func (l *ProxyLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < visitorIdle {
		return
	}
	l.lastSweep = now
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(l.visitors, ip)
		}
	}
}

// Middleware rejects over-budget requests with 429 and the proxy envelope.
// Requests are keyed on c.RealIP, so X-Forwarded-For only counts when the
// echo IPExtractor trusts the hop that sent it.
func (l *ProxyLimiter) Middleware(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.Allow(c.RealIP()) {
				return next(c)
			}
			if m != nil {
				m.RateLimited.WithLabelValues(c.Path()).Inc()
			}
			return c.JSON(http.StatusTooManyRequests, proxyFailure{Success: false, Message: "Too many requests"})
		}
	}
}
