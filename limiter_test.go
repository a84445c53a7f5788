package portfolio

import (
	"testing"
	"time"
)

func TestProxyLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewProxyLimiter(1, 2)
	ip := "203.0.113.10"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if !limiter.Allow(ip) {
		t.Fatalf("expected second request to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected third request to be blocked")
	}
}

func TestProxyLimiterRefills(t *testing.T) {
	now := time.Unix(1700000000, 0)
	limiter := NewProxyLimiter(60, 1)
	limiter.now = func() time.Time { return now }
	ip := "203.0.113.20"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected second request to be blocked")
	}

	now = now.Add(1100 * time.Millisecond)
	if !limiter.Allow(ip) {
		t.Fatalf("expected request after refill to be allowed")
	}
}

func TestProxyLimiterIsPerIP(t *testing.T) {
	limiter := NewProxyLimiter(1, 1)

	if !limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !limiter.Allow("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after burst")
	}
}

func TestProxyLimiterDisabled(t *testing.T) {
	limiter := NewProxyLimiter(-1, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("203.0.113.40") {
			t.Fatalf("request %d blocked with limiting disabled", i)
		}
	}
}

func TestProxyLimiterSweepsIdleVisitors(t *testing.T) {
	now := time.Unix(1700000000, 0)
	limiter := NewProxyLimiter(60, 1)
	limiter.now = func() time.Time { return now }

	limiter.Allow("203.0.113.50")
	now = now.Add(2 * visitorIdle)
	limiter.Allow("203.0.113.51")

	if _, ok := limiter.visitors["203.0.113.50"]; ok {
		t.Fatalf("expected idle visitor to be swept")
	}
	if len(limiter.visitors) != 1 {
		t.Fatalf("visitors = %d, want 1", len(limiter.visitors))
	}
}
