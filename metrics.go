package portfolio

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "portfolio"

// Metrics holds the Prometheus collectors for the proxy and feed routes.
type Metrics struct {
	ProxyForwards *prometheus.CounterVec
	ProxyDuration *prometheus.HistogramVec
	RateLimited   *prometheus.CounterVec
	FeedRenders   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProxyForwards: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "proxy",
			Name:      "forwards_total",
			Help:      "Total number of proxied backend calls by outcome.",
		}, []string{"route", "outcome"}), // outcome: relayed, failed
		ProxyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "proxy",
			Name:      "forward_duration_seconds",
			Help:      "Latency of proxied backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "proxy",
			Name:      "rate_limited_total",
			Help:      "Total number of proxy requests rejected by the per-IP limiter.",
		}, []string{"route"}),
		FeedRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "feed",
			Name:      "renders_total",
			Help:      "Total number of feed and sitemap renders by outcome.",
		}, []string{"feed", "outcome"}), // outcome: ok, static, error
	}
}

func (a *App) metricsMiddleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: a.registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.registry,
	})
}
