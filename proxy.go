package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const maxProxyBody = 1 << 20 // 1MB

// proxyRoute describes one pass-through endpoint.
type proxyRoute struct {
	name    string
	subPath string
	headers []string // outbound header allowlist
	failure string
}

var (
	leadRoute = proxyRoute{
		name:    "leads_create",
		subPath: "/leads/create",
		headers: []string{"User-Agent", "X-Forwarded-For", "Referer"},
		failure: "Failed to create lead",
	}
	eventRoute = proxyRoute{
		name:    "track_event",
		subPath: "/track/event",
		headers: []string{"User-Agent", "DNT"},
		failure: "Failed to track event",
	}
	visitRoute = proxyRoute{
		name:    "track_visit",
		subPath: "/track/visit",
		headers: []string{"User-Agent", "DNT", "X-Forwarded-For", "Referer"},
		failure: "Failed to track visit",
	}
)

type proxyFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var errBackendNotJSON = errors.New("backend reply is not JSON")

// ClientIP returns the first X-Forwarded-For entry, else X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

// outboundHeaders builds the allowlisted headers for route. Missing inbound
// values are sent empty; X-Forwarded-For carries the resolved client IP.
func outboundHeaders(route proxyRoute, r *http.Request) http.Header {
	h := make(http.Header, len(route.headers))
	for _, name := range route.headers {
		switch name {
		case "X-Forwarded-For":
			h.Set(name, ClientIP(r))
		default:
			h.Set(name, r.Header.Get(name))
		}
	}
	return h
}

func (a *App) proxyHandler(route proxyRoute) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		status, body, err := a.forward(c, route)
		a.Metrics.ProxyDuration.WithLabelValues(route.name).Observe(time.Since(start).Seconds())
		if err != nil {
			a.Metrics.ProxyForwards.WithLabelValues(route.name, "failed").Inc()
			c.Logger().Errorf("proxy %s: %v", route.subPath, err)
			return c.JSON(http.StatusInternalServerError, proxyFailure{Success: false, Message: route.failure})
		}
		a.Metrics.ProxyForwards.WithLabelValues(route.name, "relayed").Inc()
		return c.JSONBlob(status, body)
	}
}

// forward validates the inbound JSON and relays it to the backend, returning
// the backend status and body untouched.
func (a *App) forward(c echo.Context, route proxyRoute) (int, []byte, error) {
	req := c.Request()
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxProxyBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return 0, nil, fmt.Errorf("decode body: %w", err)
	}

	resp, err := a.Backend.Forward(req.Context(), route.subPath, compact.Bytes(), outboundHeaders(route, req))
	if err != nil {
		return 0, nil, err
	}
	if !json.Valid(resp.Body) {
		return 0, nil, fmt.Errorf("HTTP %d: %w", resp.Status, errBackendNotJSON)
	}
	return resp.Status, resp.Body, nil
}
