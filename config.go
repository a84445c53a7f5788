package portfolio

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/eringen/portfolio/backend"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "Portfolio")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Feed and manifest description
	Tagline     string `env:"SITE_TAGLINE"`     // Second line of the OG image
	Author      string `env:"SITE_AUTHOR"`
	AuthorEmail string `env:"SITE_AUTHOR_EMAIL"`

	Addr     string `env:"ADDR"`      // Listen address (default ":3000")
	Mode     Mode   `env:"APP_ENV"`   // development or production (default production)
	LogLevel string `env:"LOG_LEVEL"` // debug, info, warn, error (default info)

	BackendURL     string        `env:"BACKEND_URL"`     // Primary backend base URL
	APIURL         string        `env:"API_URL"`         // Fallback backend base URL
	PublicAPIURL   string        `env:"PUBLIC_API_URL"`  // Client-facing API base (default: resolved backend)
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT"` // Outbound timeout (default 10s)

	ProxyRatePerMin int `env:"PROXY_RATE_PER_MIN"` // Per-IP proxy budget (default 60, negative disables)
	ProxyRateBurst  int `env:"PROXY_RATE_BURST"`   // Per-IP burst (default 10)
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load()

	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("portfolio: parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.BackendTimeout == 0 {
		c.BackendTimeout = backend.DefaultTimeout
	}
	if c.ProxyRatePerMin == 0 {
		c.ProxyRatePerMin = 60
	}
	if c.ProxyRateBurst == 0 {
		c.ProxyRateBurst = 10
	}
	if c.PublicAPIURL == "" {
		c.PublicAPIURL, _ = c.ResolvedBackendURL()
	}
}

// BackendVars returns the raw backend URL variables.
func (c SiteConfig) BackendVars() BackendVars {
	return BackendVars{Primary: c.BackendURL, Fallback: c.APIURL}
}

// ResolvedBackendURL applies ResolveBackendURL to the config.
func (c SiteConfig) ResolvedBackendURL() (string, bool) {
	return ResolveBackendURL(c.BackendVars())
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the built-in views. Nil fields keep the default.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = a.Views.merge(v)
	}
}

// WithHTTPClient sets the http.Client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.backendOpts = append(a.backendOpts, backend.WithHTTPClient(hc))
	}
}
