// Package portfolio is the server side of a portfolio site built with Go,
// Echo, and templ. It owns no data: leads and tracking calls are proxied to
// an external content backend, and the feed, sitemap and content pages are
// rendered from that backend at request time.
//
// Sites provide their own templ components via the ViewFuncs struct; nil
// fields fall back to the bare HTML views in package views.
package portfolio

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/portfolio/backend"
	"github.com/eringen/portfolio/views"
)

// ViewFuncs holds the templ components the handlers render. This is the
// inversion-of-control mechanism that lets a site own its markup.
type ViewFuncs struct {
	BlogList    func(site views.Site, page views.BlogPage) templ.Component
	BlogPost    func(site views.Site, post backend.Post) templ.Component
	Projects    func(site views.Site, projects []backend.Project) templ.Component
	Services    func(site views.Site, services []backend.Service) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

func defaultViews() ViewFuncs {
	return ViewFuncs{
		BlogList:    views.BlogList,
		BlogPost:    views.BlogPost,
		Projects:    views.Projects,
		Services:    views.Services,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// merge returns v with nil fields taken from o.
func (v ViewFuncs) merge(o ViewFuncs) ViewFuncs {
	if o.BlogList != nil {
		v.BlogList = o.BlogList
	}
	if o.BlogPost != nil {
		v.BlogPost = o.BlogPost
	}
	if o.Projects != nil {
		v.Projects = o.Projects
	}
	if o.Services != nil {
		v.Services = o.Services
	}
	if o.NotFound != nil {
		v.NotFound = o.NotFound
	}
	if o.ServerError != nil {
		v.ServerError = o.ServerError
	}
	return v
}

// App is the central application. It wires together the backend client,
// handlers, middleware, metrics and views.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Backend *backend.Client
	Views   ViewFuncs
	Metrics *Metrics

	registry     *prometheus.Registry
	proxyLimiter *ProxyLimiter
	customRoutes []func(*App)
	backendOpts  []backend.Option

	ogOnce sync.Once
	ogPNG  []byte
	ogErr  error
}

// New builds an App with every route registered. The returned App can be
// served with Start or mounted directly through a.Echo as an http.Handler.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(parseLogLevel(cfg.LogLevel))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Config:   cfg,
		Echo:     e,
		Views:    defaultViews(),
		registry: reg,
		Metrics:  NewMetrics(reg),
	}

	for _, opt := range opts {
		opt(a)
	}

	base, _ := cfg.ResolvedBackendURL()
	a.Backend = backend.New(base, cfg.BackendTimeout, a.backendOpts...)
	a.proxyLimiter = NewProxyLimiter(cfg.ProxyRatePerMin, cfg.ProxyRateBurst)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Start(ctx context.Context) error {
	a.warnBackend()

	errCh := make(chan error, 1)
	go func() {
		a.Echo.Logger.Infof("listening on %s", a.Config.Addr)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// warnBackend reports a missing or inconsistent backend configuration.
// Development gets a warning, production an error; neither is fatal.
func (a *App) warnBackend() {
	base, ok := a.Config.ResolvedBackendURL()
	if !ok {
		msg := "backend URL not configured: set BACKEND_URL or API_URL"
		if unsetBackendLevel(a.Config.Mode) == log.WARN {
			a.Echo.Logger.Warn(msg)
		} else {
			a.Echo.Logger.Error(msg)
		}
		return
	}
	if pub := normalizeBaseURL(a.Config.PublicAPIURL); pub != "" && pub != base {
		a.Echo.Logger.Warnf("PUBLIC_API_URL (%s) differs from the server backend URL (%s)", pub, base)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", a.metricsHandler())
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/manifest.webmanifest", a.handleManifest)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/opengraph-image", a.handleOGImage)

	e.GET("/api/placeholder", handlePlaceholder)
	e.GET("/api/placeholder/*", handlePlaceholder)

	api := e.Group("/api", a.proxyLimiter.Middleware(a.Metrics))
	api.POST("/leads/create", a.proxyHandler(leadRoute))
	api.POST("/track/event", a.proxyHandler(eventRoute))
	api.POST("/track/visit", a.proxyHandler(visitRoute))

	e.GET("/blog", a.handleBlogList)
	e.GET("/blog/:slug", a.handleBlogPost)
	e.GET("/projects", a.handleProjects)
	e.GET("/services", a.handleServices)

	e.GET("/portfolio", redirectTo("/projects"))
	e.GET("/writing", redirectTo("/blog"))
}

// Close releases idle backend connections.
func (a *App) Close() error {
	a.Backend.CloseIdleConnections()
	return nil
}

func (a *App) site() views.Site {
	return views.Site{Name: a.Config.Name, URL: a.Config.URL, APIURL: a.Config.PublicAPIURL}
}
