// Package backend is the HTTP client for the external content and analytics
// backend. It is the only code in the site that talks to the backend: the
// proxy routes forward through it and the feed, sitemap and content pages
// read through it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout bounds every outbound call unless overridden.
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 4 << 20 // 4MB
	tracerName      = "github.com/eringen/portfolio/backend"
)

var (
	// ErrNotConfigured is returned by every call on a Client without a base URL.
	ErrNotConfigured = errors.New("backend not configured")
	// ErrNotFound is returned when the backend answers 404 on a read.
	ErrNotFound = errors.New("backend: not found")
)

// StatusError reports a non-2xx reply on a read endpoint.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: GET %s returned HTTP %d", e.Path, e.Code)
}

// Client calls the backend at a fixed base URL. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for baseURL. An empty baseURL yields a Client whose
// calls all fail with ErrNotConfigured without doing any I/O.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has a base URL.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections closes idle keep-alive connections to the backend.
func (c *Client) CloseIdleConnections() {
	if c != nil {
		c.http.CloseIdleConnections()
	}
}

// Response is a backend reply relayed as-is.
type Response struct {
	Status int
	Body   []byte
}

// Forward POSTs body as JSON to subPath with the given outbound headers and
// returns whatever the backend replied. Non-2xx statuses are not errors here;
// the caller relays them. There is no retry.
func (c *Client) Forward(ctx context.Context, subPath string, body []byte, header http.Header) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := c.tracer.Start(ctx, "backend.forward", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.path", subPath)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+subPath, bytes.NewReader(body))
	if err != nil {
		return nil, fail(span, fmt.Errorf("build forward request: %w", err))
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(span, fmt.Errorf("forward %s: %w", subPath, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fail(span, fmt.Errorf("read forward reply: %w", err))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// PostQuery filters GET /blog.
type PostQuery struct {
	Page      int
	Limit     int
	Published *bool
}

// ProjectQuery filters GET /projects.
type ProjectQuery struct {
	Page         int
	Limit        int
	Featured     *bool
	IsCustomCode *bool
}

// ServiceQuery filters GET /services.
type ServiceQuery struct {
	Page   int
	Limit  int
	Active *bool
}

// ListPosts returns a page of posts in the order the backend returns them.
func (c *Client) ListPosts(ctx context.Context, q PostQuery) (PostList, error) {
	v := pageValues(q.Page, q.Limit)
	setBool(v, "published", q.Published)
	var env envelope[PostList]
	if err := c.getJSON(ctx, "/blog", v, &env); err != nil {
		return PostList{}, err
	}
	return env.Data, nil
}

// GetPost returns a single post by slug. It does not filter on Published;
// callers decide what an unpublished post means for them.
func (c *Client) GetPost(ctx context.Context, slug string) (Post, error) {
	var env envelope[postData]
	if err := c.getJSON(ctx, "/blog/"+url.PathEscape(slug), nil, &env); err != nil {
		return Post{}, err
	}
	if env.Data.Post == nil {
		return Post{}, ErrNotFound
	}
	return *env.Data.Post, nil
}

// ListProjects returns a page of projects.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (ProjectList, error) {
	v := pageValues(q.Page, q.Limit)
	setBool(v, "featured", q.Featured)
	setBool(v, "isCustomCode", q.IsCustomCode)
	var env envelope[ProjectList]
	if err := c.getJSON(ctx, "/projects", v, &env); err != nil {
		return ProjectList{}, err
	}
	return env.Data, nil
}

// ListServices returns a page of services.
func (c *Client) ListServices(ctx context.Context, q ServiceQuery) (ServiceList, error) {
	v := pageValues(q.Page, q.Limit)
	setBool(v, "active", q.Active)
	var env envelope[ServiceList]
	if err := c.getJSON(ctx, "/services", v, &env); err != nil {
		return ServiceList{}, err
	}
	return env.Data, nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, span := c.tracer.Start(ctx, "backend.get", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.path", path)))
	defer span.End()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(span, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(span, fmt.Errorf("get %s: %w", path, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fail(span, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fail(span, &StatusError{Code: resp.StatusCode, Path: path})
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(dst); err != nil {
		return fail(span, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func pageValues(page, limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}

func setBool(v url.Values, key string, b *bool) {
	if b != nil {
		v.Set(key, strconv.FormatBool(*b))
	}
}

// Bool returns a pointer to b, for query filters.
func Bool(b bool) *bool {
	return &b
}
