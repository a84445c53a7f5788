package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eringen/portfolio/backend"
)

const (
	// DefaultEndpoint is where the site mounts the tracking proxy.
	DefaultEndpoint = "/api/track"
	// DefaultDebounce drops repeat visits to the same path within this window.
	DefaultDebounce = time.Second

	leadPath = "/api/leads/create"
)

// Tracker sends visits, events and leads to a site's proxy routes.
type Tracker struct {
	client   *backend.Client
	session  *Session
	endpoint string
	debounce time.Duration
	dnt      bool
	now      func() time.Time

	mu        sync.Mutex
	lastPath  string
	lastVisit time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithDoNotTrack suppresses every request when on.
func WithDoNotTrack(on bool) Option {
	return func(t *Tracker) { t.dnt = on }
}

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(path string) Option {
	return func(t *Tracker) { t.endpoint = strings.TrimRight(path, "/") }
}

// WithDebounce overrides DefaultDebounce. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(t *Tracker) { t.debounce = d }
}

// WithSession shares a session between trackers.
func WithSession(s *Session) Option {
	return func(t *Tracker) { t.session = s }
}

// WithBackendOptions passes options to the underlying HTTP client.
func WithBackendOptions(opts ...backend.Option) Option {
	return func(t *Tracker) {
		t.client = backend.New(t.client.BaseURL(), 0, opts...)
	}
}

// New creates a Tracker for the site at siteURL.
func New(siteURL string, opts ...Option) *Tracker {
	t := &Tracker{
		client:   backend.New(siteURL, backend.DefaultTimeout),
		session:  NewSession(),
		endpoint: DefaultEndpoint,
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session returns the tracker's session holder.
func (t *Tracker) Session() *Session {
	return t.session
}

type visitReply struct {
	Data struct {
		SessionID string `json:"sessionId"`
	} `json:"data"`
}

// TrackVisit records a page view. Repeat visits to the same path inside the
// debounce window are dropped without a request. A sessionId in the reply
// replaces the local one.
func (t *Tracker) TrackVisit(ctx context.Context, page, path, referrer string) error {
	if t.dnt || t.debounced(path) {
		return nil
	}
	body, err := t.post(ctx, t.endpoint+"/visit", backend.Visit{
		Page:      page,
		Path:      path,
		Referrer:  referrer,
		SessionID: t.session.ID(),
	})
	if err != nil {
		return err
	}
	var reply visitReply
	if json.Unmarshal(body, &reply) == nil && reply.Data.SessionID != "" {
		t.session.Set(reply.Data.SessionID)
	}
	return nil
}

func (t *Tracker) debounced(path string) bool {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.debounce > 0 && path == t.lastPath && now.Sub(t.lastVisit) < t.debounce {
		return true
	}
	t.lastPath, t.lastVisit = path, now
	return false
}

// TrackEvent records a custom event.
func (t *Tracker) TrackEvent(ctx context.Context, name, page, path string, metadata map[string]any) error {
	if t.dnt {
		return nil
	}
	_, err := t.post(ctx, t.endpoint+"/event", backend.TrackingEvent{
		EventName: name,
		Page:      page,
		Path:      path,
		Metadata:  metadata,
		SessionID: t.session.ID(),
	})
	return err
}

// TrackCTAClick records a call-to-action click.
func (t *Tracker) TrackCTAClick(ctx context.Context, cta, page, path string) error {
	return t.TrackEvent(ctx, "cta_click", page, path, map[string]any{"ctaName": cta})
}

// TrackProjectClick records a click on a project card.
func (t *Tracker) TrackProjectClick(ctx context.Context, projectID, title, page, path string) error {
	return t.TrackEvent(ctx, "project_click", page, path, map[string]any{
		"projectId":    projectID,
		"projectTitle": title,
	})
}

// TrackExternalLink records a click on an outbound link.
func (t *Tracker) TrackExternalLink(ctx context.Context, url, page, path string) error {
	return t.TrackEvent(ctx, "external_link_click", page, path, map[string]any{"url": url})
}

// SubmitLead posts a contact-form submission and returns the raw reply.
// Leads ignore Do Not Track; they are an explicit user action.
func (t *Tracker) SubmitLead(ctx context.Context, lead backend.Lead) ([]byte, error) {
	return t.post(ctx, leadPath, lead)
}

func (t *Tracker) post(ctx context.Context, path string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("tracking: encode: %w", err)
	}
	resp, err := t.client.Forward(ctx, path, body, nil)
	if err != nil {
		return nil, fmt.Errorf("tracking: %w", err)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return resp.Body, fmt.Errorf("tracking: POST %s returned HTTP %d", path, resp.Status)
	}
	return resp.Body, nil
}

// DNTFromHeader reports whether a request carries DNT: 1.
func DNTFromHeader(h http.Header) bool {
	return h.Get("DNT") == "1"
}
