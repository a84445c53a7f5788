package tracking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/portfolio/backend"
)

func TestSessionStableWithinDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := &Session{now: func() time.Time { return now }}

	first := s.ID()
	if !strings.HasPrefix(first, "2024-03-10-") {
		t.Fatalf("ID = %q, want date prefix", first)
	}
	now = now.Add(10 * time.Hour)
	if got := s.ID(); got != first {
		t.Errorf("ID changed within the day: %q -> %q", first, got)
	}
}

func TestSessionRollsOverDaily(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	s := &Session{now: func() time.Time { return now }}

	first := s.ID()
	now = now.Add(2 * time.Minute)
	second := s.ID()
	if first == second {
		t.Fatalf("expected new ID after day change")
	}
	if !strings.HasPrefix(second, "2024-03-11-") {
		t.Errorf("ID = %q, want 2024-03-11 prefix", second)
	}
}

func TestSessionResetAndSet(t *testing.T) {
	s := NewSession()
	first := s.ID()
	s.Reset()
	if s.ID() == first {
		t.Errorf("Reset should clear the ID")
	}
	s.Set("server-issued")
	if got := s.ID(); got != "server-issued" {
		t.Errorf("ID = %q, want server-issued", got)
	}
	s.Set("")
	if got := s.ID(); got != "server-issued" {
		t.Errorf("empty Set should be ignored, got %q", got)
	}
}

func TestPageName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "home"},
		{"", "home"},
		{"/about", "about"},
		{"/blog/hello-world", "blog_hello-world"},
		{"/blog/x/", "blog_x"},
	}
	for _, tt := range tests {
		if got := PageName(tt.path); got != tt.want {
			t.Errorf("PageName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

type recorded struct {
	path string
	body map[string]any
}

func newSite(t *testing.T, reply string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		calls = append(calls, recorded{path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestTrackVisitAdoptsServerSession(t *testing.T) {
	srv, calls := newSite(t, `{"success":true,"data":{"sessionId":"srv-123"}}`)
	tr := New(srv.URL)

	if err := tr.TrackVisit(context.Background(), "home", "/", "https://ref.example"); err != nil {
		t.Fatalf("TrackVisit: %v", err)
	}
	got := calls()
	if len(got) != 1 || got[0].path != "/api/track/visit" {
		t.Fatalf("calls = %+v", got)
	}
	if got[0].body["page"] != "home" || got[0].body["referrer"] != "https://ref.example" {
		t.Errorf("body = %v", got[0].body)
	}
	if tr.Session().ID() != "srv-123" {
		t.Errorf("session = %q, want srv-123", tr.Session().ID())
	}
}

func TestTrackVisitDebounce(t *testing.T) {
	srv, calls := newSite(t, `{"success":true}`)
	now := time.Unix(1700000000, 0)
	tr := New(srv.URL)
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	_ = tr.TrackVisit(ctx, "about", "/about", "")
	_ = tr.TrackVisit(ctx, "about", "/about", "")
	if n := len(calls()); n != 1 {
		t.Fatalf("calls = %d, want 1 after duplicate visit", n)
	}
	_ = tr.TrackVisit(ctx, "blog", "/blog", "")
	if n := len(calls()); n != 2 {
		t.Fatalf("calls = %d, want 2 after new path", n)
	}
	now = now.Add(2 * time.Second)
	_ = tr.TrackVisit(ctx, "blog", "/blog", "")
	if n := len(calls()); n != 3 {
		t.Fatalf("calls = %d, want 3 after debounce window", n)
	}
}

func TestDoNotTrackSuppressesRequests(t *testing.T) {
	srv, calls := newSite(t, `{"success":true}`)
	tr := New(srv.URL, WithDoNotTrack(true))
	ctx := context.Background()

	_ = tr.TrackVisit(ctx, "home", "/", "")
	_ = tr.TrackCTAClick(ctx, "hire-me", "home", "/")
	if n := len(calls()); n != 0 {
		t.Fatalf("calls = %d, want 0 with DNT", n)
	}
}

func TestTrackEventHelpers(t *testing.T) {
	srv, calls := newSite(t, `{"success":true}`)
	tr := New(srv.URL)
	ctx := context.Background()

	_ = tr.TrackCTAClick(ctx, "hire-me", "home", "/")
	_ = tr.TrackProjectClick(ctx, "p1", "Shop", "projects", "/projects")
	_ = tr.TrackExternalLink(ctx, "https://github.com", "home", "/")

	got := calls()
	if len(got) != 3 {
		t.Fatalf("calls = %d, want 3", len(got))
	}
	wantNames := []string{"cta_click", "project_click", "external_link_click"}
	for i, c := range got {
		if c.path != "/api/track/event" {
			t.Errorf("call %d path = %q", i, c.path)
		}
		if c.body["eventName"] != wantNames[i] {
			t.Errorf("call %d eventName = %v, want %s", i, c.body["eventName"], wantNames[i])
		}
		if sid, _ := c.body["sessionId"].(string); sid == "" {
			t.Errorf("call %d missing sessionId", i)
		}
	}
	meta, _ := got[1].body["metadata"].(map[string]any)
	if meta["projectId"] != "p1" || meta["projectTitle"] != "Shop" {
		t.Errorf("project metadata = %v", meta)
	}
}

func TestSubmitLeadReturnsErrorOnFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leads/create" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Email required"}`))
	}))
	defer srv.Close()

	body, err := New(srv.URL).SubmitLead(context.Background(), backend.Lead{Name: "A"})
	if err == nil {
		t.Fatalf("expected error for HTTP 400")
	}
	if !strings.Contains(string(body), "Email required") {
		t.Errorf("body = %s", body)
	}
}

func TestDNTFromHeader(t *testing.T) {
	h := http.Header{}
	if DNTFromHeader(h) {
		t.Errorf("empty header should not be DNT")
	}
	h.Set("DNT", "1")
	if !DNTFromHeader(h) {
		t.Errorf("DNT: 1 should be detected")
	}
}
