package portfolio

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/portfolio/backend"
)

func postsBackend(t *testing.T, posts []backend.Post) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		if r.URL.Path != "/blog" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"posts": posts},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), queries...)
	}
}

func makePosts(n int) []backend.Post {
	posts := make([]backend.Post, n)
	for i := range posts {
		posts[i] = backend.Post{
			Slug:      fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Excerpt:   "An <excerpt>",
			Date:      "2024-01-15T10:00:00Z",
			Published: true,
		}
	}
	return posts
}

func TestBuildSitemapCounts(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{0, 1, 25} {
		sm := buildSitemap("https://example.com", makePosts(n), now, nil)
		if got := len(sm.URLs); got != len(staticRoutes)+n {
			t.Errorf("n=%d: urls = %d, want %d", n, got, len(staticRoutes)+n)
		}
	}
}

func TestBuildSitemapStaticRoutes(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sm := buildSitemap("https://example.com/", nil, now, nil)
	want := []sitemapURL{
		{"https://example.com", "2024-06-01T00:00:00Z", "weekly", "1.0"},
		{"https://example.com/about", "2024-06-01T00:00:00Z", "monthly", "0.9"},
		{"https://example.com/projects", "2024-06-01T00:00:00Z", "weekly", "0.9"},
		{"https://example.com/blog", "2024-06-01T00:00:00Z", "weekly", "0.9"},
		{"https://example.com/experience", "2024-06-01T00:00:00Z", "monthly", "0.8"},
		{"https://example.com/services", "2024-06-01T00:00:00Z", "monthly", "0.8"},
		{"https://example.com/testimonials", "2024-06-01T00:00:00Z", "monthly", "0.7"},
		{"https://example.com/contact", "2024-06-01T00:00:00Z", "monthly", "0.8"},
	}
	if len(sm.URLs) != len(want) {
		t.Fatalf("urls = %d, want %d", len(sm.URLs), len(want))
	}
	for i := range want {
		if sm.URLs[i] != want[i] {
			t.Errorf("url %d = %+v, want %+v", i, sm.URLs[i], want[i])
		}
	}
}

func TestBuildSitemapKeepsUndatedPosts(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []backend.Post{
		{Slug: "bad", Date: "not a date"},
		{Slug: "fallback", CreatedAt: "2023-02-03"},
	}
	var logged []string
	sm := buildSitemap("https://example.com", posts, now, func(f string, args ...any) {
		logged = append(logged, fmt.Sprintf(f, args...))
	})
	if len(sm.URLs) != len(staticRoutes)+2 {
		t.Fatalf("urls = %d", len(sm.URLs))
	}
	bad := sm.URLs[len(staticRoutes)]
	if bad.Loc != "https://example.com/blog/bad" || bad.LastMod != "2024-06-01T00:00:00Z" {
		t.Errorf("bad post entry = %+v", bad)
	}
	if fb := sm.URLs[len(staticRoutes)+1]; fb.LastMod != "2023-02-03T00:00:00Z" || fb.ChangeFreq != "monthly" || fb.Priority != "0.8" {
		t.Errorf("createdAt fallback entry = %+v", fb)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], `"bad"`) {
		t.Errorf("logged = %q", logged)
	}
}

func TestBuildFeedItems(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com", Author: "Ada", AuthorEmail: "ada@example.com"}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts := []backend.Post{{
		Slug:     "hello",
		Title:    "Hello & <World>",
		Excerpt:  "Intro",
		Date:     "2024-01-15T10:00:00Z",
		Tags:     []string{"go", "web"},
		Image:    "https://cdn.example.com/a.jpg",
		Category: "",
	}}
	feed := buildFeed(cfg, posts, now, nil)
	if len(feed.Channel.Items) != 1 {
		t.Fatalf("items = %d", len(feed.Channel.Items))
	}
	item := feed.Channel.Items[0]
	if item.Link != "https://example.com/blog/hello" || item.GUID.Value != item.Link || item.GUID.IsPermaLink != "true" {
		t.Errorf("link/guid = %q %+v", item.Link, item.GUID)
	}
	if item.PubDate != "Mon, 15 Jan 2024 10:00:00 +0000" {
		t.Errorf("PubDate = %q", item.PubDate)
	}
	if item.Author != "ada@example.com (Ada)" {
		t.Errorf("Author = %q", item.Author)
	}
	if strings.Join(item.Categories, ",") != "Web Development,go,web" {
		t.Errorf("Categories = %q", item.Categories)
	}
	if item.Enclosure == nil || item.Enclosure.Type != "image/jpeg" {
		t.Errorf("Enclosure = %+v", item.Enclosure)
	}

	out, err := xml.Marshal(feed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`<title><![CDATA[Hello & <World>]]></title>`,
		`xmlns:atom="http://www.w3.org/2005/Atom"`,
		`<atom:link href="https://example.com/feed.xml" rel="self" type="application/rss+xml"></atom:link>`,
		`<url>https://example.com/opengraph-image</url>`,
		`<language>en-US</language>`,
		`<lastBuildDate>Sat, 01 Jun 2024 00:00:00 +0000</lastBuildDate>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("feed missing %s\n%s", want, s)
		}
	}
}

func TestBuildFeedCapsItems(t *testing.T) {
	for _, n := range []int{0, 5, 20, 30} {
		feed := buildFeed(SiteConfig{URL: "https://example.com"}, makePosts(n), time.Now(), nil)
		if got, want := len(feed.Channel.Items), min(n, feedLimit); got != want {
			t.Errorf("n=%d: items = %d, want %d", n, got, want)
		}
	}
}

func TestBuildFeedPreservesOrder(t *testing.T) {
	feed := buildFeed(SiteConfig{URL: "https://example.com"}, makePosts(3), time.Now(), nil)
	for i, item := range feed.Channel.Items {
		if want := fmt.Sprintf("Post %d", i); item.Title.Text != want {
			t.Errorf("item %d = %q, want %q", i, item.Title.Text, want)
		}
	}
}

func TestFeedHandler(t *testing.T) {
	srv, queries := postsBackend(t, makePosts(3))
	a := newTestApp(t, srv.URL)
	rec := serve(a, http.MethodGet, "/feed.xml", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, s-maxage=3600, stale-while-revalidate=86400" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := strings.Count(rec.Body.String(), "<item>"); got != 3 {
		t.Errorf("items = %d, want 3", got)
	}
	if q := queries(); len(q) != 1 || q[0] != "limit=20&published=true" {
		t.Errorf("queries = %q", q)
	}
}

func TestFeedUnconfiguredServesShell(t *testing.T) {
	a := newTestApp(t, "")
	rec := serve(a, http.MethodGet, "/feed.xml", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var feed rssXML
	if err := xml.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("invalid xml: %v", err)
	}
	if feed.Channel.Title != "Test Site" || len(feed.Channel.Items) != 0 {
		t.Errorf("channel = %+v", feed.Channel)
	}
}

func TestFeedBackendErrorIs500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	rec := serve(a, http.MethodGet, "/feed.xml", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "Error generating RSS feed" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestSitemapHandler(t *testing.T) {
	srv, queries := postsBackend(t, makePosts(2))
	a := newTestApp(t, srv.URL)
	rec := serve(a, http.MethodGet, "/sitemap.xml", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), "<url>"); got != len(staticRoutes)+2 {
		t.Errorf("urls = %d", got)
	}
	if q := queries(); len(q) != 1 || q[0] != "limit=1000&published=true" {
		t.Errorf("queries = %q", q)
	}
}

func TestSitemapFallsBackToStatic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	for _, backendURL := range []string{"", srv.URL} {
		a := newTestApp(t, backendURL)
		rec := serve(a, http.MethodGet, "/sitemap.xml", "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("backend %q: status = %d", backendURL, rec.Code)
		}
		if got := strings.Count(rec.Body.String(), "<url>"); got != len(staticRoutes) {
			t.Errorf("backend %q: urls = %d, want %d", backendURL, got, len(staticRoutes))
		}
	}
}
