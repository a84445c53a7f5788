// Package tracking is a Go client for the site's own tracking endpoints. It
// mirrors the browser library: an in-memory session ID that rolls over
// daily, Do Not Track support and visit debouncing. Nothing is persisted.
package tracking

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

// Session holds a lazily generated session ID of the form
// YYYY-MM-DD-<random>. A new ID is minted when the UTC day changes.
type Session struct {
	mu  sync.Mutex
	id  string
	day string
	now func() time.Time
}

// NewSession returns an empty session using the wall clock.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// ID returns the current session ID, generating one if needed.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.clock().UTC().Format(dayLayout)
	if s.id == "" || s.day != day {
		s.id = day + "-" + randomSuffix()
		s.day = day
	}
	return s.id
}

// Set adopts a server-issued ID for the rest of the day.
func (s *Session) Set(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.id = id
	s.day = s.clock().UTC().Format(dayLayout)
	s.mu.Unlock()
}

// Reset forgets the current ID.
func (s *Session) Reset() {
	s.mu.Lock()
	s.id, s.day = "", ""
	s.mu.Unlock()
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// PageName maps a URL path to a page label: "/" is "home" and "/blog/x"
// is "blog_x".
func PageName(path string) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "home"
	}
	return strings.Join(parts, "_")
}
