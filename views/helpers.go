package views

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// PlaceholderImage is used when a project has no image.
const PlaceholderImage = "/api/placeholder/600/400"

var contentPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips unsafe markup from backend-supplied post content.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(contentPolicy.Sanitize(s))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend date as "January 2, 2006". Unparseable input
// is returned unchanged.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func imageOr(src string) string {
	if strings.TrimSpace(src) == "" {
		return PlaceholderImage
	}
	return src
}
