package portfolio

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	placeholderWidth  = 600
	placeholderHeight = 400
	placeholderBG     = "E5E7EB"
	placeholderFG     = "9CA3AF"
	maxPlaceholderDim = 10000
)

const placeholderErrorSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="600" height="400" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%" height="100%" fill="#E5E7EB"/>
  <text x="50%" y="50%" font-family="Arial, sans-serif" font-size="16" fill="#9CA3AF" text-anchor="middle" dominant-baseline="middle">Error</text>
</svg>`

// Placeholder is a solid-color SVG labelled with its own dimensions.
type Placeholder struct {
	Width      int
	Height     int
	Background string // with leading '#'
	Foreground string // with leading '#'
}

// ParsePlaceholder reads [width, height, bg, fg] path segments. Missing,
// non-numeric or zero dimensions take the defaults; the rest clamp to
// [1, 10000]. Colors lose one leading '#' and gain one back.
func ParsePlaceholder(segments []string) Placeholder {
	get := func(i int, def string) string {
		if i < len(segments) {
			return segments[i]
		}
		return def
	}
	return Placeholder{
		Width:      dimension(get(0, ""), placeholderWidth),
		Height:     dimension(get(1, ""), placeholderHeight),
		Background: "#" + strings.TrimPrefix(get(2, placeholderBG), "#"),
		Foreground: "#" + strings.TrimPrefix(get(3, placeholderFG), "#"),
	}
}

func dimension(s string, def int) int {
	n, ok := leadingInt(s)
	if !ok || n == 0 {
		n = def
	}
	return max(1, min(maxPlaceholderDim, n))
}

// leadingInt parses an optional sign and the leading decimal digits of s,
// ignoring anything after them ("120px" is 120). Magnitude saturates past
// the clamp range.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n <= maxPlaceholderDim {
			n = n*10 + int(s[digits]-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// FontSize is width/25, kept within [12, 24].
func (p Placeholder) FontSize() int {
	return min(24, max(12, p.Width/25))
}

// SVG renders the placeholder document.
func (p Placeholder) SVG() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%%" height="100%%" fill="%s"/>
  <text x="50%%" y="50%%" font-family="Arial, sans-serif" font-size="%d" fill="%s" text-anchor="middle" dominant-baseline="middle">%d × %d</text>
</svg>`, p.Width, p.Height, html.EscapeString(p.Background), p.FontSize(), html.EscapeString(p.Foreground), p.Width, p.Height)
}

func placeholderSegments(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, "/") {
		if s == "" {
			continue
		}
		if dec, err := url.PathUnescape(s); err == nil {
			s = dec
		}
		out = append(out, s)
	}
	return out
}

func handlePlaceholder(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger().Errorf("placeholder: %v", r)
			c.Response().Header().Del("Cache-Control")
			err = c.Blob(http.StatusInternalServerError, "image/svg+xml", []byte(placeholderErrorSVG))
		}
	}()
	p := ParsePlaceholder(placeholderSegments(c.Param("*")))
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(p.SVG()))
}
