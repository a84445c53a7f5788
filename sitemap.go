package portfolio

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/backend"
)

const sitemapPostLimit = 1000

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type staticRoute struct {
	path       string
	changeFreq string
	priority   float64
}

var staticRoutes = []staticRoute{
	{"", "weekly", 1.0},
	{"about", "monthly", 0.9},
	{"projects", "weekly", 0.9},
	{"blog", "weekly", 0.9},
	{"experience", "monthly", 0.8},
	{"services", "monthly", 0.8},
	{"testimonials", "monthly", 0.7},
	{"contact", "monthly", 0.8},
}

// buildSitemap lists the static routes followed by one entry per post.
func buildSitemap(base string, posts []backend.Post, now time.Time, logf func(string, ...any)) sitemapURLSet {
	urls := make([]sitemapURL, 0, len(staticRoutes)+len(posts))
	for _, r := range staticRoutes {
		loc := BuildURL(base)
		if r.path != "" {
			loc = BuildURL(base, r.path)
		}
		urls = append(urls, sitemapURL{
			Loc:        loc,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: r.changeFreq,
			Priority:   strconv.FormatFloat(r.priority, 'f', 1, 64),
		})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    postDate(p, now, logf).UTC().Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.Backend.ListPosts(c.Request().Context(), backend.PostQuery{
		Limit:     sitemapPostLimit,
		Published: backend.Bool(true),
	})
	if err != nil {
		a.Metrics.FeedRenders.WithLabelValues("sitemap", "static").Inc()
		c.Logger().Warnf("sitemap: serving static routes only: %v", err)
		list.Posts = nil
	} else {
		a.Metrics.FeedRenders.WithLabelValues("sitemap", "ok").Inc()
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return writeXML(c, buildSitemap(a.Config.URL, list.Posts, time.Now(), c.Logger().Debugf))
}
