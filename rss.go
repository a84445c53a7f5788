package portfolio

import (
	"encoding/xml"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/backend"
)

const (
	feedLimit           = 20
	defaultFeedCategory = "Web Development"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      *atomLink `xml:"atom:link,omitempty"`
	Image         *rssImage `xml:"image,omitempty"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata         `xml:"title"`
	Link        string        `xml:"link"`
	GUID        rssGUID       `xml:"guid"`
	Description cdata         `xml:"description"`
	PubDate     string        `xml:"pubDate"`
	Author      string        `xml:"author,omitempty"`
	Categories  []string      `xml:"category"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

func rfc822(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

// feedShell is the channel without items, served when no backend is set.
func feedShell(cfg SiteConfig, now time.Time) rssXML {
	return rssXML{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         cfg.Name,
			Link:          BuildURL(cfg.URL),
			Description:   cfg.Description,
			Language:      "en-US",
			LastBuildDate: rfc822(now),
		},
	}
}

// buildFeed renders at most feedLimit posts in backend order.
func buildFeed(cfg SiteConfig, posts []backend.Post, now time.Time, logf func(string, ...any)) rssXML {
	feed := feedShell(cfg, now)
	base := feed.Channel.Link
	feed.Channel.AtomLink = &atomLink{Href: BuildURL(base, "feed.xml"), Rel: "self", Type: "application/rss+xml"}
	feed.Channel.Image = &rssImage{URL: BuildURL(base, "opengraph-image"), Title: cfg.Name, Link: base}

	author := feedAuthor(cfg)
	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.Slug)
		category := p.Category
		if category == "" {
			category = defaultFeedCategory
		}
		item := rssItem{
			Title:       cdata{p.Title},
			Link:        postURL,
			GUID:        rssGUID{IsPermaLink: "true", Value: postURL},
			Description: cdata{p.Excerpt},
			PubDate:     rfc822(postDate(p, now, logf)),
			Author:      author,
			Categories:  append([]string{category}, p.Tags...),
		}
		if p.Image != "" {
			item.Enclosure = &rssEnclosure{URL: p.Image, Type: "image/jpeg"}
		}
		items = append(items, item)
	}
	feed.Channel.Items = items
	return feed
}

func feedAuthor(cfg SiteConfig) string {
	switch {
	case cfg.AuthorEmail != "" && cfg.Author != "":
		return cfg.AuthorEmail + " (" + cfg.Author + ")"
	case cfg.AuthorEmail != "":
		return cfg.AuthorEmail
	}
	return ""
}

var postDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// postDate is the post's date, else its createdAt, else now. A post is
// never dropped for a bad date.
func postDate(p backend.Post, now time.Time, logf func(string, ...any)) time.Time {
	for _, s := range []string{p.Date, p.CreatedAt} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		for _, layout := range postDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	if logf != nil {
		logf("post %q has no parseable date, using now", p.Slug)
	}
	return now
}

func (a *App) handleFeed(c echo.Context) error {
	now := time.Now()
	list, err := a.Backend.ListPosts(c.Request().Context(), backend.PostQuery{
		Limit:     feedLimit,
		Published: backend.Bool(true),
	})
	var feed rssXML
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		a.Metrics.FeedRenders.WithLabelValues("rss", "static").Inc()
		feed = feedShell(a.Config, now)
	case err != nil:
		a.Metrics.FeedRenders.WithLabelValues("rss", "error").Inc()
		c.Logger().Errorf("rss feed: %v", err)
		return c.String(http.StatusInternalServerError, "Error generating RSS feed")
	default:
		a.Metrics.FeedRenders.WithLabelValues("rss", "ok").Inc()
		feed = buildFeed(a.Config, list.Posts, now, c.Logger().Debugf)
		c.Response().Header().Set("Cache-Control", pageCacheControl)
	}
	return writeXML(c, feed)
}

func writeXML(c echo.Context, v any) error {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
