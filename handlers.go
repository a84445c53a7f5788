package portfolio

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/backend"
	"github.com/eringen/portfolio/views"
)

const (
	postsPerPage = 6
	projectLimit = 50
)

func (a *App) handleBlogList(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	bp := views.BlogPage{Page: page, TotalPages: 1}

	list, err := a.Backend.ListPosts(c.Request().Context(), backend.PostQuery{
		Page:      page,
		Limit:     postsPerPage,
		Published: backend.Bool(true),
	})
	if err != nil {
		c.Logger().Errorf("blog list: %v", err)
	} else {
		bp.Posts = list.Posts
		if list.Pagination != nil && list.Pagination.TotalPages > 0 {
			bp.TotalPages = list.Pagination.TotalPages
		}
	}
	return Render(c, a.Views.BlogList(a.site(), bp))
}

func (a *App) handleBlogPost(c echo.Context) error {
	slug := c.Param("slug")
	// Params come from RawPath when the request carries one.
	if c.Request().URL.RawPath != "" {
		if s, err := url.PathUnescape(slug); err == nil {
			slug = s
		}
	}
	post, err := a.Backend.GetPost(c.Request().Context(), slug)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			c.Logger().Errorf("blog post %q: %v", slug, err)
		}
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if !post.Published {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.BlogPost(a.site(), post))
}

func (a *App) handleProjects(c echo.Context) error {
	q := backend.ProjectQuery{Limit: projectLimit}
	q.Featured = queryBool(c, "featured")
	q.IsCustomCode = queryBool(c, "isCustomCode")

	var projects []backend.Project
	list, err := a.Backend.ListProjects(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("projects: %v", err)
	} else {
		projects = list.Projects
	}
	return Render(c, a.Views.Projects(a.site(), projects))
}

func (a *App) handleServices(c echo.Context) error {
	var services []backend.Service
	list, err := a.Backend.ListServices(c.Request().Context(), backend.ServiceQuery{Active: backend.Bool(true)})
	if err != nil {
		c.Logger().Errorf("services: %v", err)
	} else {
		services = list.Services
	}
	return Render(c, a.Views.Services(a.site(), services))
}

func queryBool(c echo.Context, name string) *bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return nil
	}
	return backend.Bool(v)
}

func (a *App) handleHealth(c echo.Context) error {
	state := "unconfigured"
	if a.Backend.Configured() {
		state = "configured"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "backend": state})
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n\n")
	fmt.Fprintf(&b, "Sitemap: %s\n", BuildURL(a.Config.URL, "sitemap.xml"))
	return c.String(http.StatusOK, b.String())
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

func (a *App) handleManifest(c echo.Context) error {
	name := a.Config.Name
	if a.Config.Tagline != "" {
		name += " - " + a.Config.Tagline
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/manifest+json")
	return c.JSON(http.StatusOK, webManifest{
		Name:            name,
		ShortName:       a.Config.Name,
		Description:     a.Config.Description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#3b82f6",
		Icons: []manifestIcon{
			{Src: "/icon-192x192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icon-512x512.png", Sizes: "512x512", Type: "image/png"},
		},
	})
}

func redirectTo(target string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, target)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
