// Package views holds the default templ components for the content pages.
// They render bare semantic HTML; sites that want their own markup pass
// replacements through portfolio.WithViews.
package views

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/portfolio/backend"
)

var funcs = template.FuncMap{
	"formatDate": FormatDate,
	"pathEscape": PathEscape,
	"joinTags":   JoinTags,
	"sanitize":   SanitizeHTML,
	"imageOr":    imageOr,
	"add":        func(a, b int) int { return a + b },
	"sub":        func(a, b int) int { return a - b },
	"head":       newHead,
}

type pageHead struct {
	Title  string
	APIURL string
}

func newHead(site Site, title string) pageHead {
	return pageHead{Title: title, APIURL: site.APIURL}
}

var pages = template.Must(template.New("pages").Funcs(funcs).Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>{{if .APIURL}}<meta name="api-base-url" content="{{.APIURL}}">{{end}}<link rel="alternate" type="application/rss+xml" href="/feed.xml"></head><body><main>{{end}}

{{define "foot"}}</main></body></html>{{end}}

{{define "blogList"}}{{template "head" (head .Site (print "Blog - " .Site.Name))}}
<h1>Blog</h1>
{{if .Page.Posts}}<ul class="posts">
{{range .Page.Posts}}<li><article>
<h2><a href="/blog/{{pathEscape .Slug}}">{{.Title}}</a></h2>
<p class="meta"><time>{{formatDate .Date}}</time>{{if .Category}} · {{.Category}}{{end}}{{if .ReadTime}} · {{.ReadTime}}{{end}}</p>
<p>{{.Excerpt}}</p>
{{if .Tags}}<p class="tags">{{joinTags .Tags}}</p>{{end}}
</article></li>
{{end}}</ul>
{{if gt .Page.TotalPages 1}}<nav class="pagination">
{{if .Page.HasPrev}}<a rel="prev" href="/blog?page={{sub .Page.Page 1}}">Previous</a>{{end}}
{{$cur := .Page.Page}}{{range .Page.Pages}}{{if eq . $cur}}<span aria-current="page">{{.}}</span>{{else}}<a href="/blog?page={{.}}">{{.}}</a>{{end}}
{{end}}{{if .Page.HasNext}}<a rel="next" href="/blog?page={{add .Page.Page 1}}">Next</a>{{end}}
</nav>{{end}}
{{else}}<p class="empty">No posts available</p>{{end}}
{{template "foot"}}{{end}}

{{define "blogPost"}}{{template "head" (head .Site (print .Post.Title " - " .Site.Name))}}
<article>
<h1>{{.Post.Title}}</h1>
<p class="meta"><time>{{formatDate .Post.Date}}</time>{{if .Post.Category}} · {{.Post.Category}}{{end}}{{if .Post.Author}} · {{.Post.Author.Name}}{{end}}</p>
{{if .Post.Image}}<img src="{{.Post.Image}}" alt="{{.Post.Title}}">{{end}}
<div class="content">{{sanitize .Post.Content}}</div>
{{if .Post.Tags}}<p class="tags">{{joinTags .Post.Tags}}</p>{{end}}
</article>
<p><a href="/blog">Back to blog</a></p>
{{template "foot"}}{{end}}

{{define "projects"}}{{template "head" (head .Site (print "Projects - " .Site.Name))}}
<h1>Projects</h1>
{{if .Projects}}<ul class="projects">
{{range .Projects}}<li><article{{if .Featured}} class="featured"{{end}}>
<img src="{{imageOr .Image}}" alt="{{.Title}}" loading="lazy">
<h2>{{.Title}}</h2>
{{if .Category}}<p class="meta">{{.Category}}</p>{{end}}
<p>{{.Description}}</p>
{{if .Tags}}<p class="tags">{{joinTags .Tags}}</p>{{end}}
{{if .Link}}<a href="{{.Link}}" rel="noopener">Live</a>{{end}}
{{if .GitHub}}<a href="{{.GitHub}}" rel="noopener">Source</a>{{end}}
</article></li>
{{end}}</ul>
{{else}}<p class="empty">No projects available</p>{{end}}
{{template "foot"}}{{end}}

{{define "services"}}{{template "head" (head .Site (print "Services - " .Site.Name))}}
<h1>Services</h1>
{{if .Services}}<ul class="services">
{{range .Services}}<li><article>
<h2>{{.Title}}</h2>
<p>{{.Description}}</p>
{{if .Features}}<ul class="features">{{range .Features}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Price}}<p class="price">{{.Price}}</p>{{end}}
</article></li>
{{end}}</ul>
{{else}}<p class="empty">No services available</p>{{end}}
{{template "foot"}}{{end}}

{{define "notFound"}}{{template "head" (head .Site "Not Found")}}
<h1>Page not found</h1>
<p><a href="/">Go home</a></p>
{{template "foot"}}{{end}}

{{define "serverError"}}{{template "head" (head .Site "Error")}}
<h1>Something went wrong</h1>
<p>Please try again later.</p>
{{template "foot"}}{{end}}
`))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// BlogList renders a page of posts with a pager, or the empty state.
func BlogList(site Site, page BlogPage) templ.Component {
	return component("blogList", struct {
		Site Site
		Page BlogPage
	}{site, page})
}

// BlogPost renders a single post. Content is sanitized before output.
func BlogPost(site Site, post backend.Post) templ.Component {
	return component("blogPost", struct {
		Site Site
		Post backend.Post
	}{site, post})
}

// Projects renders the project grid, or the empty state.
func Projects(site Site, projects []backend.Project) templ.Component {
	return component("projects", struct {
		Site     Site
		Projects []backend.Project
	}{site, projects})
}

// Services renders the service list, or the empty state.
func Services(site Site, services []backend.Service) templ.Component {
	return component("services", struct {
		Site     Site
		Services []backend.Service
	}{site, services})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return component("notFound", struct{ Site Site }{})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return component("serverError", struct{ Site Site }{})
}
