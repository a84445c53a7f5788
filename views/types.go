package views

import "github.com/eringen/portfolio/backend"

// Site carries the few site-wide values the views need.
type Site struct {
	Name string
	URL  string
	// APIURL is the client-facing API base, exposed to scripts as a meta tag.
	APIURL string
}

// BlogPage is one page of the blog listing.
type BlogPage struct {
	Posts      []backend.Post
	Page       int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p BlogPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p BlogPage) HasNext() bool { return p.Page < p.TotalPages }

// pagerSpan is how many page links surround the current page.
const pagerSpan = 2

// Pages returns the page numbers shown in the pager: a window of at most
// 2*pagerSpan+1 pages around the current one, clamped to 1..TotalPages.
func (p BlogPage) Pages() []int {
	first := max(1, p.Page-pagerSpan)
	last := min(p.TotalPages, p.Page+pagerSpan)
	if last < first {
		return nil
	}
	pages := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		pages = append(pages, i)
	}
	return pages
}
