// Package router maps a location string to the page being shown and keeps
// back/forward history.
package router

import (
	"path"
	"strings"
)

// Known pages
const (
	PageCollections   = "collections"
	PageDocumentation = "documentation"
	PageActivity      = "activity"
)

var knownPages = map[string]bool{
	PageCollections:   true,
	PageDocumentation: true,
	PageActivity:      true,
}

// Router is a value; navigation methods return the next Router
type Router struct {
	page     string
	location string
	history  []string
	index    int
}

// New starts at path. Its last segment becomes the page; an empty path is home.
func New(p string) Router {
	r := Router{location: "/"}
	if page := lastSegment(p); page != "" {
		r.page = strings.ToLower(page)
		r.location = "/" + r.page
	}
	r.history = []string{r.location}
	return r
}

// NavigateTo shows the named page, or the collections list for "".
// Like New, only the last segment of name is kept.
// History only grows when the location changes.
func (r Router) NavigateTo(name string) Router {
	page := strings.ToLower(lastSegment(name))
	location := "/"
	if page != "" {
		location = "/" + page
	}

	r.page = page
	if location == r.location {
		return r
	}
	r.location = location

	// a new visit discards the forward stack; the full slice expression
	// keeps append from writing into a shared backing array
	r.history = append(r.history[:r.index+1:r.index+1], location)
	r.index = len(r.history) - 1
	return r
}

// Back moves one step back in history
func (r Router) Back() Router {
	if !r.CanBack() {
		return r
	}
	r.index--
	return r.sync()
}

// Forward moves one step forward in history
func (r Router) Forward() Router {
	if !r.CanForward() {
		return r
	}
	r.index++
	return r.sync()
}

func (r Router) sync() Router {
	r.location = r.history[r.index]
	r.page = lastSegment(r.location)
	return r
}

// View is the page to render: the page if known, else collections
func (r Router) View() string {
	if knownPages[r.page] {
		return r.page
	}
	return PageCollections
}

func (r Router) Page() string     { return r.page }
func (r Router) Location() string { return r.location }
func (r Router) CanBack() bool    { return r.index > 0 }
func (r Router) CanForward() bool { return r.index < len(r.history)-1 }

// DisplayCollections reports whether the list of collections is shown
func (r Router) DisplayCollections() bool {
	return r.View() == PageCollections
}

// History returns a copy of the visited locations
func (r Router) History() []string {
	return append([]string(nil), r.history...)
}

func lastSegment(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
