// Package route models the page location the articles view is mounted on.
package route

import (
	"net/url"
	"strings"
)

const (
	// HomePath is the default page.
	HomePath = "/"
	// SearchResultPath is the page that shows symbol-filtered articles.
	SearchResultPath = "/search-result"
)

// Location is a parsed page path plus its query string.
type Location struct {
	Path  string
	Query url.Values
}

// Parse parses a path with an optional query string, e.g. "/search-result?q=AAPL".
// Absolute URLs are accepted and reduced to their path and query.
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Home(), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	path := u.Path
	if path == "" {
		path = HomePath
	}
	return Location{Path: path, Query: u.Query()}, nil
}

// Home returns the location of the home page.
func Home() Location {
	return Location{Path: HomePath, Query: url.Values{}}
}

// Search returns the search-result location for symbol.
func Search(symbol string) Location {
	q := url.Values{}
	q.Set("q", symbol)
	return Location{Path: SearchResultPath, Query: q}
}

// Symbol returns the "q" query parameter, or "" when absent.
func (l Location) Symbol() string {
	if l.Query == nil {
		return ""
	}
	return strings.TrimSpace(l.Query.Get("q"))
}

// IsSearchResult reports whether the location is the search-result page.
func (l Location) IsSearchResult() bool {
	return l.Path == SearchResultPath
}

// String renders the location back to "path?query".
func (l Location) String() string {
	u := url.URL{Path: l.Path}
	if len(l.Query) > 0 {
		u.RawQuery = l.Query.Encode()
	}
	return u.String()
}
