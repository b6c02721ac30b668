package scraper

import (
	"context"
	"time"
)

// Scraper is one extraction backend. Scrape may return partial content
// together with an error; callers decide whether the partial result is
// worth keeping.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, target string, opts Options) (Content, error)
}

// Content is a scrape result renderable in every output format.
type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

// Options carries the flags every backend shares.
type Options struct {
	Limit       int           // stop once this many unique entries are collected
	Scrolls     int           // scroll attempts after the initial load
	Timeout     time.Duration // page navigation budget
	Debug       bool          // failure screenshots and page dumps
	ShowUI      bool          // run the browser with a visible window
	ProxyURL    string        // --proxy flag or SPACEBOARD_PROXY env var
	ProfileFile string        // YAML overriding the built-in site profile
}
