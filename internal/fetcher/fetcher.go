// Package fetcher navigates pages and hands back ready-to-scrape rod
// pages.
package fetcher

import (
	"fmt"
	"log/slog"
	"time"

	"spaceboard/internal/browser"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// userAgent replaces the headless default, which dashboards tend to
// block outright.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stealthScript hides the webdriver flag before any site code runs.
// EvalOnNewDocument evaluates its source as a plain script, not as a
// function body, so this must stay a bare statement.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Options tunes a single fetch.
type Options struct {
	// Timeout bounds navigation and the load wait, separately.
	Timeout time.Duration
	// NetworkIdle additionally waits for request traffic to quiet down,
	// ignoring images and media. Use it for pages that fill their
	// content from XHR after load.
	NetworkIdle bool
}

// FetchResult carries the navigated page and its metadata.
type FetchResult struct {
	Page     *rod.Page
	Title    string
	URL      string
	LoadTime time.Duration
}

// Fetcher opens pages on a shared browser.
type Fetcher struct {
	browser *browser.Browser
}

// New creates a Fetcher on top of an existing browser.
func New(b *browser.Browser) *Fetcher {
	return &Fetcher{browser: b}
}

// Fetch navigates a fresh page to url and waits for it to be usable.
// The caller owns the returned page and must close it.
func (f *Fetcher) Fetch(url string, opts Options) (*FetchResult, error) {
	startTime := time.Now()

	page, err := f.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := prepare(page); err != nil {
		page.Close()
		return nil, err
	}

	if err := page.Timeout(opts.Timeout).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.Timeout(opts.Timeout).WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to wait for page load: %w", err)
	}
	if opts.NetworkIdle {
		wait := page.Timeout(opts.Timeout).WaitRequestIdle(500*time.Millisecond, nil, nil, []proto.NetworkResourceType{
			proto.NetworkResourceTypeImage,
			proto.NetworkResourceTypeMedia,
		})
		wait()
	}

	title, err := page.Eval(`() => document.title`)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to get page title: %w", err)
	}

	result := &FetchResult{
		Page:     page,
		Title:    page.MustObjectToJSON(title).String(),
		URL:      page.MustInfo().URL,
		LoadTime: time.Since(startTime),
	}
	slog.Debug("page fetched", "url", result.URL, "title", result.Title, "load_time", result.LoadTime)

	return result, nil
}

// prepare masks the most common headless tells before any site code
// runs.
func prepare(page *rod.Page) error {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		return fmt.Errorf("failed to set user agent: %w", err)
	}
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		return fmt.Errorf("failed to install stealth script: %w", err)
	}
	return nil
}
