package spacesdashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spaceboard/internal/browser"
	"spaceboard/internal/dom"
	"spaceboard/internal/fetcher"
	"spaceboard/internal/leaderboard"
	"spaceboard/internal/output"

	"github.com/go-rod/rod"
)

// ErrNoRows reports that no row strategy matched anything, which makes
// the whole run pointless.
var ErrNoRows = errors.New("no leaderboard rows found with any selector strategy")

// Debug artifact names are fixed so repeated runs overwrite rather than
// accumulate.
const (
	debugInitialShot = "debug_initial_load.png"
	debugNoRowsShot  = "debug_no_rows_found.png"
	debugNoRowsDump  = "debug_no_rows_found.md"
)

// Client drives the leaderboard page in a local browser and feeds rows
// to the round driver.
type Client struct {
	browser *browser.Browser
	profile *Profile
	url     string
	timeout time.Duration
	debug   bool

	page     *rod.Page
	dom      dom.Page
	rowsSel  string
	failures int
}

// NewClient prepares a client; the page is not opened until Load.
func NewClient(b *browser.Browser, profile *Profile, url string, timeout time.Duration, debug bool) *Client {
	return &Client{
		browser: b,
		profile: profile,
		url:     url,
		timeout: timeout,
		debug:   debug,
	}
}

// Load navigates to the leaderboard and waits until rows are visible.
// Failure here means the run cannot proceed.
func (c *Client) Load(ctx context.Context) error {
	res, err := fetcher.New(c.browser).Fetch(c.url, fetcher.Options{
		Timeout:     c.timeout,
		NetworkIdle: true,
	})
	if err != nil {
		return err
	}
	c.page = res.Page
	c.dom = dom.NewRodPage(res.Page)

	slog.Info("page loaded", "url", res.URL, "title", res.Title, "load_time", res.LoadTime)
	time.Sleep(c.profile.Timeouts.InitialWait())

	if c.debug {
		c.captureScreenshot(debugInitialShot)
		c.logPageStructure()
	}

	rows, strategy, err := c.discoverRows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		// The table may render late; give the precise selector one
		// full budget before concluding the page is empty.
		slog.Debug("no rows on first pass, waiting for the table")
		_, waitErr := c.dom.Element(c.profile.Selectors.RowStrategies[0], c.profile.Timeouts.Locator())
		if waitErr != nil && !dom.IsTimeout(waitErr) {
			return fmt.Errorf("waiting for rows: %w", waitErr)
		}
		if rows, strategy, err = c.discoverRows(); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		if c.debug {
			c.captureScreenshot(debugNoRowsShot)
			c.dumpPage()
		}
		return ErrNoRows
	}

	c.rowsSel = strategy
	slog.Info("rows discovered", "strategy", strategy, "count", len(rows))
	return nil
}

// Extract walks the currently visible rows. Broken rows are logged and
// counted, never returned.
func (c *Client) Extract(ctx context.Context, round int) ([]leaderboard.Candidate, error) {
	rows, err := c.currentRows()
	if err != nil {
		return nil, err
	}
	slog.Debug("extracting rows", "round", round, "rows", len(rows))

	candidates := make([]leaderboard.Candidate, 0, len(rows))
	for i, row := range rows {
		if c.debug && round == 0 && i == 0 {
			c.logFirstRow(row)
		}
		rec, fail := extractRow(row, c.profile)
		if fail != nil {
			c.failures++
			slog.Warn("row extraction failed",
				"row", i,
				"key", fail.Key,
				"hint", fail.Hint,
				"error", fail.Err)
			continue
		}
		candidates = append(candidates, rec)
	}
	return candidates, nil
}

// Advance scrolls to the bottom so the page loads the next batch.
func (c *Client) Advance(ctx context.Context) error {
	return c.dom.ScrollToBottom()
}

// Failures reports how many rows broke during extraction so far.
func (c *Client) Failures() int {
	return c.failures
}

// Close releases the page. The browser is owned by the caller.
func (c *Client) Close() {
	if c.page != nil {
		c.page.Close()
	}
}

// currentRows lists the rows visible right now, re-running strategy
// discovery if the remembered selector stopped matching.
func (c *Client) currentRows() ([]dom.Handle, error) {
	if c.rowsSel != "" {
		rows, err := c.dom.Elements(c.rowsSel)
		if err != nil {
			return nil, fmt.Errorf("listing rows: %w", err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}

	rows, strategy, err := c.discoverRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	c.rowsSel = strategy
	return rows, nil
}

// discoverRows tries each row strategy in order and keeps the first
// that matches anything.
func (c *Client) discoverRows() ([]dom.Handle, string, error) {
	for _, sel := range c.profile.Selectors.RowStrategies {
		rows, err := c.dom.Elements(sel)
		if err != nil {
			return nil, "", fmt.Errorf("row discovery %q: %w", sel, err)
		}
		slog.Debug("row strategy tried", "selector", sel, "count", len(rows))
		if len(rows) > 0 {
			return rows, sel, nil
		}
	}
	return nil, "", nil
}

func (c *Client) captureScreenshot(path string) {
	shot, err := c.dom.Screenshot()
	if err != nil {
		slog.Warn("failed to take screenshot", "path", path, "error", err)
		return
	}
	output.WriteArtifact(path, shot)
}

// logPageStructure counts the table skeleton in-page, mirroring what
// the selectors are about to assume.
func (c *Client) logPageStructure() {
	raw, err := c.dom.Eval(`() => ({
		title:   document.title,
		tables:  document.querySelectorAll('table').length,
		tbodies: document.querySelectorAll('tbody').length,
		rows:    document.querySelectorAll('tr').length
	})`)
	if err != nil {
		slog.Warn("failed to inspect page", "error", err)
		return
	}
	var info struct {
		Title   string `json:"title"`
		Tables  int    `json:"tables"`
		Tbodies int    `json:"tbodies"`
		Rows    int    `json:"rows"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		slog.Warn("failed to decode page inspection", "error", err)
		return
	}
	slog.Debug("page structure",
		"title", info.Title,
		"tables", info.Tables,
		"tbodies", info.Tbodies,
		"rows", info.Rows)
}

// logFirstRow dumps the first row's shape once per run, which is
// usually enough to spot selector drift.
func (c *Client) logFirstRow(row dom.Handle) {
	html, err := row.HTML()
	if err != nil {
		slog.Debug("failed to read first row html", "error", err)
		return
	}
	cells, _ := row.Elements("td")
	slog.Debug("first row", "cells", len(cells), "html", truncate(html, 1000))
}

// dumpPage writes the no-rows diagnostics: a structure report to the
// log and a markdown rendering of the body next to the screenshot.
func (c *Client) dumpPage() {
	html, err := c.dom.BodyHTML()
	if err != nil {
		slog.Warn("failed to capture page body", "error", err)
		return
	}

	if report, err := DiagnoseStructure(html); err == nil {
		slog.Info("page structure report",
			"tables", report.Tables,
			"tbodies", report.Bodies,
			"rows", report.Rows)
		if report.FirstTableText != "" {
			slog.Debug("first table text", "text", report.FirstTableText)
		}
	}

	if text, err := RenderMarkdown(html); err == nil {
		output.WriteArtifact(debugNoRowsDump, []byte(text))
	}
}
