// Package spacesdashboard scrapes the spacesdashboard.com leaderboard
// of Twitter Spaces. Two backends are registered: "leaderboard" drives
// a local browser over the page's DOM, "leaderboard.agent" delegates
// the browsing to a remote agent gateway. Both run the same
// scroll-extract-dedup loop and produce the same record list.
package spacesdashboard

import (
	"context"
	"fmt"
	"log/slog"

	"spaceboard/internal/agent"
	"spaceboard/internal/browser"
	"spaceboard/internal/leaderboard"
	"spaceboard/internal/scraper"
)

// DefaultURL is the leaderboard view this tool was built around:
// English spaces ranked over the trailing week.
const DefaultURL = "https://spacesdashboard.com/leaderboard?lang=en&mode=7d"

func init() {
	scraper.Register(&DOMScraper{})
	scraper.Register(&AgentScraper{})
}

// DOMScraper extracts the leaderboard from a local headless browser.
type DOMScraper struct{}

func (s *DOMScraper) Name() string {
	return "leaderboard"
}

func (s *DOMScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	profile, err := LoadProfile(opts.ProfileFile)
	if err != nil {
		return nil, err
	}

	b, err := browser.New(browser.Config{
		ProxyURL: opts.ProxyURL,
		Headless: !opts.ShowUI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	client := NewClient(b, profile, target, opts.Timeout, opts.Debug)
	defer client.Close()

	acc := leaderboard.NewAccumulator()
	driver := leaderboard.NewDriver(client, acc, leaderboard.Config{
		Target:     opts.Limit,
		MaxScrolls: opts.Scrolls,
		Settle:     profile.Timeouts.Settle(),
	})

	runErr := driver.Run(ctx)
	if n := client.Failures(); n > 0 {
		slog.Info("rows failed during extraction", "count", n)
	}

	// Whatever accumulated stays usable even when the run errored; the
	// caller decides what to do with a partial result.
	return NewContent(acc.Records(), target), runErr
}

// AgentScraper extracts the leaderboard through a remote browsing
// agent, trading determinism for resilience to page changes.
type AgentScraper struct{}

func (s *AgentScraper) Name() string {
	return "leaderboard.agent"
}

func (s *AgentScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	client, err := agent.New(agent.ConfigFromEnv())
	if err != nil {
		// Configuration problems surface before any session exists, so
		// there is never partial content here.
		return nil, err
	}

	source := &agentSource{
		client:   client,
		startURL: target,
		headless: !opts.ShowUI,
	}
	defer source.Close(ctx)

	acc := leaderboard.NewAccumulator()
	driver := leaderboard.NewDriver(source, acc, leaderboard.Config{
		Target:     opts.Limit,
		MaxScrolls: opts.Scrolls,
	})

	runErr := driver.Run(ctx)
	return NewContent(acc.Records(), target), runErr
}
