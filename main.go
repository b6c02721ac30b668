package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spaceboard/internal/formatter"
	"spaceboard/internal/output"
	"spaceboard/internal/scraper"
	"spaceboard/internal/sites/spacesdashboard"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	site         string
	limit        int
	scrolls      int
	outputFormat string
	outputFile   string
	timeout      time.Duration
	showUI       bool
	debug        bool
	proxyURL     string
	profileFile  string
)

func main() {
	// Load .env before flag defaults read the environment.
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:     "spaceboard [URL]",
		Short:   "Scrape the SpacesDashboard leaderboard into structured records",
		Version: version,
		Long: `spaceboard collects Twitter Spaces entries from the spacesdashboard.com
leaderboard. It loads the page, then alternates scrolling and extracting
until enough unique entries are collected or the scroll budget runs out,
and writes the deduplicated records as JSON.

Extraction runs against a local headless browser by default; with
--site leaderboard.agent the browsing is delegated to a remote agent
gateway instead (requires SPACEBOARD_AGENT_KEY).`,
		Example: `  # Scrape the default leaderboard into leaderboard_data.json
  spaceboard

  # Collect at least 100 entries using up to 10 scrolls
  spaceboard -n 100 --scrolls 10

  # Watch the browser work and keep failure screenshots
  spaceboard --showui --debug

  # Use the agent backend
  spaceboard --site leaderboard.agent

  # Print a terminal table instead of writing a file
  spaceboard -f text -o -

  # Override drifted selectors without recompiling
  spaceboard --profile profiles/leaderboard.yaml`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&site, "site", "leaderboard", "Extraction backend (leaderboard, leaderboard.agent)")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", 50, "Stop once this many unique entries are collected")
	rootCmd.Flags().IntVar(&scrolls, "scrolls", 5, "Max scroll attempts after the initial load")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, text, markdown, csv, html)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "leaderboard_data.json", "Output file path (- for stdout, format inferred from extension if -f not specified)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 60*time.Second, "Page navigation timeout")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Debug logging plus screenshots and page dumps on failure")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("SPACEBOARD_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to SPACEBOARD_PROXY env var")
	rootCmd.Flags().StringVar(&profileFile, "profile", "", "Site profile YAML overriding selectors and timeouts")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	setupLogging(debug)

	target := spacesdashboard.DefaultURL
	if len(args) == 1 {
		target = normalizeURL(args[0])
	}

	// Infer the format from the output extension unless -f was given.
	if !cmd.Flags().Changed("format") && outputFile != "" && outputFile != "-" {
		if inferred := inferFormatFromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}

	if err := validateFlags(); err != nil {
		return err
	}

	s, ok := scraper.Get(site)
	if !ok {
		return fmt.Errorf("unknown site: %s (available: %s)", site, strings.Join(scraper.Names(), ", "))
	}

	opts := scraper.Options{
		Limit:       limit,
		Scrolls:     scrolls,
		Timeout:     timeout,
		Debug:       debug,
		ShowUI:      showUI,
		ProxyURL:    proxyURL,
		ProfileFile: profileFile,
	}

	ctx := context.Background()

	content, runErr := s.Scrape(ctx, target, opts)
	if content == nil {
		return runErr
	}

	// Nothing collected means nothing to persist; never touch the
	// output file with an empty result.
	if sized, ok := content.(interface{ Size() int }); ok && sized.Size() == 0 {
		slog.Info("no entries collected, skipping output")
		return runErr
	}

	rendered, err := formatter.Format(content, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if err := output.Write(outputFile, rendered); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			slog.Error("failed to save output", "error", err)
		}
	}

	// Partial results are already persisted at this point; a run error
	// still decides the exit status.
	return runErr
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func validateFlags() error {
	validFormats := map[string]bool{
		"html":     true,
		"text":     true,
		"markdown": true,
		"json":     true,
		"csv":      true,
	}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}

	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}
	if scrolls < 0 {
		return fmt.Errorf("--scrolls cannot be negative")
	}

	return nil
}

// inferFormatFromExtension infers output format from file extension
func inferFormatFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}

// normalizeURL adds https:// when no protocol prefix is given.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	if !strings.HasPrefix(strings.ToLower(rawURL), "http://") && !strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
