package spacesdashboard

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"spaceboard/internal/leaderboard"
	"spaceboard/internal/output"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Content holds one run's accumulated records and renders them in the
// supported output formats. JSON is the canonical format; the rest are
// summaries for human eyes.
type Content struct {
	records []leaderboard.Candidate
	source  string
	fetched time.Time
}

// NewContent wraps the records collected from source.
func NewContent(records []leaderboard.Candidate, source string) *Content {
	if records == nil {
		records = []leaderboard.Candidate{}
	}
	return &Content{
		records: records,
		source:  source,
		fetched: time.Now(),
	}
}

// Size reports how many records were collected.
func (c *Content) Size() int {
	return len(c.records)
}

// ToJSON renders the flat record list, indented, without HTML escaping.
func (c *Content) ToJSON() ([]byte, error) {
	return output.EncodeJSON(c.records)
}

// summary is the projection shared by the tabular formats. The three
// record shapes carry different fields; this flattens them to what a
// human scanning the output wants first.
type summary struct {
	title     string
	host      string
	listeners string
	url       string
}

func summarize(rec leaderboard.Candidate) summary {
	switch r := rec.(type) {
	case *leaderboard.SpaceRecord:
		host := r.HostHandle
		if host == "" {
			host = r.HostName
		}
		url := r.DirectPlayURL
		if url == "" {
			url = r.SpaceDetailsURL
		}
		listeners := ""
		if r.ListenerCount != nil {
			listeners = strconv.Itoa(*r.ListenerCount)
		}
		return summary{title: r.SpaceTitle, host: host, listeners: listeners, url: url}
	case leaderboard.Entry:
		return summary{title: r.SpaceTitle, host: r.HostProfileURL, url: r.DirectSpaceURL}
	case leaderboard.LinkGuess:
		return summary{title: r.SpaceTitle, url: r.DirectLinkGuess}
	default:
		return summary{}
	}
}

// ToText renders an aligned terminal table.
func (c *Content) ToText() (string, error) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Title", "Host", "Listeners", "URL"})
	for i, rec := range c.records {
		s := summarize(rec)
		t.AppendRow(table.Row{i + 1, s.title, s.host, s.listeners, s.url})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", len(c.records)), "", "", ""})
	return t.Render(), nil
}

// ToMarkdown renders a markdown report with a summary header.
func (c *Content) ToMarkdown() (string, error) {
	var sb strings.Builder

	sb.WriteString("# Spaces Leaderboard\n\n")
	sb.WriteString(fmt.Sprintf("Source: %s\n\n", c.source))
	sb.WriteString(fmt.Sprintf("Fetched: %s\n\n", c.fetched.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Total: %d entries\n\n", len(c.records)))
	sb.WriteString("---\n\n")

	sb.WriteString("| # | Title | Host | Listeners | URL |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for i, rec := range c.records {
		s := summarize(rec)
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, mdEscape(s.title), mdEscape(s.host), s.listeners, s.url))
	}

	return sb.String(), nil
}

// ToCSV renders the summary columns with a header row.
func (c *Content) ToCSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"rank", "title", "host", "listeners", "url"})
	for i, rec := range c.records {
		s := summarize(rec)
		_ = w.Write([]string{strconv.Itoa(i + 1), s.title, s.host, s.listeners, s.url})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return sb.String(), nil
}

// ToHTML renders the markdown report wrapped for a browser.
func (c *Content) ToHTML() (string, error) {
	markdown, err := c.ToMarkdown()
	if err != nil {
		return "", err
	}
	return "<pre>\n" + markdown + "</pre>", nil
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
