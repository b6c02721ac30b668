package spacesdashboard

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// StructureReport summarizes the table skeleton actually present in
// page HTML, for debugging selector drift.
type StructureReport struct {
	Tables         int
	Bodies         int
	Rows           int
	FirstTableText string
}

// DiagnoseStructure parses page HTML and counts the pieces the row
// selectors depend on.
func DiagnoseStructure(html string) (*StructureReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	report := &StructureReport{
		Tables: doc.Find("table").Length(),
		Bodies: doc.Find("tbody").Length(),
		Rows:   doc.Find("tr").Length(),
	}
	if report.Tables > 0 {
		report.FirstTableText = truncate(strings.TrimSpace(doc.Find("table").First().Text()), 1000)
	}
	return report, nil
}

// RenderMarkdown converts page HTML into markdown, which reads far
// better than raw HTML in a debug dump.
func RenderMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(html)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
