package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/githar-go/internal/history"
)

// Compile-time interface conformance checks.
var (
	_ Renderer = (*TextRenderer)(nil)
	_ Renderer = (*MarkdownRenderer)(nil)
)

// Format represents the report format.
type Format = history.Format

const (
	FormatText     = history.FormatText
	FormatMarkdown = history.FormatMarkdown
)

// ParseFormat parses the format flag. An empty value selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text or markdown)", s)
	}
}

// Renderer turns fetched commits into report text.
type Renderer interface {
	// RenderCommit renders a single commit line.
	RenderCommit(c history.Commit) string
	// RenderQuery renders the whole repository block: heading, filter
	// summary and one line per non-merge commit, oldest first.
	RenderQuery(q *history.Query, skip history.SkipMatcher) string
}

// NewRenderer creates a renderer for the specified format.
func NewRenderer(format Format) Renderer {
	switch format {
	case FormatMarkdown:
		return &MarkdownRenderer{}
	default:
		return &TextRenderer{}
	}
}

// renderReport joins the three report sections with blank lines.
func renderReport(heading, filters string, lines []string, sep string) string {
	return heading + "\n\n" + filters + "\n\n" + strings.Join(lines, sep)
}

func renderCommits(r Renderer, q *history.Query, skip history.SkipMatcher) []string {
	records := q.Records(skip)
	lines := make([]string, len(records))
	for i, c := range records {
		lines[i] = r.RenderCommit(c)
	}
	return lines
}
