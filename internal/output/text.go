package output

import "github.com/masmgr/githar-go/internal/history"

// TextRenderer renders plain text reports.
type TextRenderer struct{}

// RenderCommit renders "<date>\t<subject>".
func (r *TextRenderer) RenderCommit(c history.Commit) string {
	return c.Date() + "\t" + c.Subject()
}

// RenderQuery renders the report with commit lines separated by newlines.
func (r *TextRenderer) RenderQuery(q *history.Query, skip history.SkipMatcher) string {
	return renderReport(q.Heading(), q.Filters.Summary(), renderCommits(r, q, skip), "\n")
}
