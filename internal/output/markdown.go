package output

import "github.com/masmgr/githar-go/internal/history"

// MarkdownRenderer renders reports as Markdown.
type MarkdownRenderer struct{}

// RenderCommit renders the date followed by a link to the commit.
func (r *MarkdownRenderer) RenderCommit(c history.Commit) string {
	return c.Date() + "    [" + c.Subject() + "](" + c.URL() + ")"
}

// RenderQuery renders a "# <repository>" heading and one paragraph per commit.
func (r *MarkdownRenderer) RenderQuery(q *history.Query, skip history.SkipMatcher) string {
	return renderReport("# "+q.Heading(), q.Filters.Summary(), renderCommits(r, q, skip), "\n\n")
}
