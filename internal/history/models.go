package history

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Identifier names a remote repository as owner/name.
type Identifier struct {
	Owner string
	Name  string
}

// String returns the owner/name form.
func (id Identifier) String() string {
	return id.Owner + "/" + id.Name
}

// ParseIdentifier parses an owner/name repository identifier.
// Surrounding slashes and a trailing ".git" are ignored.
func ParseIdentifier(s string) (Identifier, error) {
	trimmed := strings.Trim(strings.TrimSpace(s), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Identifier{}, &IdentifierError{Value: s}
	}
	return Identifier{Owner: parts[0], Name: parts[1]}, nil
}

// IdentifierError reports a repository identifier that is not owner/name.
type IdentifierError struct {
	Value string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("invalid repository %q (expected owner/name)", e.Value)
}

// Filters restricts which commits the remote API returns.
// Empty fields are neither sent nor displayed.
type Filters struct {
	Author string `json:"author" yaml:"author"`
	Since  string `json:"since" yaml:"since"`
	Until  string `json:"until" yaml:"until"`
}

// Param is one non-empty filter as a query parameter.
type Param struct {
	Key   string
	Value string
}

// Params returns the non-empty filters in author, since, until order.
func (f Filters) Params() []Param {
	all := []Param{
		{Key: "author", Value: f.Author},
		{Key: "since", Value: f.Since},
		{Key: "until", Value: f.Until},
	}

	params := make([]Param, 0, len(all))
	for _, p := range all {
		if p.Value != "" {
			params = append(params, p)
		}
	}
	return params
}

// Summary renders the active filters as "key=value | key=value".
func (f Filters) Summary() string {
	params := f.Params()
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p.Key + "=" + p.Value
	}
	return strings.Join(pairs, " | ")
}

// Validate checks the date filters are YYYY-MM-DD and ordered.
func (f Filters) Validate() error {
	since, err := parseDate("since", f.Since)
	if err != nil {
		return err
	}
	until, err := parseDate("until", f.Until)
	if err != nil {
		return err
	}
	if since != nil && until != nil && since.After(*until) {
		return fmt.Errorf("since date %s is after until date %s", f.Since, f.Until)
	}
	return nil
}

func parseDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date: %s (expected YYYY-MM-DD)", name, s)
	}
	return &t, nil
}

// RawCommit is one entry of the commits endpoint response.
type RawCommit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url" validate:"required"`
	Commit  CommitDetail `json:"commit"`
	Parents []ParentRef  `json:"parents" validate:"required"`
}

// CommitDetail is the nested git commit object.
type CommitDetail struct {
	Message *string   `json:"message" validate:"required"`
	Author  Signature `json:"author"`
}

// Signature holds the author timestamp as sent by the API.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date" validate:"required,min=10"`
}

// ParentRef references a parent commit.
type ParentRef struct {
	SHA string `json:"sha"`
}

// Query accumulates the commits fetched for one repository.
// Commits keep the API order, newest first.
type Query struct {
	Repository Identifier
	Label      string // repository as the caller wrote it; empty means Repository.String()
	Filters    Filters
	Format     Format
	Commits    []RawCommit
}

// Format selects how a query is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// NewQuery creates an empty query for a repository, rendered as text unless
// Format is changed.
func NewQuery(repo Identifier, filters Filters) *Query {
	return &Query{Repository: repo, Filters: filters, Format: FormatText}
}

// Heading returns the text that heads the report.
func (q *Query) Heading() string {
	if q.Label != "" {
		return q.Label
	}
	return q.Repository.String()
}

// Records returns the non-merge commits oldest first, dropping any whose
// subject matches skip.
func (q *Query) Records(skip SkipMatcher) []Commit {
	records := make([]Commit, 0, len(q.Commits))
	for i := len(q.Commits) - 1; i >= 0; i-- {
		c := Commit{raw: q.Commits[i]}
		if c.IsMerge() || skip.Match(c.Subject()) {
			continue
		}
		records = append(records, c)
	}
	return records
}

// MergeCount returns the number of accumulated merge commits.
func (q *Query) MergeCount() int {
	n := 0
	for _, raw := range q.Commits {
		if len(raw.Parents) == 2 {
			n++
		}
	}
	return n
}

// Commit is a read-only view over a RawCommit.
type Commit struct {
	raw RawCommit
}

// NewCommit wraps raw metadata.
func NewCommit(raw RawCommit) Commit {
	return Commit{raw: raw}
}

// Date returns the calendar date of the author timestamp.
func (c Commit) Date() string {
	date := c.raw.Commit.Author.Date
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	if c.raw.Commit.Message == nil {
		return ""
	}
	message := *c.raw.Commit.Message
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = strings.TrimSuffix(message[:idx], "\r")
	}
	return message
}

// URL returns the web URL of the commit.
func (c Commit) URL() string {
	return c.raw.HTMLURL
}

// SHA returns the commit hash.
func (c Commit) SHA() string {
	return c.raw.SHA
}

// IsMerge reports whether the commit has exactly two parents.
// Octopus merges are deliberately not counted.
func (c Commit) IsMerge() bool {
	return len(c.raw.Parents) == 2
}
