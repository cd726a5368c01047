package history

import "context"

// MockFetcher is a test double for Fetcher.
// It appends each page in order, or returns Error without touching the query.
type MockFetcher struct {
	Pages [][]RawCommit
	Error error
	Calls []Identifier
}

// NewMockFetcher creates a MockFetcher serving the given pages.
func NewMockFetcher(pages [][]RawCommit, err error) *MockFetcher {
	return &MockFetcher{Pages: pages, Error: err}
}

// Fetch records the call and appends the canned pages.
func (m *MockFetcher) Fetch(_ context.Context, q *Query) (*Query, error) {
	m.Calls = append(m.Calls, q.Repository)
	if m.Error != nil {
		return nil, m.Error
	}
	for _, page := range m.Pages {
		q.Commits = append(q.Commits, page...)
	}
	return q, nil
}

// Compile-time interface conformance check.
var _ Fetcher = (*MockFetcher)(nil)
