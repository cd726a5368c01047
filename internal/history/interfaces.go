package history

import "context"

// Fetcher retrieves the full commit history for a query.
// Implementations append to q.Commits and return q.
type Fetcher interface {
	Fetch(ctx context.Context, q *Query) (*Query, error)
}
