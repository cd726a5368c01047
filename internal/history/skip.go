package history

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// SkipMatcher drops commits whose subject matches any of its glob patterns.
// The zero value matches nothing.
type SkipMatcher struct {
	patterns []string
}

// NewSkipMatcher validates the patterns and returns a matcher.
func NewSkipMatcher(patterns []string) (SkipMatcher, error) {
	kept := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return SkipMatcher{}, fmt.Errorf("invalid skip pattern %q", pattern)
		}
		kept = append(kept, pattern)
	}
	return SkipMatcher{patterns: kept}, nil
}

// Patterns returns the active patterns.
func (m SkipMatcher) Patterns() []string {
	return m.patterns
}

// Match reports whether subject matches any pattern.
func (m SkipMatcher) Match(subject string) bool {
	for _, pattern := range m.patterns {
		// Patterns were validated, so the error is always nil here.
		matched, _ := doublestar.Match(pattern, subject)
		if matched {
			return true
		}
	}
	return false
}
