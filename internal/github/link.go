package github

import (
	"strings"

	"github.com/tomnomnom/linkheader"
)

// nextLink returns the target of the rel="next" link among the given Link
// header values, or "" when there is none. Relation types compare
// case-insensitively.
func nextLink(headers []string) string {
	for _, link := range linkheader.ParseMultiple(headers) {
		for _, rel := range link.Rels() {
			if strings.EqualFold(rel, "next") {
				return link.URL
			}
		}
	}
	return ""
}
