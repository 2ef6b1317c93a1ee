package validate

import (
	"fmt"
	"strings"

	"github.com/matsen/refmark/internal/match"
)

// CheckFinal is the pre-finalization gate run over the full citation set
// immediately before the replacement engine. It fails fast on any citation
// whose key still carries the provisional marker, and on any Unmatched
// citation unless the caller explicitly opted into allowing placeholders.
//
// Earlier gates catch bad data; this gate catches data that was never
// actually resolved at all. The two failure modes are easy to conflate and
// must both be caught.
func CheckFinal(citations []*match.ResolvedCitation, allowPlaceholders bool) []Issue {
	var issues []Issue

	for _, c := range citations {
		if strings.Contains(c.Key, match.ProvisionalMarker) {
			if allowPlaceholders {
				issues = append(issues, Issue{
					Severity: Warning,
					Reason:   fmt.Sprintf("placeholder citation for %q allowed by caller", c.Mention.Text),
					Key:      c.Key,
				})
				continue
			}
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   fmt.Sprintf("provisional key still present for mention %q (%s)", c.Mention.Text, c.Mention.Target),
				Key:      c.Key,
			})
			continue
		}

		if c.State == match.StateUnmatched && !allowPlaceholders {
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   fmt.Sprintf("citation still unmatched for mention %q (%s)", c.Mention.Text, c.Mention.Target),
				Key:      c.Key,
			})
		}
	}

	return issues
}
