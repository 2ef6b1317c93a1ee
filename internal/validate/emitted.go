package validate

import (
	"fmt"

	"github.com/matsen/refmark/internal/export"
)

// MinKeyLength is the shortest emitted key considered useful.
const MinKeyLength = 3

// CheckBibliography is the post-generation gate, applied to the serialized
// bibliography after the emitter has produced it. It parses the emitted
// structure rather than trusting what the in-memory gate already cleared: a
// serialization bug can reintroduce a defect, and only validating the actual
// artifact prevents a false-negative success report.
func CheckBibliography(serialized string) []Issue {
	var issues []Issue

	for _, entry := range export.ParseEntries(serialized) {
		if len(entry.Key) < MinKeyLength {
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   fmt.Sprintf("emitted key %q shorter than %d characters", entry.Key, MinKeyLength),
				Key:      entry.Key,
			})
		}

		title := entry.Fields["title"]
		switch {
		case title == "":
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   "emitted entry has empty title field",
				Key:      entry.Key,
			})
		case isBareDomainTitle(title):
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   fmt.Sprintf("emitted title %q is a bare domain name", title),
				Key:      entry.Key,
			})
		case isTemplatedTitle(title):
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   fmt.Sprintf("emitted title %q is a templated placeholder", title),
				Key:      entry.Key,
			})
		}

		if entry.Fields["author"] == PlaceholderAuthor {
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   "emitted author field is the placeholder sentinel",
				Key:      entry.Key,
			})
		}

		// A missing year degrades the entry but does not falsify it; the
		// severity matches the acceptance gate's missing-year rule so a
		// record that clears one gate cannot fail the other on the same
		// field.
		if entry.Fields["year"] == "" || entry.Fields["year"] == "0" {
			issues = append(issues, Issue{
				Severity: Warning,
				Reason:   "emitted entry has no year",
				Key:      entry.Key,
			})
		}
	}

	return issues
}
