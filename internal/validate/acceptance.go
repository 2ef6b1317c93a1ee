package validate

import (
	"fmt"
	"strings"

	"github.com/matsen/refmark/internal/reference"
)

// PlaceholderAuthor is the sentinel upstream enrichment writes when it could
// not determine a real author.
const PlaceholderAuthor = "Unknown"

// templatedTitleTypes are the content-type words that open a templated
// filler title like "Article by example.com", produced when enrichment could
// not extract real content.
var templatedTitleTypes = []string{
	"article",
	"page",
	"post",
	"website",
	"video",
	"book",
	"document",
}

// CheckRecord is the pre-acceptance gate, applied to a record immediately
// after it is proposed (matched or freshly enriched) and before anything
// downstream trusts it.
func CheckRecord(rec *reference.Record) []Issue {
	var issues []Issue

	if rec.Title == "" && !rec.HasIdentifier() {
		issues = append(issues, Issue{
			Severity: Critical,
			Reason:   "record has neither title nor any identifier",
			Key:      rec.Key,
		})
		return issues
	}

	if rec.Title == "" {
		issues = append(issues, Issue{
			Severity: Critical,
			Reason:   "record has empty title",
			Key:      rec.Key,
		})
	} else if isBareDomainTitle(rec.Title) {
		issues = append(issues, Issue{
			Severity: Critical,
			Reason:   fmt.Sprintf("title %q is a bare domain name", rec.Title),
			Key:      rec.Key,
		})
	} else if isTemplatedTitle(rec.Title) {
		issues = append(issues, Issue{
			Severity: Critical,
			Reason:   fmt.Sprintf("title %q is a templated placeholder", rec.Title),
			Key:      rec.Key,
		})
	}

	for _, a := range rec.Authors {
		if a.Last == PlaceholderAuthor || a.First == PlaceholderAuthor {
			issues = append(issues, Issue{
				Severity: Critical,
				Reason:   "author field is the placeholder sentinel",
				Key:      rec.Key,
			})
			break
		}
	}

	if rec.Published.Year == 0 {
		issues = append(issues, Issue{
			Severity: Warning,
			Reason:   "record has no publication year",
			Key:      rec.Key,
		})
	}

	return issues
}

// isBareDomainTitle reports whether a title is syntactically just a domain
// name: one dotted token with no spaces, like "example.com" or
// "www.example.org".
func isBareDomainTitle(title string) bool {
	t := strings.TrimSpace(strings.ToLower(title))
	if t == "" || strings.ContainsAny(t, " \t") {
		return false
	}
	t = strings.TrimPrefix(t, "www.")
	dot := strings.Index(t, ".")
	if dot <= 0 || dot == len(t)-1 {
		return false
	}
	// Both sides of the first dot must be plain alphanumeric/hyphen labels.
	for _, r := range t {
		if r != '.' && r != '-' && !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// isTemplatedTitle reports whether a title matches the generic filler
// pattern "<content-type> by <entity>".
func isTemplatedTitle(title string) bool {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) < 3 || fields[1] != "by" {
		return false
	}
	for _, contentType := range templatedTitleTypes {
		if fields[0] == contentType {
			return true
		}
	}
	return false
}
