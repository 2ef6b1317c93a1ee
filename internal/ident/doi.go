package ident

import "strings"

// doiPrefixes are the URL and inline markers a DOI may follow. Checked in
// order; longer prefixes come first so the scheme-qualified forms win.
var doiPrefixes = []string{
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"https://doi.org/",
	"http://doi.org/",
	"dx.doi.org/",
	"doi.org/",
	"doi:",
}

// doiTrailingCutset holds punctuation that commonly trails a DOI pasted into
// prose or markup and is never part of the identifier itself. The period is
// included because harvested DOIs often end a sentence or a references entry;
// a DOI whose suffix genuinely ends in "." loses that character.
const doiTrailingCutset = ")]}>,;:."

// NormalizeDOI extracts and canonicalizes a DOI from a URL or text fragment.
// The comparison form is lower-cased; callers that need the original case
// keep the raw value on the record.
func NormalizeDOI(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))

	candidate := ""
	for _, prefix := range doiPrefixes {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			candidate = lower[idx+len(prefix):]
			break
		}
	}
	if candidate == "" {
		// Bare DOI, no prefix at all.
		if strings.HasPrefix(lower, "10.") {
			candidate = lower
		} else {
			return "", false
		}
	}

	// Trim query parameters and fragment markers.
	if idx := strings.IndexAny(candidate, "?#"); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.TrimRight(candidate, doiTrailingCutset)

	if !isValidDOI(candidate) {
		return "", false
	}
	return candidate, true
}

// isValidDOI performs basic shape validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	// Must start with 10. and have a registrant suffix after the slash.
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	// The prefix between "10." and "/" must be numeric.
	for _, r := range doi[3:slashIdx] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
