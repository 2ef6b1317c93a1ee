package ident

import "strings"

// pmidSegments are the path segments that precede a PubMed identifier.
var pmidSegments = []string{
	"pubmed.ncbi.nlm.nih.gov/",
	"ncbi.nlm.nih.gov/pubmed/",
	"pmid:",
}

// NormalizePMID extracts a PubMed identifier from a URL or a bare numeric
// identifier. The value must be fully numeric to be accepted.
func NormalizePMID(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))

	candidate := ""
	for _, segment := range pmidSegments {
		if idx := strings.Index(lower, segment); idx >= 0 {
			candidate = lower[idx+len(segment):]
			break
		}
	}
	if candidate == "" {
		// A bare identifier, as stored in corpus records.
		candidate = lower
	}

	if idx := strings.IndexAny(candidate, "?#"); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.TrimSuffix(candidate, "/")

	if !isAllDigits(candidate) {
		return "", false
	}
	return candidate, true
}
