package ident

import "strings"

// arxivSegments are the path segments that precede an arXiv identifier in
// abstract, full-text and PDF view URLs.
var arxivSegments = []string{
	"arxiv.org/abs/",
	"arxiv.org/pdf/",
	"arxiv.org/html/",
	"arxiv:",
}

// NormalizeArXiv extracts and canonicalizes an arXiv identifier from a URL
// or a bare identifier. Version-specific forms (a trailing "v2", "v13", ...)
// collapse to the same identifier, and view-type variants (abs, pdf, html)
// are equivalent.
func NormalizeArXiv(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))

	candidate := ""
	for _, segment := range arxivSegments {
		if idx := strings.Index(lower, segment); idx >= 0 {
			candidate = lower[idx+len(segment):]
			break
		}
	}
	if candidate == "" {
		// A bare identifier, as stored in corpus records. Anything that is
		// not id-shaped fails validation below.
		candidate = lower
	}

	// Trim query parameters, fragment markers, and any further path.
	if idx := strings.IndexAny(candidate, "?#/"); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.TrimSuffix(candidate, ".pdf")
	candidate = stripVersionSuffix(candidate)

	if !isValidArXivID(candidate) {
		return "", false
	}
	return candidate, true
}

// stripVersionSuffix removes a trailing version marker: a 'v' followed by
// one or more digits.
func stripVersionSuffix(id string) string {
	idx := strings.LastIndex(id, "v")
	if idx <= 0 || idx == len(id)-1 {
		return id
	}
	for _, r := range id[idx+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:idx]
}

// isValidArXivID validates the modern arXiv identifier shape: a four-digit
// YYMM group, a period, and a four- or five-digit sequence number.
func isValidArXivID(id string) bool {
	dot := strings.Index(id, ".")
	if dot == -1 {
		return false
	}
	group, seq := id[:dot], id[dot+1:]
	if len(group) != 4 {
		return false
	}
	if len(seq) != 4 && len(seq) != 5 {
		return false
	}
	return isAllDigits(group) && isAllDigits(seq)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
