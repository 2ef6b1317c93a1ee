package ident

import "strings"

// isbnSegments are the vendor product-page path segments that precede a book
// identifier.
var isbnSegments = []string{
	"/dp/",
	"/gp/product/",
	"isbn:",
}

// NormalizeISBN extracts a book identifier from a vendor product URL. All
// non-digit characters are stripped; only 10- or 13-digit results are
// accepted.
//
// The 10- and 13-digit forms of the same book are distinct identifiers here:
// the engine indexes exactly what the corpus stores and does not convert
// between forms. A mention that yields the 10-digit form while the corpus
// stores only the 13-digit form will not match by ISBN.
func NormalizeISBN(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))

	candidate := ""
	for _, segment := range isbnSegments {
		if idx := strings.Index(lower, segment); idx >= 0 {
			candidate = lower[idx+len(segment):]
			break
		}
	}
	if candidate == "" {
		// A bare identifier, possibly hyphen- or space-separated as stored
		// in corpus records.
		stripped := strings.Map(func(r rune) rune {
			if r == '-' || r == ' ' {
				return -1
			}
			return r
		}, lower)
		if !isAllDigits(stripped) {
			return "", false
		}
		candidate = stripped
	}

	if idx := strings.IndexAny(candidate, "?#/"); idx >= 0 {
		candidate = candidate[:idx]
	}

	var digits strings.Builder
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	isbn := digits.String()
	if len(isbn) != 10 && len(isbn) != 13 {
		return "", false
	}
	return isbn, true
}
