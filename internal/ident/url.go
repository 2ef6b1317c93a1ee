package ident

import "strings"

// NormalizeURL canonicalizes a URL for last-resort comparison: lower-case,
// no scheme, no leading "www.", no trailing slash, no query string or
// fragment. URLs drift over time, so this is the lowest-priority strategy;
// it is also the single normalization the replacement engine shares with the
// matcher so the two never disagree about what counts as the same URL.
func NormalizeURL(raw string) string {
	url := strings.ToLower(strings.TrimSpace(raw))

	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "www.")

	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	url = strings.TrimSuffix(url, "/")

	return url
}
