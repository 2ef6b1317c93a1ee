package match

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/refmark/internal/mention"
)

// ProvisionalMarker is the substring that tags a provisional key assigned to
// an unmatched mention. Every later stage detects unresolved citations by
// scanning for it, so it must never appear in corpus-assigned keys.
const ProvisionalMarker = "-unresolved"

// ResolveKey turns a match result into a resolved citation.
//
// For a matched mention the key is exactly the corpus-assigned key: keys are
// opaque identity, never re-derived or shape-checked here. For an unmatched
// mention a provisional key is derived from the mention's parsed author/year
// (or its display text) and tagged with ProvisionalMarker. taken tracks keys
// already assigned this run so provisional keys stay unique.
func ResolveKey(m mention.Mention, res Result, taken map[string]bool) *ResolvedCitation {
	if res.Record != nil {
		taken[res.Record.Key] = true
		return &ResolvedCitation{
			Mention:  m,
			Key:      res.Record.Key,
			Record:   res.Record,
			Strategy: res.Strategy,
			State:    StateMatched,
		}
	}

	base := deriveCitekey(m)
	key := uniqueKey(base+ProvisionalMarker, taken)
	taken[key] = true

	return &ResolvedCitation{
		Mention:  m,
		Key:      key,
		Strategy: StrategyNone,
		State:    StateUnmatched,
	}
}

// deriveCitekey builds a citekey stem from the mention: authorYEAR when both
// parsed, otherwise a slug of the display text.
func deriveCitekey(m mention.Mention) string {
	if m.AuthorLast != "" && m.Year > 0 {
		return sanitizeCitekey(strings.ToLower(m.AuthorLast)) + fmt.Sprintf("%d", m.Year)
	}
	if m.AuthorLast != "" {
		return sanitizeCitekey(strings.ToLower(m.AuthorLast))
	}
	if slug := textSlug(m.Text); slug != "" {
		return slug
	}
	return "unknown"
}

// textSlug joins the first few words of the display text into a lowercase
// citekey-safe slug.
func textSlug(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return sanitizeCitekey(strings.Join(fields, ""))
}

// sanitizeCitekey keeps only letters and digits so every key is safe in both
// citation markers and BibTeX entry heads.
func sanitizeCitekey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueKey returns base if unused, otherwise base-2, base-3, and so on.
func uniqueKey(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
