// Package mention models candidate reference mentions found in a source
// document.
package mention

import (
	"regexp"
	"strings"
	"unicode"
)

// Mention is a candidate reference prior to resolution. The document owns
// the underlying markup node; a mention only carries what the matcher and
// key resolver need.
type Mention struct {
	Text   string `json:"text"`   // Display text of the inline link
	Target string `json:"target"` // Raw target URL/locator

	// Parsed from the display text, best effort. Zero values when the text
	// carries no recognizable author/year.
	AuthorLast string `json:"author_last,omitempty"`
	Year       int    `json:"year,omitempty"`
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// New builds a Mention from a link's display text and target, parsing an
// author surname and year out of the text when present.
func New(text, target string) Mention {
	m := Mention{Text: strings.TrimSpace(text), Target: strings.TrimSpace(target)}
	m.AuthorLast, m.Year = parseAuthorYear(m.Text)
	return m
}

// parseAuthorYear extracts a leading author surname and a four-digit year
// from display text like "Smith et al. 2020", "Smith & Jones (2021)" or
// "Smith, 2020 - Some Title".
func parseAuthorYear(text string) (string, int) {
	year := 0
	if match := yearPattern.FindString(text); match != "" {
		year = int(match[0]-'0')*1000 + int(match[1]-'0')*100 + int(match[2]-'0')*10 + int(match[3]-'0')
	}

	author := leadingSurname(text)
	return author, year
}

// leadingSurname returns the first word of the text when it looks like a
// capitalized surname, stripped of trailing punctuation.
func leadingSurname(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	word := strings.TrimRight(fields[0], ",.;:&")
	if word == "" {
		return ""
	}

	runes := []rune(word)
	if !unicode.IsUpper(runes[0]) {
		return ""
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return ""
		}
	}
	return word
}
