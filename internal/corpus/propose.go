package corpus

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/refmark/internal/reference"
)

// ProposeKey derives a citekey for a record that has none, unique against
// the taken set. The preferred form is surname+year ("smith2020"); records
// missing either fall back to what they have, and collisions get a letter
// suffix ("smith2020b").
func ProposeKey(rec *reference.Record, taken map[string]bool) string {
	base := keyStem(rec)
	if !taken[base] {
		return base
	}
	for _, c := range "bcdefghijklmnopqrstuvwxyz" {
		candidate := base + string(c)
		if !taken[candidate] {
			return candidate
		}
	}
	// 26 collisions on one stem; fall back to numeric suffixes.
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

func keyStem(rec *reference.Record) string {
	var surname string
	if len(rec.Authors) > 0 {
		surname = slugify(rec.Authors[0].Last)
	}

	var year string
	if rec.Published.Year > 0 {
		year = fmt.Sprintf("%d", rec.Published.Year)
	}

	switch {
	case surname != "" && year != "":
		return surname + year
	case surname != "":
		return surname
	case year != "":
		return titleSlug(rec.Title) + year
	}
	if slug := titleSlug(rec.Title); slug != "" {
		return slug
	}
	return "record"
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func titleSlug(title string) string {
	words := strings.Fields(title)
	if len(words) > 2 {
		words = words[:2]
	}
	var parts []string
	for _, w := range words {
		if s := slugify(w); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "")
}

// Propose assigns a key to the record and appends it to the JSONL corpus at
// path. Acceptance of the proposed record is best-effort: the caller decides
// whether a failure here aborts the run.
func Propose(path string, rec reference.Record) (string, error) {
	existing, err := ReadAll(path)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(existing))
	for _, r := range existing {
		taken[r.Key] = true
	}

	rec.Key = ProposeKey(&rec, taken)
	if err := Append(path, rec); err != nil {
		return "", err
	}
	return rec.Key, nil
}
