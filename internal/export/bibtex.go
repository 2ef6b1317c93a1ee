// Package export serializes resolved records into the bibliography entry
// format and parses emitted entries back for post-generation validation.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/refmark/internal/reference"
)

// ToBibTeX converts a record to a BibTeX entry keyed by its corpus key.
func ToBibTeX(rec reference.Record) string {
	entryType := determineEntryType(rec)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, rec.Key))

	// Authors
	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(rec.Authors)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	// Venue
	if rec.Venue != "" {
		fieldName := "journal"
		switch entryType {
		case "inproceedings":
			fieldName = "booktitle"
		case "book":
			fieldName = "publisher"
		case "misc":
			fieldName = "howpublished"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Venue)))
	}

	// Year (omitted when unknown)
	if rec.Published.Year > 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Published.Year))
	}

	// Month (optional)
	if rec.Published.Month > 0 {
		b.WriteString(fmt.Sprintf("  month = {%d},\n", rec.Published.Month))
	}

	// Identifiers (optional)
	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}
	if rec.ArXivID != "" {
		b.WriteString(fmt.Sprintf("  eprint = {%s},\n", rec.ArXivID))
	}
	if rec.ISBN != "" {
		b.WriteString(fmt.Sprintf("  isbn = {%s},\n", rec.ISBN))
	}
	if rec.PMID != "" {
		b.WriteString(fmt.Sprintf("  pmid = {%s},\n", rec.PMID))
	}
	if rec.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", rec.URL))
	}

	b.WriteString("}\n")

	return b.String()
}

// Bibliography serializes a record set as one entry per unique key, ordered
// lexicographically by key so repeated runs over an unchanged corpus produce
// byte-identical output. A later duplicate of a key is dropped.
func Bibliography(records []reference.Record) string {
	byKey := make(map[string]reference.Record)
	var keys []string
	for _, rec := range records {
		if _, seen := byKey[rec.Key]; seen {
			continue
		}
		byKey[rec.Key] = rec
		keys = append(keys, rec.Key)
	}
	sort.Strings(keys)

	var entries []string
	for _, key := range keys {
		entries = append(entries, ToBibTeX(byKey[key]))
	}
	return strings.Join(entries, "\n")
}

// determineEntryType returns the BibTeX entry type for a record.
func determineEntryType(rec reference.Record) string {
	switch rec.Type {
	case reference.TypeBook:
		return "book"
	case reference.TypeWeb:
		return "misc"
	case reference.TypePreprint:
		return "article"
	}

	venue := strings.ToLower(rec.Venue)

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	// Default to article
	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []reference.Author) string {
	var formatted []string
	for _, a := range authors {
		if a.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.Last, a.First))
		} else {
			formatted = append(formatted, a.Last)
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
