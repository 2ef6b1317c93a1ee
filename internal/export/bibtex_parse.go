package export

import (
	"bufio"
	"regexp"
	"strings"
)

// Entry is a parsed BibTeX entry, the structured form the post-generation
// validation gate inspects. Field names are lower-cased.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Regex patterns for line-oriented BibTeX parsing. Entries produced by this
// package are one field per line, which is all the parser needs to handle.
var (
	// Match entry start: @type{key,
	entryStartPattern = regexp.MustCompile(`^@(\w+)\{([^,]+),`)
	// Match a field line: name = {value} or name = "value"
	fieldPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*=\s*[\{"](.*?)[\}"],?\s*$`)
)

// ParseEntries parses serialized BibTeX text into structured entries.
func ParseEntries(serialized string) []Entry {
	var entries []Entry
	var current *Entry

	scanner := bufio.NewScanner(strings.NewReader(serialized))
	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartPattern.FindStringSubmatch(line); len(matches) > 2 {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &Entry{
				Type:   strings.ToLower(matches[1]),
				Key:    strings.TrimSpace(matches[2]),
				Fields: make(map[string]string),
			}
			continue
		}

		if current == nil {
			continue
		}
		if matches := fieldPattern.FindStringSubmatch(line); len(matches) > 2 {
			current.Fields[strings.ToLower(matches[1])] = matches[2]
		}
	}

	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}
