package match

import (
	"github.com/matsen/refmark/internal/mention"
	"github.com/matsen/refmark/internal/reference"
)

// State is the resolution outcome of a citation. Modeled as an explicit
// tagged value rather than a nullable record so every consumer handles both
// cases.
type State string

const (
	StateMatched   State = "matched"
	StateUnmatched State = "unmatched"
)

// ResolvedCitation is the result of matching plus key resolution for one
// mention. It lives only for the duration of one pipeline run; only the
// bibliography entries derived from it are persisted.
type ResolvedCitation struct {
	Mention  mention.Mention
	Key      string
	Record   *reference.Record // nil while Unmatched and not yet enriched
	Strategy Strategy
	State    State
}

// UniqueRecords collapses citations to one record per key, preserving first
// occurrence order. Citations without a record are skipped.
func UniqueRecords(citations []*ResolvedCitation) []reference.Record {
	seen := make(map[string]bool)
	var records []reference.Record
	for _, c := range citations {
		if c.Record == nil || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		records = append(records, *c.Record)
	}
	return records
}
