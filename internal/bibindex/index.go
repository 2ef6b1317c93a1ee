// Package bibindex builds identifier lookup structures from a corpus
// snapshot.
package bibindex

import (
	"github.com/sirupsen/logrus"

	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/reference"
)

// Conflict records two corpus records that normalize to the same identifier
// of the same kind. This is a defect in the corpus, not in the engine: the
// later record wins deterministically (snapshot iteration order) and the
// collision is reported rather than silently resolved.
type Conflict struct {
	Kind      ident.Kind `json:"kind"`
	Value     string     `json:"value"`
	LoserKey  string     `json:"loser_key"`
	WinnerKey string     `json:"winner_key"`
}

// Index holds one lookup map per identifier kind, keyed by the normalized
// identifier value. Read-only after Build; safe to reuse across documents.
type Index struct {
	byDOI   map[string]*reference.Record
	byArXiv map[string]*reference.Record
	byISBN  map[string]*reference.Record
	byPMID  map[string]*reference.Record
	byURL   map[string]*reference.Record

	conflicts []Conflict
}

// Build indexes a snapshot of corpus records in a single pass. Records whose
// identifier fields fail normalization are indexed under the kinds that do
// normalize; a record with no usable identifiers is simply unreachable by
// the matcher.
func Build(records []reference.Record) *Index {
	idx := &Index{
		byDOI:   make(map[string]*reference.Record),
		byArXiv: make(map[string]*reference.Record),
		byISBN:  make(map[string]*reference.Record),
		byPMID:  make(map[string]*reference.Record),
		byURL:   make(map[string]*reference.Record),
	}

	for i := range records {
		rec := &records[i]

		if rec.DOI != "" {
			if doi, ok := ident.NormalizeDOI(rec.DOI); ok {
				idx.insert(idx.byDOI, ident.KindDOI, doi, rec)
			}
		}
		if rec.ArXivID != "" {
			if arxiv, ok := ident.NormalizeArXiv(rec.ArXivID); ok {
				idx.insert(idx.byArXiv, ident.KindArXiv, arxiv, rec)
			}
		}
		if rec.ISBN != "" {
			if isbn, ok := ident.NormalizeISBN(rec.ISBN); ok {
				idx.insert(idx.byISBN, ident.KindISBN, isbn, rec)
			}
		}
		if rec.PMID != "" {
			if pmid, ok := ident.NormalizePMID(rec.PMID); ok {
				idx.insert(idx.byPMID, ident.KindPMID, pmid, rec)
			}
		}
		if rec.URL != "" {
			if url := ident.NormalizeURL(rec.URL); url != "" {
				idx.insert(idx.byURL, ident.KindURL, url, rec)
			}
		}
	}

	return idx
}

// insert adds a record under a normalized identifier, recording and logging
// a conflict when the slot is already taken. Last write wins.
func (idx *Index) insert(m map[string]*reference.Record, kind ident.Kind, value string, rec *reference.Record) {
	if prev, exists := m[value]; exists && prev.Key != rec.Key {
		conflict := Conflict{
			Kind:      kind,
			Value:     value,
			LoserKey:  prev.Key,
			WinnerKey: rec.Key,
		}
		idx.conflicts = append(idx.conflicts, conflict)
		logrus.WithFields(logrus.Fields{
			"kind":   string(kind),
			"value":  value,
			"loser":  prev.Key,
			"winner": rec.Key,
		}).Warn("corpus inconsistency: duplicate identifier, later record wins")
	}
	m[value] = rec
}

// Lookup returns the record indexed under the given normalized identifier,
// or nil if none is.
func (idx *Index) Lookup(id ident.Identifier) *reference.Record {
	switch id.Kind {
	case ident.KindDOI:
		return idx.byDOI[id.Value]
	case ident.KindArXiv:
		return idx.byArXiv[id.Value]
	case ident.KindISBN:
		return idx.byISBN[id.Value]
	case ident.KindPMID:
		return idx.byPMID[id.Value]
	case ident.KindURL:
		return idx.byURL[id.Value]
	}
	return nil
}

// Conflicts returns the corpus inconsistencies found during Build, in
// snapshot order.
func (idx *Index) Conflicts() []Conflict {
	return idx.conflicts
}

// Size returns the number of indexed identifiers per kind.
func (idx *Index) Size() map[ident.Kind]int {
	return map[ident.Kind]int{
		ident.KindDOI:   len(idx.byDOI),
		ident.KindArXiv: len(idx.byArXiv),
		ident.KindISBN:  len(idx.byISBN),
		ident.KindPMID:  len(idx.byPMID),
		ident.KindURL:   len(idx.byURL),
	}
}
