// Package enrich fetches missing record metadata from remote catalog
// services for mentions the corpus could not match.
package enrich

import (
	"context"
	"errors"

	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/reference"
)

// ErrIdentifierNotFound is returned when the catalog definitively reports
// that an identifier does not exist. This is not a transient failure: the
// caller must surface it as Critical, never downgrade it to a stub record.
var ErrIdentifierNotFound = errors.New("identifier does not exist in catalog")

// Metadata is what a catalog returns for an identifier.
type Metadata struct {
	Title   string
	Authors []string
	Year    int
	Month   int
	Venue   string
	DOI     string
}

// Enricher resolves a normalized identifier to metadata. Implementations
// must honor the context for cancellation and deadlines, return
// ErrIdentifierNotFound for definitive misses, and any other error for
// transient failures (which leave the citation unmatched, not crashed).
type Enricher interface {
	Enrich(ctx context.Context, id ident.Identifier) (*Metadata, error)
}

// ToRecord builds a proposed corpus record from fetched metadata. The key is
// left empty; the corpus write side assigns it on acceptance.
func (m *Metadata) ToRecord(id ident.Identifier) reference.Record {
	rec := reference.Record{
		Type:      reference.TypeArticle,
		Title:     m.Title,
		Venue:     m.Venue,
		Published: reference.PublicationDate{Year: m.Year, Month: m.Month},
		DOI:       m.DOI,
	}
	for _, name := range m.Authors {
		rec.Authors = append(rec.Authors, reference.SplitName(name))
	}

	switch id.Kind {
	case ident.KindDOI:
		if rec.DOI == "" {
			rec.DOI = id.Value
		}
	case ident.KindArXiv:
		rec.ArXivID = id.Value
		rec.Type = reference.TypePreprint
	case ident.KindISBN:
		rec.ISBN = id.Value
		rec.Type = reference.TypeBook
	case ident.KindPMID:
		rec.PMID = id.Value
	case ident.KindURL:
		rec.URL = id.Value
		rec.Type = reference.TypeWeb
	}

	return rec
}
