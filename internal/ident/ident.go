// Package ident extracts and canonicalizes persistent identifiers from
// free-form URLs and text fragments.
//
// All functions are pure. A candidate segment that does not match the
// expected shape for its kind is simply not returned as an identifier;
// absence is a normal outcome, not an error. Normalization is idempotent:
// normalizing an already-normalized value returns it unchanged.
package ident

// Kind tags the identifier namespace a normalized value belongs to.
type Kind string

const (
	KindDOI   Kind = "doi"
	KindArXiv Kind = "arxiv"
	KindISBN  Kind = "isbn"
	KindPMID  Kind = "pmid"
	KindURL   Kind = "url"
)

// Identifier is a tagged, normalized identifier value. Immutable once built.
type Identifier struct {
	Kind  Kind
	Value string
}

// FromURL extracts every identifier the raw URL yields, ordered by match
// priority: DOI, arXiv, ISBN, PMID, then the plain-URL fallback. At most one
// identifier per kind is returned. The plain-URL fallback is always present
// for a non-empty input.
func FromURL(raw string) []Identifier {
	var ids []Identifier

	if doi, ok := NormalizeDOI(raw); ok {
		ids = append(ids, Identifier{Kind: KindDOI, Value: doi})
	}
	if arxiv, ok := NormalizeArXiv(raw); ok {
		ids = append(ids, Identifier{Kind: KindArXiv, Value: arxiv})
	}
	if isbn, ok := NormalizeISBN(raw); ok {
		ids = append(ids, Identifier{Kind: KindISBN, Value: isbn})
	}
	if pmid, ok := NormalizePMID(raw); ok {
		ids = append(ids, Identifier{Kind: KindPMID, Value: pmid})
	}
	if url := NormalizeURL(raw); url != "" {
		ids = append(ids, Identifier{Kind: KindURL, Value: url})
	}

	return ids
}
