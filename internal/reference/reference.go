// Package reference defines the core domain types for bibliographic records.
package reference

// RecordType classifies a bibliographic record.
type RecordType string

const (
	TypeArticle  RecordType = "article"
	TypeBook     RecordType = "book"
	TypePreprint RecordType = "preprint"
	TypeWeb      RecordType = "web"
)

// Record represents one entry in the bibliographic corpus.
//
// Key is assigned by the corpus and is opaque identity: the engine never
// re-derives or reformats the key of an existing record.
type Record struct {
	// Identity
	Key  string     `json:"key"`  // Corpus-assigned citation key
	Type RecordType `json:"type"` // article, book, preprint, web

	// Metadata
	Title   string   `json:"title"`
	Authors []Author `json:"authors"`
	Venue   string   `json:"venue,omitempty"` // Journal, conference, preprint server, or site

	// Publication Date
	Published PublicationDate `json:"published"`

	// Persistent identifiers (zero or more per record)
	DOI     string `json:"doi,omitempty"`
	ArXivID string `json:"arxiv_id,omitempty"`
	ISBN    string `json:"isbn,omitempty"`
	PMID    string `json:"pmid,omitempty"`
	URL     string `json:"url,omitempty"`
}

// PublicationDate represents a publication date with optional month and day.
type PublicationDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// HasIdentifier reports whether the record carries at least one persistent
// identifier or URL.
func (r *Record) HasIdentifier() bool {
	return r.DOI != "" || r.ArXivID != "" || r.ISBN != "" || r.PMID != "" || r.URL != ""
}
