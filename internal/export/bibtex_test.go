package export

import (
	"strings"
	"testing"

	"github.com/matsen/refmark/internal/reference"
)

func sampleRecord() reference.Record {
	return reference.Record{
		Key:   "Smith2020-ab",
		Type:  reference.TypeArticle,
		Title: "On Generalization & Other Matters",
		Authors: []reference.Author{
			{First: "Jane", Last: "Smith"},
			{Last: "Okonkwo"},
		},
		Venue:     "Journal of Examples",
		Published: reference.PublicationDate{Year: 2020, Month: 3},
		DOI:       "10.1234/abcd",
	}
}

func TestToBibTeX(t *testing.T) {
	got := ToBibTeX(sampleRecord())

	wants := []string{
		"@article{Smith2020-ab,",
		"author = {Smith, Jane and Okonkwo},",
		`title = {On Generalization \& Other Matters},`,
		"journal = {Journal of Examples},",
		"year = {2020},",
		"month = {3},",
		"doi = {10.1234/abcd},",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestToBibTeXOmitsUnknownYear(t *testing.T) {
	rec := sampleRecord()
	rec.Published = reference.PublicationDate{}

	got := ToBibTeX(rec)
	if strings.Contains(got, "year =") {
		t.Errorf("year field emitted for unknown year:\n%s", got)
	}
}

func TestToBibTeXEntryTypes(t *testing.T) {
	tests := []struct {
		name string
		rec  reference.Record
		want string
	}{
		{"book", reference.Record{Key: "k", Type: reference.TypeBook, Title: "T"}, "@book{"},
		{"web", reference.Record{Key: "k", Type: reference.TypeWeb, Title: "T"}, "@misc{"},
		{"preprint", reference.Record{Key: "k", Type: reference.TypePreprint, Title: "T", Venue: "arXiv"}, "@article{"},
		{"proceedings venue", reference.Record{Key: "k", Type: reference.TypeArticle, Title: "T", Venue: "Proceedings of X"}, "@inproceedings{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToBibTeX(tt.rec); !strings.HasPrefix(got, tt.want) {
				t.Errorf("entry head = %q, want prefix %q", strings.SplitN(got, "\n", 2)[0], tt.want)
			}
		})
	}
}

func TestBibliographyDeterministicAndDeduplicated(t *testing.T) {
	a := sampleRecord()
	b := reference.Record{Key: "Adams2019-xy", Title: "Earlier Work", Published: reference.PublicationDate{Year: 2019}}

	// Duplicate key and shuffled input order.
	first := Bibliography([]reference.Record{a, b, a})
	second := Bibliography([]reference.Record{b, a})

	if first != second {
		t.Error("bibliography output differs across runs with the same record set")
	}
	if strings.Count(first, "@") != 2 {
		t.Errorf("expected 2 entries, got %d", strings.Count(first, "@"))
	}
	if strings.Index(first, "Adams2019-xy") > strings.Index(first, "Smith2020-ab") {
		t.Error("entries not in lexicographic key order")
	}
}

func TestParseEntriesRoundTrip(t *testing.T) {
	serialized := Bibliography([]reference.Record{sampleRecord()})
	entries := ParseEntries(serialized)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Type != "article" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.Key != "Smith2020-ab" {
		t.Errorf("Key = %q", e.Key)
	}
	if e.Fields["year"] != "2020" {
		t.Errorf("year = %q", e.Fields["year"])
	}
	if e.Fields["doi"] != "10.1234/abcd" {
		t.Errorf("doi = %q", e.Fields["doi"])
	}
	if !strings.Contains(e.Fields["author"], "Smith, Jane") {
		t.Errorf("author = %q", e.Fields["author"])
	}
}

func TestParseEntriesMultiple(t *testing.T) {
	serialized := "@article{a1,\n  title = {One},\n  year = {2020},\n}\n\n@book{b2,\n  title = {Two},\n  year = {2021},\n}\n"
	entries := ParseEntries(serialized)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "a1" || entries[1].Key != "b2" {
		t.Errorf("unexpected keys: %s, %s", entries[0].Key, entries[1].Key)
	}
	if entries[1].Type != "book" {
		t.Errorf("second entry type = %q", entries[1].Type)
	}
}
