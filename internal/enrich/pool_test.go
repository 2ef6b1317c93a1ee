package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/match"
	"github.com/matsen/refmark/internal/mention"
)

// fakeEnricher returns canned metadata per DOI and records call order.
type fakeEnricher struct {
	mu       sync.Mutex
	calls    []string
	metadata map[string]*Metadata
	notFound map[string]bool
	failWith error
}

func (f *fakeEnricher) Enrich(ctx context.Context, id ident.Identifier) (*Metadata, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id.Value)
	f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.notFound[id.Value] {
		return nil, ErrIdentifierNotFound
	}
	if meta, ok := f.metadata[id.Value]; ok {
		return meta, nil
	}
	return nil, errors.New("transient failure")
}

func unmatchedCitation(text, target string) *match.ResolvedCitation {
	return &match.ResolvedCitation{
		Mention: mention.New(text, target),
		Key:     "x" + match.ProvisionalMarker,
		State:   match.StateUnmatched,
	}
}

func TestEnrichAllProposesRecords(t *testing.T) {
	enricher := &fakeEnricher{
		metadata: map[string]*Metadata{
			"10.1234/abcd": {
				Title:   "Recovered Paper",
				Authors: []string{"Jane Smith", "Ade Okonkwo"},
				Year:    2020,
				Venue:   "Journal of Examples",
				DOI:     "10.1234/abcd",
			},
		},
	}

	citations := []*match.ResolvedCitation{
		unmatchedCitation("Smith 2020", "https://doi.org/10.1234/abcd"),
	}

	outcomes := EnrichAll(context.Background(), citations, enricher, 2, time.Second)
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}

	rec := outcomes[0].Record
	if rec == nil {
		t.Fatal("expected a proposed record")
	}
	if rec.Title != "Recovered Paper" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.DOI != "10.1234/abcd" {
		t.Errorf("DOI = %q", rec.DOI)
	}
	if len(rec.Authors) != 2 || rec.Authors[0].Last != "Smith" {
		t.Errorf("unexpected authors: %+v", rec.Authors)
	}
	if rec.Key != "" {
		t.Errorf("proposed record must not carry a key, got %q", rec.Key)
	}
}

func TestEnrichAllSkipsMatchedAndPlainURLCitations(t *testing.T) {
	enricher := &fakeEnricher{}

	matched := &match.ResolvedCitation{
		Mention: mention.New("Smith 2020", "https://doi.org/10.9999/zzzz"),
		Key:     "Smith2020-ab",
		State:   match.StateMatched,
	}
	plainURL := unmatchedCitation("a blog", "https://blog.example.com/post")

	outcomes := EnrichAll(context.Background(), []*match.ResolvedCitation{matched, plainURL}, enricher, 2, time.Second)

	if len(enricher.calls) != 0 {
		t.Errorf("expected no catalog calls, got %v", enricher.calls)
	}
	for _, o := range outcomes {
		if o.Record != nil || o.Err != nil {
			t.Errorf("unexpected outcome: %+v", o)
		}
	}
}

func TestEnrichAllNotFoundIsDefinitive(t *testing.T) {
	enricher := &fakeEnricher{notFound: map[string]bool{"10.1234/gone": true}}

	citations := []*match.ResolvedCitation{
		unmatchedCitation("Ghost 2020", "https://doi.org/10.1234/gone"),
	}

	outcomes := EnrichAll(context.Background(), citations, enricher, 1, time.Second)

	if !outcomes[0].NotFound {
		t.Error("expected NotFound outcome")
	}
	if !errors.Is(outcomes[0].Err, ErrIdentifierNotFound) {
		t.Errorf("expected ErrIdentifierNotFound, got %v", outcomes[0].Err)
	}
}

func TestEnrichAllTransientFailureLeavesUnmatched(t *testing.T) {
	enricher := &fakeEnricher{failWith: errors.New("connection reset")}

	citations := []*match.ResolvedCitation{
		unmatchedCitation("Smith 2020", "https://doi.org/10.1234/abcd"),
	}

	outcomes := EnrichAll(context.Background(), citations, enricher, 1, time.Second)

	o := outcomes[0]
	if o.Record != nil {
		t.Error("transient failure must not propose a record")
	}
	if o.NotFound {
		t.Error("transient failure is not a definitive miss")
	}
	if o.Err == nil {
		t.Error("expected the transient error to be reported")
	}
	if o.Citation.State != match.StateUnmatched {
		t.Errorf("citation state = %s, want unmatched", o.Citation.State)
	}
}

func TestEnrichAllOutcomesMatchInputOrder(t *testing.T) {
	// Completion order is arbitrary under concurrency; outcomes must still
	// line up with the input slice.
	enricher := &fakeEnricher{
		metadata: map[string]*Metadata{
			"10.1111/aaaa": {Title: "A", Year: 2020},
			"10.2222/bbbb": {Title: "B", Year: 2021},
			"10.3333/cccc": {Title: "C", Year: 2022},
		},
	}

	citations := []*match.ResolvedCitation{
		unmatchedCitation("A", "https://doi.org/10.1111/aaaa"),
		unmatchedCitation("B", "https://doi.org/10.2222/bbbb"),
		unmatchedCitation("C", "https://doi.org/10.3333/cccc"),
	}

	outcomes := EnrichAll(context.Background(), citations, enricher, 3, time.Second)

	for i, want := range []string{"A", "B", "C"} {
		if outcomes[i].Record == nil || outcomes[i].Record.Title != want {
			t.Errorf("outcome %d: expected title %q, got %+v", i, want, outcomes[i].Record)
		}
	}
}
