package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/refmark/internal/corpus"
	"github.com/matsen/refmark/internal/enrich"
	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/reference"
	"github.com/matsen/refmark/internal/validate"
)

func testRecords() []reference.Record {
	return []reference.Record{
		{
			Key:   "smith2020",
			Type:  reference.TypeArticle,
			Title: "Phylogenetic Inference at Scale",
			Authors: []reference.Author{
				{First: "Jane", Last: "Smith"},
			},
			Published: reference.PublicationDate{Year: 2020},
			Venue:     "Systematic Biology",
			DOI:       "10.1093/sysbio/syaa001",
		},
		{
			Key:   "doe2023",
			Type:  reference.TypePreprint,
			Title: "Transformers for Sequence Alignment",
			Authors: []reference.Author{
				{First: "John", Last: "Doe"},
			},
			Published: reference.PublicationDate{Year: 2023},
			ArXivID:   "2301.04567",
		},
	}
}

const testDoc = `# Draft

Core results follow [Smith et al. 2020](https://doi.org/10.1093/sysbio/syaa001)
and the preprint [Doe 2023](https://arxiv.org/abs/2301.04567v2).

See also [the project blog](https://example.com/blog) for context.
`

func TestRunResolvesAndReplaces(t *testing.T) {
	src := strings.ReplaceAll(testDoc, "See also [the project blog](https://example.com/blog) for context.\n", "")

	out, err := Run(context.Background(), []byte(src), testRecords(), nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Report.Success {
		t.Fatalf("run failed: %s", out.Report.Human())
	}

	doc := string(out.Document)
	if !strings.Contains(doc, "[@smith2020]") {
		t.Errorf("document missing [@smith2020]:\n%s", doc)
	}
	if !strings.Contains(doc, "[@doe2023]") {
		t.Errorf("document missing [@doe2023]:\n%s", doc)
	}
	if strings.Contains(doc, "doi.org") {
		t.Errorf("original link survived replacement:\n%s", doc)
	}

	if !strings.Contains(out.Bibliography, "@article{smith2020,") {
		t.Errorf("bibliography missing smith2020:\n%s", out.Bibliography)
	}
	if !strings.Contains(out.Bibliography, "doe2023") {
		t.Errorf("bibliography missing doe2023:\n%s", out.Bibliography)
	}

	if out.Report.Stats.ByDOI != 1 || out.Report.Stats.ByArXiv != 1 {
		t.Errorf("stats = %+v", out.Report.Stats)
	}
	if out.Report.Replaced != 2 {
		t.Errorf("Replaced = %d, want 2", out.Report.Replaced)
	}
}

func TestRunFailsOnUnmatchedCitation(t *testing.T) {
	out, err := Run(context.Background(), []byte(testDoc), testRecords(), nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Report.Success {
		t.Fatal("run succeeded despite an unmatched citation")
	}
	if out.Document != nil {
		t.Error("document was produced despite failure")
	}
	if !out.Report.HasCritical() {
		t.Error("report has no critical issue")
	}

	found := false
	for _, issue := range out.Report.Issues {
		if strings.Contains(issue.Reason, "example.com/blog") {
			found = true
		}
	}
	if !found {
		t.Errorf("no issue names the failing mention: %+v", out.Report.Issues)
	}
}

func TestRunAllowPlaceholders(t *testing.T) {
	out, err := Run(context.Background(), []byte(testDoc), testRecords(), nil,
		Options{AllowPlaceholders: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Report.Success {
		t.Fatalf("run failed: %s", out.Report.Human())
	}

	doc := string(out.Document)
	if !strings.Contains(doc, "-unresolved]") {
		t.Errorf("placeholder citation missing from document:\n%s", doc)
	}

	warned := false
	for _, issue := range out.Report.Issues {
		if issue.Severity == validate.Warning &&
			strings.Contains(issue.Reason, "placeholder") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a provisional-key warning: %+v", out.Report.Issues)
	}

	// Placeholder citations have no record; the bibliography covers only
	// real matches.
	if strings.Contains(out.Bibliography, "unresolved") {
		t.Errorf("provisional key leaked into bibliography:\n%s", out.Bibliography)
	}
}

func TestRunFailsOnDefectiveMatchedRecord(t *testing.T) {
	records := testRecords()
	records[0].Title = "doi.org" // bare-domain title fails acceptance

	out, err := Run(context.Background(), []byte(testDoc), records, nil,
		Options{AllowPlaceholders: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Report.Success {
		t.Fatal("run succeeded with a defective matched record")
	}

	found := false
	for _, issue := range out.Report.Issues {
		if issue.Key == "smith2020" && issue.Severity == validate.Critical {
			found = true
		}
	}
	if !found {
		t.Errorf("no critical issue names smith2020: %+v", out.Report.Issues)
	}
}

type stubEnricher struct {
	metadata map[string]*enrich.Metadata
	notFound map[string]bool
}

func (s *stubEnricher) Enrich(_ context.Context, id ident.Identifier) (*enrich.Metadata, error) {
	if s.notFound[id.Value] {
		return nil, enrich.ErrIdentifierNotFound
	}
	if m, ok := s.metadata[id.Value]; ok {
		return m, nil
	}
	return nil, enrich.ErrIdentifierNotFound
}

func TestRunEnrichmentRecoversRecord(t *testing.T) {
	recordsPath := filepath.Join(t.TempDir(), "records.jsonl")
	if err := corpus.WriteAll(recordsPath, testRecords()); err != nil {
		t.Fatal(err)
	}

	src := `See [Garcia 2024](https://doi.org/10.5555/zzz123).` + "\n"

	enricher := &stubEnricher{
		metadata: map[string]*enrich.Metadata{
			"10.5555/zzz123": {
				Title:   "Recovered Results on Graph Kernels",
				Authors: []string{"Maria Garcia"},
				Year:    2024,
				Venue:   "Journal of Testing",
				DOI:     "10.5555/zzz123",
			},
		},
	}

	out, err := Run(context.Background(), []byte(src), testRecords(), enricher,
		Options{Enrich: true, RecordsPath: recordsPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Report.Success {
		t.Fatalf("run failed: %s", out.Report.Human())
	}

	doc := string(out.Document)
	if !strings.Contains(doc, "[@garcia2024]") {
		t.Errorf("recovered citation missing from document:\n%s", doc)
	}
	if !strings.Contains(out.Bibliography, "garcia2024") {
		t.Errorf("recovered record missing from bibliography:\n%s", out.Bibliography)
	}

	// The recovered record must have been appended to the corpus.
	stored, err := corpus.ReadAll(recordsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 3 {
		t.Fatalf("corpus has %d records, want 3", len(stored))
	}
	if stored[2].Key != "garcia2024" || stored[2].DOI != "10.5555/zzz123" {
		t.Errorf("appended record = %+v", stored[2])
	}
}

func TestRunEnrichmentNotFoundIsCritical(t *testing.T) {
	recordsPath := filepath.Join(t.TempDir(), "records.jsonl")
	if err := corpus.WriteAll(recordsPath, nil); err != nil {
		t.Fatal(err)
	}

	src := `See [Nobody 2024](https://doi.org/10.9999/ghost).` + "\n"
	enricher := &stubEnricher{notFound: map[string]bool{"10.9999/ghost": true}}

	out, err := Run(context.Background(), []byte(src), nil, enricher,
		Options{Enrich: true, AllowPlaceholders: true, RecordsPath: recordsPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Report.Success {
		t.Fatal("run succeeded despite a definitively unknown identifier")
	}

	found := false
	for _, issue := range out.Report.Issues {
		if issue.Severity == validate.Critical &&
			strings.Contains(issue.Reason, "not known to any metadata source") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing not-found issue: %+v", out.Report.Issues)
	}
}

func TestRunDuplicateIdentifierWarning(t *testing.T) {
	records := testRecords()
	dup := records[0]
	dup.Key = "smith2020-reprint"
	records = append(records, dup)

	src := `See [Smith et al. 2020](https://doi.org/10.1093/sysbio/syaa001).` + "\n"

	out, err := Run(context.Background(), []byte(src), records, nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Report.Success {
		t.Fatalf("duplicate identifier should warn, not fail: %s", out.Report.Human())
	}

	warned := false
	for _, issue := range out.Report.Issues {
		if issue.Severity == validate.Warning &&
			strings.Contains(issue.Reason, "duplicate") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("missing duplicate-identifier warning: %+v", out.Report.Issues)
	}

	// Last record wins: the citation resolves to the shadowing key.
	if !strings.Contains(string(out.Document), "[@smith2020-reprint]") {
		t.Errorf("expected last-write-wins key in document:\n%s", string(out.Document))
	}
}
