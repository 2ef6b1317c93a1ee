package validate

import (
	"strings"
	"testing"

	"github.com/matsen/refmark/internal/export"
	"github.com/matsen/refmark/internal/match"
	"github.com/matsen/refmark/internal/mention"
	"github.com/matsen/refmark/internal/reference"
)

func goodRecord() reference.Record {
	return reference.Record{
		Key:       "Smith2020-ab",
		Type:      reference.TypeArticle,
		Title:     "A Real Paper Title",
		Authors:   []reference.Author{{First: "Jane", Last: "Smith"}},
		Published: reference.PublicationDate{Year: 2020},
		DOI:       "10.1234/abcd",
	}
}

func TestCheckRecordCleanRecord(t *testing.T) {
	rec := goodRecord()
	if issues := CheckRecord(&rec); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}

func TestCheckRecordDefects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*reference.Record)
		severity Severity
		reason   string // substring expected in the reason
	}{
		{
			"placeholder author",
			func(r *reference.Record) { r.Authors = []reference.Author{{Last: PlaceholderAuthor}} },
			Critical, "placeholder sentinel",
		},
		{
			"empty title",
			func(r *reference.Record) { r.Title = "" },
			Critical, "empty title",
		},
		{
			"bare domain title",
			func(r *reference.Record) { r.Title = "www.example.com" },
			Critical, "bare domain",
		},
		{
			"templated title",
			func(r *reference.Record) { r.Title = "Article by example.com" },
			Critical, "templated placeholder",
		},
		{
			"missing year",
			func(r *reference.Record) { r.Published.Year = 0 },
			Warning, "no publication year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := goodRecord()
			tt.mutate(&rec)

			issues := CheckRecord(&rec)
			if len(issues) == 0 {
				t.Fatal("expected at least one issue")
			}
			found := false
			for _, issue := range issues {
				if strings.Contains(issue.Reason, tt.reason) {
					found = true
					if issue.Severity != tt.severity {
						t.Errorf("severity = %s, want %s", issue.Severity, tt.severity)
					}
					if issue.Key != rec.Key {
						t.Errorf("issue key = %q, want %q", issue.Key, rec.Key)
					}
				}
			}
			if !found {
				t.Errorf("no issue mentioning %q in %+v", tt.reason, issues)
			}
		})
	}
}

func TestCheckRecordNoTitleNoIdentifier(t *testing.T) {
	rec := reference.Record{Key: "empty-rec"}
	issues := CheckRecord(&rec)
	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d", len(issues))
	}
	if issues[0].Severity != Critical || !strings.Contains(issues[0].Reason, "neither title nor any identifier") {
		t.Errorf("unexpected issue %+v", issues[0])
	}
}

func TestCheckRecordRealTitlesPass(t *testing.T) {
	// Titles that superficially resemble defects must not be flagged.
	titles := []string{
		"Standing by Decisions: Precedent in Law",
		"go.dev and the module ecosystem", // contains a domain but has spaces
		"Attention Is All You Need",
	}
	for _, title := range titles {
		rec := goodRecord()
		rec.Title = title
		if issues := CheckRecord(&rec); len(issues) != 0 {
			t.Errorf("title %q wrongly flagged: %+v", title, issues)
		}
	}
}

func TestCheckBibliographyCatchesSerializedDefects(t *testing.T) {
	// A record that passes the in-memory gate but whose serialization lost
	// the title must be caught by the artifact gate.
	serialized := "@article{Smith2020-ab,\n  author = {Smith, Jane},\n  title = {},\n  year = {2020},\n}\n"

	issues := CheckBibliography(serialized)
	if !HasCritical(issues) {
		t.Fatal("expected a critical issue for an empty serialized title")
	}
}

func TestCheckBibliographyMissingYearIsWarning(t *testing.T) {
	// A year-less entry degrades the bibliography but must not fail it;
	// the severity matches CheckRecord's missing-year rule.
	serialized := "@misc{site2020-xy,\n  title = {A Useful Resource},\n  howpublished = {Example Site},\n}\n"

	issues := CheckBibliography(serialized)
	if HasCritical(issues) {
		t.Fatalf("year-less entry flagged critical: %+v", issues)
	}
	found := false
	for _, issue := range issues {
		if strings.Contains(issue.Reason, "no year") {
			found = true
			if issue.Severity != Warning {
				t.Errorf("severity = %s, want warning", issue.Severity)
			}
		}
	}
	if !found {
		t.Errorf("missing year not reported: %+v", issues)
	}
}

func TestCheckBibliographyShortKey(t *testing.T) {
	serialized := "@article{ab,\n  title = {Fine Title},\n  year = {2020},\n}\n"

	issues := CheckBibliography(serialized)
	found := false
	for _, issue := range issues {
		if strings.Contains(issue.Reason, "shorter than") {
			found = true
			if issue.Severity != Critical {
				t.Errorf("severity = %s, want critical", issue.Severity)
			}
		}
	}
	if !found {
		t.Errorf("short key not flagged: %+v", issues)
	}
}

func TestCheckBibliographyCleanRoundTrip(t *testing.T) {
	serialized := export.Bibliography([]reference.Record{goodRecord()})
	if issues := CheckBibliography(serialized); len(issues) != 0 {
		t.Errorf("clean bibliography flagged: %+v", issues)
	}
}

func TestGatesAgreeOnYearlessRecord(t *testing.T) {
	// A record the acceptance gate admits with only a warning must not be
	// failed by the artifact gate over the same missing field.
	rec := goodRecord()
	rec.Published = reference.PublicationDate{}

	if HasCritical(CheckRecord(&rec)) {
		t.Fatal("acceptance gate rejected a year-less record")
	}
	serialized := export.Bibliography([]reference.Record{rec})
	if issues := CheckBibliography(serialized); HasCritical(issues) {
		t.Errorf("artifact gate rejected what the acceptance gate admitted: %+v", issues)
	}
}

func TestCheckFinalRejectsProvisionalKeys(t *testing.T) {
	citations := []*match.ResolvedCitation{
		{Mention: mention.New("Smith 2020", "https://a.example/x"), Key: "Smith2020-ab", State: match.StateMatched},
		{Mention: mention.New("Lost 2021", "https://b.example/y"), Key: "lost2021" + match.ProvisionalMarker, State: match.StateUnmatched},
		{Mention: mention.New("Gone 2022", "https://c.example/z"), Key: "gone2022" + match.ProvisionalMarker, State: match.StateUnmatched},
	}

	issues := CheckFinal(citations, false)
	if !HasCritical(issues) {
		t.Fatal("expected critical issues")
	}

	// The rejection must name every offending key.
	var keys []string
	for _, issue := range issues {
		keys = append(keys, issue.Key)
	}
	for _, want := range []string{"lost2021" + match.ProvisionalMarker, "gone2022" + match.ProvisionalMarker} {
		found := false
		for _, k := range keys {
			if k == want {
				found = true
			}
		}
		if !found {
			t.Errorf("offending key %q not named in %v", want, keys)
		}
	}
}

func TestCheckFinalAllowPlaceholders(t *testing.T) {
	citations := []*match.ResolvedCitation{
		{Mention: mention.New("Lost 2021", "https://b.example/y"), Key: "lost2021" + match.ProvisionalMarker, State: match.StateUnmatched},
	}

	issues := CheckFinal(citations, true)
	if HasCritical(issues) {
		t.Errorf("placeholders explicitly allowed, got critical: %+v", issues)
	}
	if len(issues) == 0 {
		t.Error("allowed placeholder should still surface a warning")
	}
}

func TestCheckFinalCleanSet(t *testing.T) {
	citations := []*match.ResolvedCitation{
		{Mention: mention.New("Smith 2020", "https://a.example/x"), Key: "Smith2020-ab", State: match.StateMatched},
	}
	if issues := CheckFinal(citations, false); len(issues) != 0 {
		t.Errorf("clean set flagged: %+v", issues)
	}
}
