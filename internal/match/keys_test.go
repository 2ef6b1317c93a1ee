package match

import (
	"strings"
	"testing"

	"github.com/matsen/refmark/internal/mention"
	"github.com/matsen/refmark/internal/reference"
)

func TestResolveKeyMatchedUsesCorpusKeyVerbatim(t *testing.T) {
	// Corpus keys are opaque identity; even odd-looking keys pass through
	// untouched.
	rec := &reference.Record{Key: "weird.Key_2020-xx", Title: "Paper"}
	m := mention.New("Smith 2020", "https://doi.org/10.1234/abcd")

	c := ResolveKey(m, Result{Record: rec, Strategy: StrategyDOI}, map[string]bool{})

	if c.State != StateMatched {
		t.Errorf("State = %s, want %s", c.State, StateMatched)
	}
	if c.Key != "weird.Key_2020-xx" {
		t.Errorf("Key = %q, want corpus key verbatim", c.Key)
	}
	if c.Record != rec {
		t.Error("Record should be the matched corpus record")
	}
}

func TestResolveKeyUnmatchedDerivesProvisionalKey(t *testing.T) {
	m := mention.New("Smith et al. 2020", "https://nowhere.example/x")

	c := ResolveKey(m, Result{Strategy: StrategyNone}, map[string]bool{})

	if c.State != StateUnmatched {
		t.Errorf("State = %s, want %s", c.State, StateUnmatched)
	}
	if !strings.Contains(c.Key, ProvisionalMarker) {
		t.Errorf("provisional key %q missing marker %q", c.Key, ProvisionalMarker)
	}
	if !strings.HasPrefix(c.Key, "smith2020") {
		t.Errorf("provisional key %q should start with author+year stem", c.Key)
	}
	if c.Record != nil {
		t.Error("unmatched citation must not carry a record")
	}
}

func TestResolveKeyUnmatchedFallsBackToTextSlug(t *testing.T) {
	m := mention.New("the great report", "https://nowhere.example/x")

	c := ResolveKey(m, Result{Strategy: StrategyNone}, map[string]bool{})

	if !strings.HasPrefix(c.Key, "thegreatreport") {
		t.Errorf("expected text slug stem, got %q", c.Key)
	}
}

func TestResolveKeyProvisionalCollision(t *testing.T) {
	taken := map[string]bool{}
	m1 := mention.New("Smith 2020", "https://a.example/x")
	m2 := mention.New("Smith 2020", "https://b.example/y")

	c1 := ResolveKey(m1, Result{Strategy: StrategyNone}, taken)
	c2 := ResolveKey(m2, Result{Strategy: StrategyNone}, taken)

	if c1.Key == c2.Key {
		t.Errorf("provisional keys must be unique, both are %q", c1.Key)
	}
	if !strings.Contains(c2.Key, ProvisionalMarker) {
		t.Errorf("suffixed key %q lost the marker", c2.Key)
	}
}

func TestUniqueRecordsCollapsesSharedKeys(t *testing.T) {
	rec := &reference.Record{Key: "Smith2020-ab", Title: "Paper"}
	citations := []*ResolvedCitation{
		{Key: "Smith2020-ab", Record: rec, State: StateMatched},
		{Key: "Smith2020-ab", Record: rec, State: StateMatched},
		{Key: "x" + ProvisionalMarker, State: StateUnmatched},
	}

	records := UniqueRecords(citations)
	if len(records) != 1 {
		t.Fatalf("expected 1 unique record, got %d", len(records))
	}
	if records[0].Key != "Smith2020-ab" {
		t.Errorf("unexpected record key %s", records[0].Key)
	}
}
