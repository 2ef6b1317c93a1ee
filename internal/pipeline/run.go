// Package pipeline orchestrates citation resolution end to end: index the
// corpus, extract mentions, match and key them, run the validation gates,
// replace links, and emit the bibliography.
package pipeline

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/matsen/refmark/internal/bibindex"
	"github.com/matsen/refmark/internal/corpus"
	"github.com/matsen/refmark/internal/doc"
	"github.com/matsen/refmark/internal/enrich"
	"github.com/matsen/refmark/internal/export"
	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/match"
	"github.com/matsen/refmark/internal/reference"
	"github.com/matsen/refmark/internal/validate"
)

// Options control a resolution run.
type Options struct {
	// AllowPlaceholders downgrades provisional keys from failures to
	// warnings, letting a draft resolve before its corpus is complete.
	AllowPlaceholders bool
	// Enrich turns on metadata recovery for unmatched citations that carry
	// a strong identifier.
	Enrich bool
	// Workers is the enrichment concurrency. Zero means the default.
	Workers int
	// Timeout bounds each enrichment call.
	Timeout time.Duration
	// RecordsPath is where enrichment-proposed records are appended.
	// Required when Enrich is set.
	RecordsPath string
}

// Outcome is the product of a successful run. On failure the report carries
// the issues and Document and Bibliography are nil/empty.
type Outcome struct {
	// Document is the rendered document with citation markers spliced in.
	Document []byte
	// Bibliography is the serialized BibTeX for every cited record.
	Bibliography string
	Report       *Report
}

// Run resolves every reference mention in source against records and
// produces the transformed document plus its bibliography. The returned
// error covers mechanical failures only (I/O, enrichment plumbing);
// resolution failures land in the report.
func Run(ctx context.Context, source []byte, records []reference.Record, enricher enrich.Enricher, opts Options) (*Outcome, error) {
	report := NewReport()

	idx := bibindex.Build(records)
	for _, c := range idx.Conflicts() {
		report.AddWarning(fmt.Sprintf(
			"duplicate %s %q: record %q shadowed by %q",
			c.Kind, c.Value, c.LoserKey, c.WinnerKey), c.LoserKey)
	}

	d := doc.Parse(source)
	mentions := d.ExtractMentions()
	log.WithFields(log.Fields{
		"records":  len(records),
		"mentions": len(mentions),
	}).Debug("starting resolution")

	matcher := match.NewMatcher(idx)
	taken := make(map[string]bool, len(records))
	for _, rec := range records {
		taken[rec.Key] = true
	}

	var citations []*match.ResolvedCitation
	for _, m := range mentions {
		res := matcher.Match(m.Target)
		c := match.ResolveKey(m, res, taken)
		taken[c.Key] = true
		citations = append(citations, c)
	}

	// Gate 1: matched records must be acceptable before anything depends
	// on them.
	for _, c := range citations {
		if c.State != match.StateMatched || c.Record == nil {
			continue
		}
		for _, issue := range validate.CheckRecord(c.Record) {
			issue.Key = c.Key
			report.AddIssue(issue)
		}
	}

	if opts.Enrich && enricher != nil {
		if err := runEnrichment(ctx, citations, enricher, opts, report); err != nil {
			return nil, err
		}
	}

	// Gate 3: nothing provisional or unmatched survives finalization
	// unless placeholders were asked for.
	for _, issue := range validate.CheckFinal(citations, opts.AllowPlaceholders) {
		report.AddIssue(issue)
	}

	report.Stats = matcher.Stats()

	// Halt before touching the document.
	if report.HasCritical() {
		return &Outcome{Report: report}, nil
	}

	keyByURL := make(map[string]string, len(citations))
	for _, c := range citations {
		keyByURL[ident.NormalizeURL(c.Mention.Target)] = c.Key
	}

	result := d.ReplaceLinks(keyByURL)
	for _, url := range result.Misses() {
		report.AddIssue(validate.Issue{
			Severity: validate.Critical,
			Reason:   fmt.Sprintf("resolved citation for %q was never replaced in the document", url),
		})
	}
	report.Replaced = result.Replaced
	if report.HasCritical() {
		return &Outcome{Report: report}, nil
	}

	bibliography := export.Bibliography(match.UniqueRecords(citations))

	// Gate 2: re-parse what we just serialized and check it again.
	for _, issue := range validate.CheckBibliography(bibliography) {
		report.AddIssue(issue)
	}
	if report.HasCritical() {
		return &Outcome{Report: report}, nil
	}

	report.Success = true
	return &Outcome{
		Document:     d.Render(),
		Bibliography: bibliography,
		Report:       report,
	}, nil
}

// runEnrichment recovers metadata for unmatched citations, vets each
// proposal through the acceptance gate, and folds accepted records into the
// corpus and the citation set.
func runEnrichment(ctx context.Context, citations []*match.ResolvedCitation, enricher enrich.Enricher, opts Options, report *Report) error {
	if opts.RecordsPath == "" {
		return fmt.Errorf("enrichment requires a records path")
	}

	outcomes := enrich.EnrichAll(ctx, citations, enricher, opts.Workers, opts.Timeout)
	for _, o := range outcomes {
		switch {
		case o.NotFound:
			report.AddIssue(validate.Issue{
				Severity: validate.Critical,
				Reason: fmt.Sprintf("identifier for %q is not known to any metadata source",
					o.Citation.Mention.Target),
				Key: o.Citation.Key,
			})
		case o.Record != nil:
			issues := validate.CheckRecord(o.Record)
			if validate.HasCritical(issues) {
				for _, issue := range issues {
					issue.Key = o.Citation.Key
					report.AddIssue(issue)
				}
				continue
			}

			key, err := corpus.Propose(opts.RecordsPath, *o.Record)
			if err != nil {
				return fmt.Errorf("accepting recovered record: %w", err)
			}

			accepted := *o.Record
			accepted.Key = key
			o.Citation.Key = key
			o.Citation.Record = &accepted
			o.Citation.State = match.StateMatched
			log.WithFields(log.Fields{
				"key": key, "title": accepted.Title,
			}).Info("accepted recovered record")
		}
	}
	return nil
}
