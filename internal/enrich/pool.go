package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/match"
	"github.com/matsen/refmark/internal/reference"
)

// DefaultWorkers bounds concurrent catalog requests.
const DefaultWorkers = 4

// Outcome reports what enrichment did for one citation.
type Outcome struct {
	Citation *match.ResolvedCitation
	Record   *reference.Record // proposed record, nil on failure
	NotFound bool              // catalog definitively reported the identifier does not exist
	Err      error             // transient failure, citation stays unmatched
}

// EnrichAll fetches metadata for every unmatched citation that carries a
// usable identifier. Citations are independent and share no mutable state,
// so they are enriched concurrently; completion order is arbitrary and the
// returned outcomes are re-ordered to match the input. Each call gets its
// own timeout. A failed enrichment leaves its citation unmatched rather
// than failing the run.
func EnrichAll(ctx context.Context, citations []*match.ResolvedCitation, enricher Enricher, workers int, timeout time.Duration) []Outcome {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	outcomes := make([]Outcome, len(citations))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = enrichOne(ctx, citations[i], enricher, timeout)
			}
		}()
	}

	for i, c := range citations {
		if c.State != match.StateUnmatched {
			outcomes[i] = Outcome{Citation: c}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// enrichOne resolves a single citation's identifier against the catalog.
func enrichOne(ctx context.Context, c *match.ResolvedCitation, enricher Enricher, timeout time.Duration) Outcome {
	id, ok := enrichableIdentifier(c.Mention.Target)
	if !ok {
		return Outcome{Citation: c}
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	meta, err := enricher.Enrich(callCtx, id)
	if err != nil {
		if errors.Is(err, ErrIdentifierNotFound) {
			return Outcome{Citation: c, NotFound: true, Err: err}
		}
		logrus.WithFields(logrus.Fields{
			"target": c.Mention.Target,
			"kind":   string(id.Kind),
		}).WithError(err).Warn("enrichment failed, citation stays unmatched")
		return Outcome{Citation: c, Err: err}
	}

	rec := meta.ToRecord(id)
	return Outcome{Citation: c, Record: &rec}
}

// enrichableIdentifier picks the highest-priority non-URL identifier from a
// mention target. Plain URLs have no catalog to consult.
func enrichableIdentifier(target string) (ident.Identifier, bool) {
	for _, id := range ident.FromURL(target) {
		if id.Kind != ident.KindURL {
			return id, true
		}
	}
	return ident.Identifier{}, false
}
