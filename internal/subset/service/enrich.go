package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"subsets/internal/classification"
	"subsets/internal/subset/models"
	pstrings "subsets/pkg/platform/strings"
)

// enrichmentPass memoizes snapshot lookups for one version submission. Many
// codes usually share a classification, so equal snapshot paths are fetched
// once per pass.
type enrichmentPass struct {
	lookup classification.Lookup

	mu        sync.Mutex
	snapshots map[string]*classification.Snapshot
	failed    map[string]error
}

func (p *enrichmentPass) snapshot(ctx context.Context, query classification.SnapshotQuery) (*classification.Snapshot, bool, error) {
	key := query.Path()

	p.mu.Lock()
	if snap, ok := p.snapshots[key]; ok {
		p.mu.Unlock()
		return snap, true, nil
	}
	if err, ok := p.failed[key]; ok {
		p.mu.Unlock()
		return nil, true, err
	}
	p.mu.Unlock()

	snap, err := p.lookup.Snapshot(ctx, query)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed[key] = err
		return nil, false, err
	}
	p.snapshots[key] = snap
	return snap, false, nil
}

// languageResult is one language's resolution for a single code.
type languageResult struct {
	language string
	item     classification.SnapshotItem
	found    bool
	err      error
}

// enrichCodes resolves names, notes, and classification-version references
// for each code stub from the reference service. A language that fails to
// resolve is omitted from the multilingual lists and reported as a warning;
// it never fails the submission. The input slice is not mutated.
func (s *Service) enrichCodes(ctx context.Context, codes []models.SubsetCode, validFrom, validUntil models.Date) ([]models.SubsetCode, []string, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveEnrichLatency(time.Since(start)) }()

	pass := &enrichmentPass{
		lookup:    s.lookup,
		snapshots: make(map[string]*classification.Snapshot),
		failed:    make(map[string]error),
	}

	enriched := make([]models.SubsetCode, len(codes))
	var warnings []string

	for i, code := range codes {
		from := code.ValidFromInRange
		if from.IsZero() {
			from = validFrom
		}
		to := code.ValidToInRange
		if to.IsZero() {
			to = validUntil
		}

		out := code
		out.Name = nil
		out.Notes = nil
		out.ClassificationVersions = nil

		results := make([]languageResult, len(models.SupportedLanguages))
		g, gctx := errgroup.WithContext(ctx)
		for li, lang := range models.SupportedLanguages {
			g.Go(func() error {
				query := classification.SnapshotQuery{
					ClassificationID: code.ClassificationID,
					From:             from,
					To:               to,
					Language:         lang,
				}
				snap, memoized, err := pass.snapshot(gctx, query)
				if memoized {
					s.metrics.IncSnapshotLookup("memoized")
				} else if err != nil {
					s.metrics.IncSnapshotLookup("failed")
				} else {
					s.metrics.IncSnapshotLookup("fetched")
				}
				if err != nil {
					results[li] = languageResult{language: lang, err: err}
					return nil
				}
				item, found := snap.Item(code.Code)
				results[li] = languageResult{language: lang, item: item, found: found}
				return nil
			})
		}
		// Workers report failures through results; only context cancellation
		// aborts the pass.
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		for _, r := range results {
			switch {
			case r.err != nil:
				s.logger.WarnContext(ctx, "language lookup failed during enrichment",
					"classification_id", code.ClassificationID,
					"code", code.Code,
					"language", r.language,
					"error", r.err.Error(),
				)
			case !r.found:
				s.logger.WarnContext(ctx, "code absent from classification snapshot",
					"classification_id", code.ClassificationID,
					"code", code.Code,
					"language", r.language,
				)
			default:
				if r.item.Name != "" {
					out.Name = models.SetText(out.Name, r.language, r.item.Name)
				}
				if r.item.Notes != "" {
					out.Notes = models.SetText(out.Notes, r.language, r.item.Notes)
				}
				if r.item.Level != 0 {
					out.Level = r.item.Level
				}
				if r.item.ClassificationVersion != "" {
					out.ClassificationVersions = pstrings.Union(out.ClassificationVersions, r.item.ClassificationVersion)
				}
			}
		}

		// The submission still goes through with an empty name list; the
		// warning makes the weak spot visible to the caller.
		if len(out.Name) == 0 {
			warnings = append(warnings,
				fmt.Sprintf("no name resolved in any language for code %s of classification %s",
					code.Code, code.ClassificationID))
		}

		enriched[i] = out
	}

	return enriched, warnings, nil
}
