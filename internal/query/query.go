// Package query implements the Query Planner (§4.7): given a set of
// terms, it reads each term's posting list, aggregates per-page hit
// counts, joins with the catalog for URLs and backlink counts, and
// returns a ranked result list.
package query

import (
	"log/slog"
	"sort"

	"github.com/TheArchitect4855/ksearch/internal/catalog"
	"github.com/TheArchitect4855/ksearch/internal/ksearcherr"
)

// PostingReader is the narrow posting-store contract the planner needs.
type PostingReader interface {
	Scan(term string) ([]uint64, error)
}

// PageResolver is the narrow catalog contract the planner needs.
type PageResolver interface {
	BacklinkCount(pageID uint64) (uint64, error)
	ResolvePages(ids []uint64) ([]catalog.PageRef, error)
}

// Result is one ranked hit, ready for display.
type Result struct {
	URL       string
	Hits      uint32
	Backlinks uint64
}

// Planner runs queries against a posting store and catalog.
type Planner struct {
	Postings PostingReader
	Catalog  PageResolver
	Logger   *slog.Logger
}

// New constructs a Planner. A nil logger is replaced with slog's
// default logger.
func New(postings PostingReader, catalog PageResolver, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{Postings: postings, Catalog: catalog, Logger: logger}
}

// Query aggregates hits for terms across their posting lists and
// returns every matching page, ranked descending by hit count then
// descending by backlink count, stable beyond that. No intersection is
// enforced: a page matching only one of many terms still appears
// (§4.7's "soft-AND").
func (p *Planner) Query(terms []string) ([]Result, error) {
	hits := make(map[uint64]uint32)
	order := make([]uint64, 0)

	for _, term := range terms {
		ids, err := p.Postings.Scan(term)
		if err != nil {
			p.Logger.Warn("failed to read posting list, skipping term", "term", term, "err", err)
			continue
		}
		for _, id := range ids {
			if _, seen := hits[id]; !seen {
				order = append(order, id)
			}
			hits[id]++
		}
	}

	if len(hits) == 0 {
		return nil, nil
	}

	backlinks := make(map[uint64]uint64, len(order))
	for _, id := range order {
		count, err := p.Catalog.BacklinkCount(id)
		if err != nil {
			return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed to count backlinks", err)
		}
		backlinks[id] = count
	}

	refs, err := p.Catalog.ResolvePages(order)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed to resolve page URLs", err)
	}

	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		results = append(results, Result{
			URL:       ref.Protocol + "://" + ref.Host + ref.Path,
			Hits:      hits[ref.ID],
			Backlinks: backlinks[ref.ID],
		})
	}

	// results is pre-sorted in ResolvePages's SQL row order here, not in
	// the terms' first-sight order captured by `order` above — the IN
	// (...) clause's row order is DB-dependent. §4.7's "then stable"
	// doesn't name which pre-sort order it stabilizes against, so this
	// is an acceptable reading: ties break in whatever order the
	// catalog returned the rows.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Hits != results[j].Hits {
			return results[i].Hits > results[j].Hits
		}
		return results[i].Backlinks > results[j].Backlinks
	})

	return results, nil
}
