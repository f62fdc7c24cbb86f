// Package crawldriver implements the single-threaded breadth-first
// crawl loop: pop a frontier entry, fetch, analyze, index, record the
// link edge, enqueue outgoing links (§4.6).
//
// The driver is deliberately simple compared to the teacher's
// worker-pool crawler: the spec's concurrency model (§5) is
// single-threaded cooperative scheduling with suspension only at the
// fetch boundary, so there is one frontier, one visited map, and no
// goroutines here.
package crawldriver

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/TheArchitect4855/ksearch/internal/analyzer"
	"github.com/TheArchitect4855/ksearch/internal/fetch"
)

// Indexer is the narrow contract the driver needs from the indexer
// package.
type Indexer interface {
	IndexDocument(url string, doc *analyzer.Document) (pageID uint64, err error)
}

// Linker is the narrow contract the driver needs from the catalog for
// recording link edges.
type Linker interface {
	AddLink(fromID, toID uint64) error
}

// frontierEntry is a Crawl Frontier Entry (§3): fromID is nil for the
// seed URL.
type frontierEntry struct {
	fromID *uint64
	url    string
}

// Driver runs the BFS crawl loop described in §4.6.
type Driver struct {
	Fetcher fetch.Fetcher
	Indexer Indexer
	Linker  Linker
	Logger  *slog.Logger

	// Limiter paces fetches; nil means unthrottled. This generalizes
	// the teacher's per-domain rate limiter to the spec's
	// single-threaded, single-frontier model: one limiter for the
	// whole crawl rather than one per host.
	Limiter *rate.Limiter
}

// New constructs a Driver. A nil logger is replaced with slog's default
// logger.
func New(fetcher fetch.Fetcher, indexer Indexer, linker Linker, limiter *rate.Limiter, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{Fetcher: fetcher, Indexer: indexer, Linker: linker, Limiter: limiter, Logger: logger}
}

// Crawl runs a breadth-first crawl starting from seedURL until the
// frontier drains or ctx is cancelled.
func (d *Driver) Crawl(ctx context.Context, seedURL string) error {
	queue := make([]frontierEntry, 0, 512)
	visited := make(map[string]*uint64)

	queue = append(queue, frontierEntry{fromID: nil, url: seedURL})

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := queue[0]
		queue = queue[1:]

		if pageID, seen := visited[entry.url]; seen {
			if pageID != nil && entry.fromID != nil {
				if err := d.Linker.AddLink(*entry.fromID, *pageID); err != nil {
					d.Logger.Error("failed to record link", "from", *entry.fromID, "to", *pageID, "err", err)
				}
			}
			continue
		}

		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		body, err := d.Fetcher.Fetch(ctx, entry.url)
		if err != nil {
			d.Logger.Warn("fetch failed", "url", entry.url, "err", err)
			visited[entry.url] = nil
			continue
		}

		doc := analyzer.Analyze(body, entry.url)

		pageID, err := d.Indexer.IndexDocument(entry.url, doc)
		if err != nil {
			d.Logger.Error("indexing failed", "url", entry.url, "err", err)
			visited[entry.url] = nil
			// The page itself could not be indexed, so it can't serve
			// as a parent for its outlinks, but the outlinks were
			// still extracted and are still worth crawling (§7).
			for _, link := range doc.Links {
				queue = append(queue, frontierEntry{fromID: nil, url: link})
			}
			continue
		}

		if entry.fromID != nil {
			if err := d.Linker.AddLink(*entry.fromID, pageID); err != nil {
				d.Logger.Error("failed to record link", "from", *entry.fromID, "to", pageID, "err", err)
			}
		}

		id := pageID
		visited[entry.url] = &id

		for _, link := range doc.Links {
			queue = append(queue, frontierEntry{fromID: &id, url: link})
		}
	}

	return nil
}
