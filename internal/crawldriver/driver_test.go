package crawldriver

import (
	"context"
	"errors"
	"testing"

	"github.com/TheArchitect4855/ksearch/internal/analyzer"
)

type fakeFetcher struct {
	pages   map[string][]byte
	fetched []string
	failOn  map[string]bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string][]byte), failOn: make(map[string]bool)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	if f.failOn[url] {
		return nil, errors.New("simulated fetch failure")
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("no such page: " + url)
	}
	return body, nil
}

type fakeIndexer struct {
	nextID   uint64
	ids      map[string]uint64
	failOn   map[string]bool
	analyzed map[string]*analyzer.Document
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{ids: make(map[string]uint64), failOn: make(map[string]bool), analyzed: make(map[string]*analyzer.Document)}
}

func (f *fakeIndexer) IndexDocument(url string, doc *analyzer.Document) (uint64, error) {
	f.analyzed[url] = doc
	if f.failOn[url] {
		return 0, errors.New("simulated index failure")
	}
	if id, ok := f.ids[url]; ok {
		return id, nil
	}
	f.nextID++
	f.ids[url] = f.nextID
	return f.nextID, nil
}

type fakeLinker struct {
	edges [][2]uint64
}

func (f *fakeLinker) AddLink(fromID, toID uint64) error {
	f.edges = append(f.edges, [2]uint64{fromID, toID})
	return nil
}

func TestCrawlSeedWithNoLinks(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://a.test/"] = []byte(`<html><body>hello world</body></html>`)
	indexer := newFakeIndexer()
	linker := &fakeLinker{}

	d := New(fetcher, indexer, linker, nil, nil)
	if err := d.Crawl(context.Background(), "https://a.test/"); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	if len(fetcher.fetched) != 1 {
		t.Errorf("fetched %v, want exactly the seed", fetcher.fetched)
	}
	if len(linker.edges) != 0 {
		t.Errorf("expected no link edges, got %v", linker.edges)
	}
}

func TestCrawlCrossLinkedPagesVisitedOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	// The analyzer strips one trailing slash from every link, so pages
	// are keyed (and the seed given) without one.
	fetcher.pages["https://a.test"] = []byte(`<html><body><a href="https://b.test/">b</a></body></html>`)
	fetcher.pages["https://b.test"] = []byte(`<html><body><a href="https://a.test/">a</a></body></html>`)
	indexer := newFakeIndexer()
	linker := &fakeLinker{}

	d := New(fetcher, indexer, linker, nil, nil)
	if err := d.Crawl(context.Background(), "https://a.test"); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	counts := make(map[string]int)
	for _, u := range fetcher.fetched {
		counts[u]++
	}
	for u, c := range counts {
		if c != 1 {
			t.Errorf("page %s fetched %d times, want exactly once", u, c)
		}
	}

	if len(linker.edges) != 2 {
		t.Errorf("expected 2 link edges (a->b, b->a), got %v", linker.edges)
	}

	idA := indexer.ids["https://a.test"]
	idB := indexer.ids["https://b.test"]
	wantAB := [2]uint64{idA, idB}
	wantBA := [2]uint64{idB, idA}
	if !(linker.edges[0] == wantAB || linker.edges[0] == wantBA) {
		t.Errorf("unexpected edge set: %v", linker.edges)
	}
}

func TestCrawlFetchFailureStopsTraversalAtThatPage(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://a.test/"] = []byte(`<html><body><a href="https://b.test/">b</a></body></html>`)
	fetcher.failOn["https://b.test"] = true
	indexer := newFakeIndexer()
	linker := &fakeLinker{}

	d := New(fetcher, indexer, linker, nil, nil)
	if err := d.Crawl(context.Background(), "https://a.test/"); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	if len(linker.edges) != 0 {
		t.Errorf("expected no edges since b failed to fetch, got %v", linker.edges)
	}
	if _, ok := indexer.ids["https://b.test"]; ok {
		t.Error("b should never have been indexed")
	}
}

func TestCrawlIndexFailureStillEnqueuesOutlinks(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://a.test/"] = []byte(`<html><body><a href="https://b.test/">b</a></body></html>`)
	fetcher.pages["https://b.test"] = []byte(`<html><body>leaf page</body></html>`)
	indexer := newFakeIndexer()
	indexer.failOn["https://a.test/"] = true
	linker := &fakeLinker{}

	d := New(fetcher, indexer, linker, nil, nil)
	if err := d.Crawl(context.Background(), "https://a.test/"); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	foundB := false
	for _, u := range fetcher.fetched {
		if u == "https://b.test" {
			foundB = true
		}
	}
	if !foundB {
		t.Error("expected b to still be fetched despite a's indexing failure")
	}
	if len(linker.edges) != 0 {
		t.Errorf("expected no edges since a was never assigned a page id, got %v", linker.edges)
	}
}

func TestCrawlDuplicateContentReconciledToSameID(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://a.test/"] = []byte(`<html><body><a href="https://b.test/">b</a><a href="https://c.test/">c</a></body></html>`)
	fetcher.pages["https://b.test"] = []byte(`<html><body>same content</body></html>`)
	fetcher.pages["https://c.test"] = []byte(`<html><body>same content</body></html>`)
	indexer := newFakeIndexer()
	// Simulate content-hash reconciliation: b and c resolve to the same id.
	indexer.ids["https://b.test"] = 99
	indexer.ids["https://c.test"] = 99
	indexer.nextID = 99
	linker := &fakeLinker{}

	d := New(fetcher, indexer, linker, nil, nil)
	if err := d.Crawl(context.Background(), "https://a.test/"); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	for _, edge := range linker.edges {
		if edge[1] != 99 {
			t.Errorf("expected all links to target reconciled id 99, got %v", edge)
		}
	}
	if len(linker.edges) != 2 {
		t.Errorf("expected 2 edges (a->b, a->c both to id 99), got %v", linker.edges)
	}
}
