package indexer

import (
	"errors"
	"testing"
	"time"

	"github.com/TheArchitect4855/ksearch/internal/analyzer"
)

type fakeCatalog struct {
	nextID uint64
	rows   map[string]uint64 // "protocol|host|path" -> id
	hashes map[string]uint64 // content_hash -> id
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		rows:   make(map[string]uint64),
		hashes: make(map[string]uint64),
	}
}

func (f *fakeCatalog) UpsertPage(protocol, host, path string, now time.Time, contentHash string) (uint64, bool, error) {
	key := protocol + "|" + host + "|" + path
	if id, ok := f.rows[key]; ok {
		return id, false, nil
	}
	if id, ok := f.hashes[contentHash]; ok {
		f.rows[key] = id
		return id, false, nil
	}

	f.nextID++
	id := f.nextID
	f.rows[key] = id
	f.hashes[contentHash] = id
	return id, true, nil
}

type fakePostings struct {
	appended map[string][]uint64
	failTerm string
}

func newFakePostings() *fakePostings {
	return &fakePostings{appended: make(map[string][]uint64)}
}

func (f *fakePostings) Append(term string, pageID uint64) error {
	if term == f.failTerm {
		return errors.New("simulated posting failure")
	}
	f.appended[term] = append(f.appended[term], pageID)
	return nil
}

func TestIndexDocumentAssignsIDAndAppendsTerms(t *testing.T) {
	cat := newFakeCatalog()
	posts := newFakePostings()
	ix := New(cat, posts, nil)

	doc := &analyzer.Document{Tags: []string{"alpha", "beta"}}
	id, err := ix.IndexDocument("https://example.test/", doc)
	if err != nil {
		t.Fatalf("IndexDocument returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero page id")
	}

	for _, term := range doc.Tags {
		ids := posts.appended[term]
		if len(ids) != 1 || ids[0] != id {
			t.Errorf("term %q appended ids = %v, want [%d]", term, ids, id)
		}
	}
}

func TestIndexDocumentStableIDOnReindex(t *testing.T) {
	cat := newFakeCatalog()
	posts := newFakePostings()
	ix := New(cat, posts, nil)

	doc := &analyzer.Document{Tags: []string{"x"}}
	id1, err := ix.IndexDocument("https://example.test/a", doc)
	if err != nil {
		t.Fatalf("IndexDocument returned error: %v", err)
	}

	id2, err := ix.IndexDocument("https://example.test/a", doc)
	if err != nil {
		t.Fatalf("second IndexDocument returned error: %v", err)
	}

	if id1 != id2 {
		t.Errorf("ids differ across reindex: %d vs %d", id1, id2)
	}
}

func TestIndexDocumentZeroTermsStillUpserts(t *testing.T) {
	cat := newFakeCatalog()
	posts := newFakePostings()
	ix := New(cat, posts, nil)

	doc := &analyzer.Document{}
	id, err := ix.IndexDocument("https://example.test/empty", doc)
	if err != nil {
		t.Fatalf("IndexDocument returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero page id for zero-term document")
	}
}

func TestIndexDocumentContinuesAfterPostingFailure(t *testing.T) {
	cat := newFakeCatalog()
	posts := newFakePostings()
	posts.failTerm = "bad"
	ix := New(cat, posts, nil)

	doc := &analyzer.Document{Tags: []string{"bad", "good"}}
	id, err := ix.IndexDocument("https://example.test/", doc)
	if err != nil {
		t.Fatalf("IndexDocument returned error: %v", err)
	}

	if ids := posts.appended["good"]; len(ids) != 1 || ids[0] != id {
		t.Errorf("expected \"good\" term to still be indexed despite \"bad\" failing, got %v", ids)
	}
	if _, ok := posts.appended["bad"]; ok {
		t.Error("expected \"bad\" term append to have failed and not recorded")
	}
}

func TestIndexDocumentBadURL(t *testing.T) {
	cat := newFakeCatalog()
	posts := newFakePostings()
	ix := New(cat, posts, nil)

	_, err := ix.IndexDocument("not a url", &analyzer.Document{})
	if err == nil {
		t.Fatal("expected error for unparseable URL")
	}
}
