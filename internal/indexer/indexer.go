// Package indexer glues the analyzer, catalog, and posting store
// together: given a URL and its analyzed document, it upserts the page
// row and appends the page id to each term's posting list (§4.5).
package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/TheArchitect4855/ksearch/internal/analyzer"
	"github.com/TheArchitect4855/ksearch/internal/ksearcherr"
	"github.com/TheArchitect4855/ksearch/internal/urlparse"
)

// PageCatalog is the narrow catalog contract the indexer needs.
type PageCatalog interface {
	UpsertPage(protocol, host, path string, now time.Time, contentHash string) (id uint64, isNew bool, err error)
}

// PostingAppender is the narrow posting-store contract the indexer
// needs.
type PostingAppender interface {
	Append(term string, pageID uint64) error
}

// Indexer is the default indexer implementation.
type Indexer struct {
	Catalog  PageCatalog
	Postings PostingAppender
	Logger   *slog.Logger
}

// New constructs an Indexer. A nil logger is replaced with slog's
// default logger.
func New(catalog PageCatalog, postings PostingAppender, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{Catalog: catalog, Postings: postings, Logger: logger}
}

// IndexDocument upserts the page row for url and appends its id to
// every term in doc.Tags. A posting-append failure for one term is
// logged and does not abort the rest of the batch, per §4.5 and §7 —
// a missing term for one document is better than losing the document.
func (ix *Indexer) IndexDocument(url string, doc *analyzer.Document) (uint64, error) {
	parts, ok := urlparse.Split(url)
	if !ok {
		return 0, ksearcherr.New(ksearcherr.BadURL, "failed to parse URL: "+url)
	}

	hash := contentHash(doc.Tags)

	pageID, _, err := ix.Catalog.UpsertPage(parts.Protocol, parts.Host, parts.Path, time.Now(), hash)
	if err != nil {
		return 0, ksearcherr.Wrap(ksearcherr.Catalog, "failed to upsert page for "+url, err)
	}

	for _, term := range doc.Tags {
		if err := ix.Postings.Append(term, pageID); err != nil {
			ix.Logger.Error("failed to append posting", "term", term, "page_id", pageID, "err", err)
			continue
		}
	}

	return pageID, nil
}

// contentHash computes the SHA-256 of the concatenation of tags, hex
// encoded. Callers MUST pass tags in a deterministic order — the
// analyzer already returns them sorted, resolving §9's open question
// about hash determinism.
func contentHash(tags []string) string {
	h := sha256.New()
	for _, t := range tags {
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}
