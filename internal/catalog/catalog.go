// Package catalog provides the relational page-and-link store behind
// the crawler: a (protocol, host, path) keyed page table and a directed
// link-edge table used for backlink ranking (§4.3).
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver, CGO-free.
	_ "modernc.org/sqlite"

	"github.com/TheArchitect4855/ksearch/internal/ksearcherr"
)

// Catalog is a transactional store of pages and links backed by SQLite.
type Catalog struct {
	db *sql.DB
}

// PageRef is the URL projection §4.3's resolve_pages returns.
type PageRef struct {
	ID       uint64
	Protocol string
	Host     string
	Path     string
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed to open database", err)
	}

	// A single connection avoids lock contention: the spec's
	// concurrency model has the crawl driver as the sole writer and
	// reader of the catalog (§5).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

func (c *Catalog) initSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, p := range pragmas {
		if _, err := c.db.Exec(p); err != nil {
			return ksearcherr.Wrap(ksearcherr.Catalog, fmt.Sprintf("failed to execute pragma %q", p), err)
		}
	}

	if _, err := c.db.Exec(schemaSQL); err != nil {
		return ksearcherr.Wrap(ksearcherr.Catalog, "failed to create schema", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// UpsertPage matches an existing row by (protocol, host, path) OR
// content_hash — parenthesized explicitly, resolving the open question
// in §9 about the original's ambiguous AND/OR precedence. A match
// updates last_indexed and returns the existing id; otherwise a new row
// is inserted. When more than one row could match (a content hash
// collision racing a fresh insert), the earliest-assigned id wins, per
// §3's reconciliation rule.
func (c *Catalog) UpsertPage(protocol, host, path string, now time.Time, contentHash string) (id uint64, isNew bool, err error) {
	nowUnix := now.Unix()

	id, found, err := c.findPage(protocol, host, path, contentHash)
	if err != nil {
		return 0, false, err
	}
	if found {
		if _, err := c.db.Exec(`UPDATE pages SET last_indexed = ? WHERE id = ?`, nowUnix, id); err != nil {
			return 0, false, ksearcherr.Wrap(ksearcherr.Catalog, "failed to update last_indexed", err)
		}
		return id, false, nil
	}

	res, err := c.db.Exec(
		`INSERT INTO pages (protocol, host, pathname, last_indexed, content_hash) VALUES (?, ?, ?, ?, ?)`,
		protocol, host, path, nowUnix, contentHash,
	)
	if err != nil {
		// Lost a race against another insert of the same triple or
		// content hash between our SELECT and this INSERT; fall back
		// to re-resolving the existing row.
		id, found, ferr := c.findPage(protocol, host, path, contentHash)
		if ferr == nil && found {
			_, _ = c.db.Exec(`UPDATE pages SET last_indexed = ? WHERE id = ?`, nowUnix, id)
			return id, false, nil
		}
		return 0, false, ksearcherr.Wrap(ksearcherr.Catalog, "failed to insert page", err)
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, false, ksearcherr.Wrap(ksearcherr.Catalog, "failed to read inserted page id", err)
	}

	return uint64(newID), true, nil
}

func (c *Catalog) findPage(protocol, host, path, contentHash string) (id uint64, found bool, err error) {
	err = c.db.QueryRow(`
		SELECT id FROM pages
		WHERE (protocol = ? AND host = ? AND pathname = ?) OR content_hash = ?
		ORDER BY id ASC
		LIMIT 1
	`, protocol, host, path, contentHash).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ksearcherr.Wrap(ksearcherr.Catalog, "failed to look up page", err)
	}

	return id, true, nil
}

// AddLink records a directed edge from fromID to toID. Duplicate edges
// are permitted, per §3.
func (c *Catalog) AddLink(fromID, toID uint64) error {
	_, err := c.db.Exec(`INSERT INTO links ("from", "to") VALUES (?, ?)`, fromID, toID)
	if err != nil {
		return ksearcherr.Wrap(ksearcherr.Catalog, "failed to insert link", err)
	}
	return nil
}

// BacklinkCount returns the number of link rows whose "to" is pageID.
func (c *Catalog) BacklinkCount(pageID uint64) (uint64, error) {
	var n uint64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM links WHERE "to" = ?`, pageID).Scan(&n)
	if err != nil {
		return 0, ksearcherr.Wrap(ksearcherr.Catalog, "failed to count backlinks", err)
	}
	return n, nil
}

// ResolvePages fetches the URL projection for a batch of page ids, for
// the query planner's result assembly.
func (c *Catalog) ResolvePages(ids []uint64) ([]PageRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT id, protocol, host, pathname FROM pages WHERE id IN (%s)`,
		strings.Join(placeholders, ","),
	)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed to resolve pages", err)
	}
	defer rows.Close()

	var refs []PageRef
	for rows.Next() {
		var r PageRef
		if err := rows.Scan(&r.ID, &r.Protocol, &r.Host, &r.Path); err != nil {
			return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed to scan page row", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Catalog, "failed reading resolved pages", err)
	}

	return refs, nil
}

// ResetAll truncates pages and links. Debug-only, per §6.
func (c *Catalog) ResetAll() error {
	if _, err := c.db.Exec(`DELETE FROM links`); err != nil {
		return ksearcherr.Wrap(ksearcherr.Catalog, "failed to clear links", err)
	}
	if _, err := c.db.Exec(`DELETE FROM pages`); err != nil {
		return ksearcherr.Wrap(ksearcherr.Catalog, "failed to clear pages", err)
	}
	return nil
}

// GetMeta retrieves a metadata value, returning "" if key is unset.
func (c *Catalog) GetMeta(key string) (string, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM crawl_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", ksearcherr.Wrap(ksearcherr.Catalog, "failed to get meta", err)
	}
	return value, nil
}

// SetMeta stores a metadata value.
func (c *Catalog) SetMeta(key, value string) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO crawl_meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return ksearcherr.Wrap(ksearcherr.Catalog, "failed to set meta", err)
	}
	return nil
}
