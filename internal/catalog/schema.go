package catalog

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	protocol TEXT NOT NULL,
	host TEXT NOT NULL,
	pathname TEXT NOT NULL,
	last_indexed INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	UNIQUE(protocol, host, pathname),
	UNIQUE(content_hash)
);

CREATE TABLE IF NOT EXISTS links (
	"from" INTEGER NOT NULL,
	"to" INTEGER NOT NULL,
	FOREIGN KEY("from") REFERENCES pages(id),
	FOREIGN KEY("to") REFERENCES pages(id)
);

CREATE INDEX IF NOT EXISTS idx_links_to ON links("to");
CREATE INDEX IF NOT EXISTS idx_links_from ON links("from");

CREATE TABLE IF NOT EXISTS crawl_meta (
	key TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
);
`
