package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS marks (
	bucket  TEXT NOT NULL,
	item_id TEXT NOT NULL,
	at_ms   INTEGER NOT NULL,
	PRIMARY KEY (bucket, item_id)
);

CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL CHECK(kind IN ('sms', 'voice')),
	status      TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	date        DATETIME NOT NULL,
	data        TEXT NOT NULL,
	fetched_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tickets_kind_date ON tickets(kind, date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tickets_assigned
	ON tickets(assigned_to, status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
