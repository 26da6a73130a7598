package kv

import "fmt"

// migrate runs all schema migrations
func (s *SQLStore) migrate() error {
	for i, m := range s.dialect.migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// One table holds every blob. revision is stamped fresh on each write, origin
// is the session that wrote it; together they drive the change feed.
const migrationCreateEntries = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    revision BIGINT NOT NULL DEFAULT 0,
    origin TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);
`

const migrationIndexRevision = `
CREATE INDEX IF NOT EXISTS idx_kv_entries_revision ON kv_entries(revision);
`

// Postgres writers run concurrently, so revisions come from a sequence rather
// than MAX+1. setval only ever moves the sequence forward.
const migrationRevisionSequence = `
CREATE SEQUENCE IF NOT EXISTS kv_revision_seq;
SELECT setval('kv_revision_seq', GREATEST(
    (SELECT COALESCE(MAX(revision), 0) FROM kv_entries),
    (SELECT last_value FROM kv_revision_seq)
));
`

type dialect struct {
	name       string
	driver     string
	migrations []string
	get        string
	upsert     string
	entries    string
}

const selectEntries = `SELECT key, value, revision, origin FROM kv_entries ORDER BY revision ASC`

var sqliteDialect = dialect{
	name:       DriverSQLite,
	driver:     "sqlite",
	migrations: []string{migrationCreateEntries, migrationIndexRevision},
	get:        `SELECT value FROM kv_entries WHERE key = ?`,
	upsert: `
INSERT INTO kv_entries (key, value, revision, origin, updated_at)
VALUES (?, ?, (SELECT COALESCE(MAX(revision), 0) + 1 FROM kv_entries), ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    revision = (SELECT COALESCE(MAX(revision), 0) + 1 FROM kv_entries),
    origin = excluded.origin,
    updated_at = excluded.updated_at
RETURNING revision`,
	entries: selectEntries,
}

var postgresDialect = dialect{
	name:       DriverPostgres,
	driver:     "postgres",
	migrations: []string{migrationCreateEntries, migrationIndexRevision, migrationRevisionSequence},
	get:        `SELECT value FROM kv_entries WHERE key = $1`,
	upsert: `
INSERT INTO kv_entries (key, value, revision, origin, updated_at)
VALUES ($1, $2, nextval('kv_revision_seq'), $3, $4)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    revision = EXCLUDED.revision,
    origin = EXCLUDED.origin,
    updated_at = EXCLUDED.updated_at
RETURNING revision`,
	entries: selectEntries,
}
