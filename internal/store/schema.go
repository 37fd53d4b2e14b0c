package store

// schemaVersion is the current schema version. Store.Open migrates any
// database below this version before serving requests.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS slices (
	id         TEXT PRIMARY KEY,
	pie_id     TEXT NOT NULL REFERENCES pies(id) ON DELETE CASCADE,
	ordinal    INTEGER NOT NULL,
	host       TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	stopped_at TEXT,
	UNIQUE (pie_id, ordinal)
);

CREATE TABLE IF NOT EXISTS slice_resources (
	id              TEXT PRIMARY KEY,
	slice_id        TEXT NOT NULL REFERENCES slices(id) ON DELETE CASCADE,
	key             TEXT NOT NULL,
	allocated_port  INTEGER NOT NULL UNIQUE,
	protocol        TEXT NOT NULL,
	expose          TEXT NOT NULL,
	route_host      TEXT UNIQUE,
	is_primary_http INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL,
	UNIQUE (slice_id, key)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY,
	pie_id     TEXT REFERENCES pies(id) ON DELETE SET NULL,
	slice_id   TEXT REFERENCES slices(id) ON DELETE SET NULL,
	kind       TEXT NOT NULL,
	payload    BLOB,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_slices_pie_id ON slices(pie_id);
CREATE INDEX IF NOT EXISTS idx_slice_resources_slice_id ON slice_resources(slice_id);
`

// migrateVersion returns the schema version Store.migrate records for a
// database currently at version current: anything below schemaVersion is
// bumped to schemaVersion. Only the recorded version changes. Tables that
// already exist are left as they are (schemaDDL uses CREATE TABLE IF NOT
// EXISTS), so a legacy slices table keeps its repoPath, worktreePath and
// branch columns; no table is rebuilt, no data is copied, and no integrity
// check runs.
func migrateVersion(current int) int {
	if current < schemaVersion {
		return schemaVersion
	}
	return current
}
