// ABOUTME: SQLite schema for the persisted patch library
// ABOUTME: Patches and tag memberships are two related tables saved as one unit
package sqlite

// Schema contains all SQL statements for database initialization.
const Schema = `
-- Library metadata (schema name, format version, save timestamp)
CREATE TABLE IF NOT EXISTS library_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Patch table: ordered by id, which is the stable in-memory index
CREATE TABLE IF NOT EXISTS patches (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    bank TEXT NOT NULL,
    meta TEXT NOT NULL DEFAULT '{}',
    params BLOB NOT NULL
);

-- Tag membership side table, parallel to patches
CREATE TABLE IF NOT EXISTS patch_tags (
    patch_id INTEGER NOT NULL REFERENCES patches(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (patch_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_patch_tags_tag ON patch_tags(tag);
CREATE INDEX IF NOT EXISTS idx_patches_bank ON patches(bank);
`

// Keys in library_info.
const (
	infoSynth         = "synth"
	infoFormatVersion = "format_version"
	infoSavedAt       = "saved_at"
)

// formatVersion guards against reading a store written by an incompatible
// release.
const formatVersion = "1"
