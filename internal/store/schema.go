package store

// Schema contains the DDL for snapshot history.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id                TEXT PRIMARY KEY,
    page_url          TEXT NOT NULL,
    page_id           TEXT NOT NULL DEFAULT '',
    element_count     INTEGER NOT NULL,
    interactive_count INTEGER NOT NULL,
    tree_json         TEXT NOT NULL,
    markdown          TEXT NOT NULL DEFAULT '',
    created_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_url ON snapshots(page_url);
CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
`
