// Package store persists snapshot history in SQLite. The full node tree is
// stored as JSON; the listing columns carry only the metadata an agent
// needs to pick a snapshot.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazyhaar/domsnap/dbopen"
	"github.com/hazyhaar/domsnap/dom"
)

// Store is the snapshot history database handle.
type Store struct {
	DB *sql.DB
}

// Meta is one history listing row, the tree excluded.
type Meta struct {
	ID               string `json:"id"`
	PageURL          string `json:"page_url"`
	PageID           string `json:"page_id,omitempty"`
	ElementCount     int    `json:"element_count"`
	InteractiveCount int    `json:"interactive_count"`
	Timestamp        int64  `json:"timestamp"`
}

// Open opens (or creates) the history database at path with production
// pragmas and the snapshot schema applied.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// New wraps an already-open database, used with dbopen.OpenMemory in tests.
func New(db *sql.DB) *Store { return &Store{DB: db} }

// Close closes the database.
func (s *Store) Close() error { return s.DB.Close() }

// Save inserts a snapshot.
func (s *Store) Save(ctx context.Context, snap *dom.Snapshot) error {
	treeJSON, err := dom.MarshalTree(snap.Tree)
	if err != nil {
		return fmt.Errorf("store: marshal tree: %w", err)
	}

	_, err = dbopen.Exec(ctx, s.DB, `
		INSERT INTO snapshots
			(id, page_url, page_id, element_count, interactive_count,
			 tree_json, markdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.PageURL, snap.PageID,
		snap.ElementCount, snap.InteractiveCount,
		string(treeJSON), snap.Markdown, snap.Timestamp)
	if err != nil {
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	return nil
}

// Get loads one snapshot by ID, tree included.
func (s *Store) Get(ctx context.Context, id string) (*dom.Snapshot, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, page_url, page_id, element_count, interactive_count,
		       tree_json, markdown, created_at
		FROM snapshots WHERE id = ?`, id)

	var snap dom.Snapshot
	var treeJSON string
	err := row.Scan(&snap.ID, &snap.PageURL, &snap.PageID,
		&snap.ElementCount, &snap.InteractiveCount,
		&treeJSON, &snap.Markdown, &snap.Timestamp)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: snapshot %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get snapshot: %w", err)
	}

	tree, err := dom.UnmarshalTree([]byte(treeJSON))
	if err != nil {
		return nil, fmt.Errorf("store: unmarshal tree: %w", err)
	}
	snap.Tree = tree
	return &snap, nil
}

// List returns the most recent snapshots, newest first. A non-empty
// pageURL filters to that URL.
func (s *Store) List(ctx context.Context, pageURL string, limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, page_url, page_id, element_count, interactive_count, created_at
		FROM snapshots`
	args := []any{}
	if pageURL != "" {
		query += ` WHERE page_url = ?`
		args = append(args, pageURL)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.PageURL, &m.PageID,
			&m.ElementCount, &m.InteractiveCount, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Prune keeps the newest maxRows snapshots and deletes the rest. Returns
// the number of rows removed.
func (s *Store) Prune(ctx context.Context, maxRows int) (int64, error) {
	if maxRows <= 0 {
		return 0, nil
	}
	res, err := dbopen.Exec(ctx, s.DB, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?
		)`, maxRows)
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	return res.RowsAffected()
}
