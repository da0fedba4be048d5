package lexicon

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// SnapshotStore serves entity candidates from a local SQLite database so
// the tokenizer can run without the knowledge-base endpoint. The database
// is produced by cmd/download-entities. SnapshotStore implements Source.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshot opens (and if necessary initializes) a snapshot database.
func OpenSnapshot(ctx context.Context, path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for concurrent readers
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS entities (
	token TEXT NOT NULL,
	tag TEXT NOT NULL,
	type TEXT NOT NULL,
	id TEXT NOT NULL,
	display TEXT NOT NULL,
	canonical TEXT NOT NULL,
	PRIMARY KEY(token, tag, id)
);
CREATE INDEX IF NOT EXISTS idx_entities_token ON entities(token);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SnapshotStore{db: db}, nil
}

// Close closes the database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// Put stores the candidates for one lookup token, replacing earlier rows.
func (s *SnapshotStore) Put(ctx context.Context, token string, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entities WHERE token = ?", token); err != nil {
		return err
	}
	for _, e := range entries {
		ent, ok := e.Value.(value.Entity)
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO entities(token, tag, type, id, display, canonical) VALUES(?, ?, ?, ?, ?, ?)",
			token, e.Tag, ent.Type, ent.ID, ent.Display, e.Canonical)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Lookup serves candidates from the snapshot. The same single-token
// filtering applies as for the live endpoint.
func (s *SnapshotStore) Lookup(ctx context.Context, rawPhrase string) ([]Entry, error) {
	token := PreprocessRawPhrase(rawPhrase)
	if token == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT tag, type, id, display, canonical FROM entities WHERE token = ?", token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var tag, typ, id, display, canonical string
		if err := rows.Scan(&tag, &typ, &id, &display, &canonical); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Tag:       tag,
			Value:     value.Entity{Type: typ, ID: id, Display: display},
			Canonical: canonical,
		})
	}
	return entries, rows.Err()
}
