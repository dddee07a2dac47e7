package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/notecards/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) ListNotes(ctx context.Context) ([]api.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, body, tags, created_at FROM notes ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetNote(ctx context.Context, id string) (api.Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, body, tags, created_at FROM notes WHERE id=?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Note{}, ErrNotFound
	}
	return n, err
}

func (s *sqliteStore) CreateNote(ctx context.Context, n api.Note) (api.Note, error) {
	if n.ID == "" {
		return api.Note{}, ErrConflict
	}
	tagsJSON, err := json.Marshal(nonNil(n.Tags))
	if err != nil {
		return api.Note{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO notes(id, title, body, tags, created_at) VALUES(?,?,?,?,?)`,
		n.ID, n.Title, n.Body, string(tagsJSON), formatTime(n.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			err = ErrConflict
		}
		return api.Note{}, err
	}
	return s.GetNote(ctx, n.ID)
}

func (s *sqliteStore) UpdateNote(ctx context.Context, n api.Note) (api.Note, error) {
	tagsJSON, err := json.Marshal(nonNil(n.Tags))
	if err != nil {
		return api.Note{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Note{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE notes SET title=?, body=?, tags=? WHERE id=?`, n.Title, n.Body, string(tagsJSON), n.ID)
	if err != nil {
		return api.Note{}, err
	}
	if c, _ := res.RowsAffected(); c == 0 {
		return api.Note{}, ErrNotFound
	}
	// Read back current note
	out, err := scanNote(tx.QueryRowContext(ctx, `SELECT id, title, body, tags, created_at FROM notes WHERE id=?`, n.ID))
	if err != nil {
		return api.Note{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Note{}, err
	}
	return out, nil
}

func (s *sqliteStore) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if c, _ := res.RowsAffected(); c == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(r scanner) (api.Note, error) {
	var n api.Note
	var tagsJSON, created string
	if err := r.Scan(&n.ID, &n.Title, &n.Body, &tagsJSON, &created); err != nil {
		return api.Note{}, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &n.Tags)
	n.Tags = nonNil(n.Tags)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		n.CreatedAt = t
	}
	return n, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (Notes, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS notes (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  tags TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title);
`)
	return err
}
