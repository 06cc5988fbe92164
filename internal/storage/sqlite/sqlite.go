// Package sqlite persists collection stores in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/deckdraw/internal/config"
	"github.com/cory-johannsen/deckdraw/internal/deck"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Repository stores a deck.Store in a single-connection SQLite database.
type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path with default settings.
func Open(path string) (*Repository, error) {
	return OpenConfig(config.SQLiteConfig{Path: path, BusyTimeout: 5 * time.Second})
}

// OpenConfig opens or creates the database described by cfg and bootstraps
// the schema.
//
// Precondition: cfg.Path must be non-empty.
// Postcondition: Returns a ready Repository or a non-nil error.
func OpenConfig(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db, cfg.BusyTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func initPragmas(db *sql.DB, busy time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", busy.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			name     TEXT    NOT NULL UNIQUE,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			collection_id INTEGER NOT NULL REFERENCES collections (id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			raw           TEXT    NOT NULL,
			PRIMARY KEY (collection_id, position)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (r *Repository) Close() error { return r.db.Close() }

// Health pings the database within timeout.
func (r *Repository) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// Load reads every collection in position order.
//
// Postcondition: Returns an empty store when no collections are saved.
func (r *Repository) Load(ctx context.Context) (*deck.Store, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, e.raw
		 FROM collections c
		 LEFT JOIN entries e ON e.collection_id = c.id
		 ORDER BY c.position, e.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var cs []deck.Collection
	for rows.Next() {
		var name string
		var raw sql.NullString
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if len(cs) == 0 || cs[len(cs)-1].Name != name {
			cs = append(cs, deck.Collection{Name: name, Entries: []string{}})
		}
		if raw.Valid {
			last := &cs[len(cs)-1]
			last.Entries = append(last.Entries, raw.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	s, err := deck.FromCollections(cs)
	if err != nil {
		return nil, fmt.Errorf("loading collections: %w", err)
	}
	return s, nil
}

// Save replaces the stored collections with s in a single transaction.
//
// Precondition: s must be non-nil.
// Postcondition: On error the previous contents are kept.
func (r *Repository) Save(ctx context.Context, s *deck.Store) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM collections`); err != nil {
		return fmt.Errorf("clearing collections: %w", err)
	}

	insCol, err := tx.PrepareContext(ctx, `INSERT INTO collections (name, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing collection insert: %w", err)
	}
	defer insCol.Close()
	insEntry, err := tx.PrepareContext(ctx, `INSERT INTO entries (collection_id, position, raw) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer insEntry.Close()

	for pos, c := range s.Collections() {
		res, err := insCol.ExecContext(ctx, c.Name, pos)
		if err != nil {
			return fmt.Errorf("inserting collection %q: %w", c.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading collection id: %w", err)
		}
		for i, raw := range c.Entries {
			if _, err := insEntry.ExecContext(ctx, id, i, raw); err != nil {
				return fmt.Errorf("inserting entry %d of %q: %w", i, c.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing collections: %w", err)
	}
	return nil
}
