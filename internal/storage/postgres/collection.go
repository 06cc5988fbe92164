package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/deckdraw/internal/deck"
)

// CollectionRepository stores a deck.Store in the collections and entries
// tables.
type CollectionRepository struct {
	db *pgxpool.Pool
}

// NewCollectionRepository creates a CollectionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the schema applied.
func NewCollectionRepository(db *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Load reads every collection in position order.
//
// Postcondition: Returns an empty store when no collections are saved.
func (r *CollectionRepository) Load(ctx context.Context) (*deck.Store, error) {
	rows, err := r.db.Query(ctx,
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
		var raw *string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if len(cs) == 0 || cs[len(cs)-1].Name != name {
			cs = append(cs, deck.Collection{Name: name, Entries: []string{}})
		}
		if raw != nil {
			last := &cs[len(cs)-1]
			last.Entries = append(last.Entries, *raw)
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
func (r *CollectionRepository) Save(ctx context.Context, s *deck.Store) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM collections`); err != nil {
		return fmt.Errorf("clearing collections: %w", err)
	}

	var rows [][]any
	for pos, c := range s.Collections() {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO collections (name, position) VALUES ($1, $2) RETURNING id`,
			c.Name, pos,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting collection %q: %w", c.Name, err)
		}
		for i, raw := range c.Entries {
			rows = append(rows, []any{id, i, raw})
		}
	}

	if len(rows) > 0 {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"entries"},
			[]string{"collection_id", "position", "raw"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing collections: %w", err)
	}
	return nil
}
