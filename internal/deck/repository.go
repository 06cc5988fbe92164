package deck

import "context"

// Repository persists a whole Store.
type Repository interface {
	// Load returns the persisted store, empty if nothing was saved.
	Load(ctx context.Context) (*Store, error)
	// Save replaces the persisted store with s.
	Save(ctx context.Context, s *Store) error
}
