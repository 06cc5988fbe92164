package resolver

import "fmt"

// Store is the collection handle a Resolver reads from and mutates.
//
// Implementations need not be safe for concurrent use; callers serialize
// all resolution against one store.
type Store interface {
	// Entries returns the raw entries of the named collection and whether it exists.
	Entries(name string) ([]string, bool)
	// RemoveEntry deletes the entry at index from the named collection.
	RemoveEntry(name string, index int) error
}

// Map is a Store over a plain name → entries map.
type Map map[string][]string

// Entries implements Store.
func (m Map) Entries(name string) ([]string, bool) {
	e, ok := m[name]
	return e, ok
}

// RemoveEntry implements Store.
func (m Map) RemoveEntry(name string, index int) error {
	e, ok := m[name]
	if !ok {
		return fmt.Errorf("resolver: collection %q not found", name)
	}
	if index < 0 || index >= len(e) {
		return fmt.Errorf("resolver: index %d out of range for collection %q", index, name)
	}
	m[name] = append(e[:index:index], e[index+1:]...)
	return nil
}
