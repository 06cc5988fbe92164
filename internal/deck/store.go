// Package deck holds an ordered store of named collections and the editing
// rules applied to it: unique names, hidden collections, entry encoding, and
// ordering.
package deck

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/cory-johannsen/deckdraw/internal/draw/entry"
)

// HiddenPrefix marks a collection hidden from pick lists. Hidden collections
// stay resolvable by their full name.
const HiddenPrefix = "_"

const (
	defaultNewName     = "New Deck"
	defaultRenamedName = "Untitled Deck"
)

var (
	// ErrNameConflict is returned when a name collides with another
	// collection, hidden prefix ignored.
	ErrNameConflict = errors.New("deck: collection name conflict")
	// ErrCollectionNotFound is returned for operations on a missing collection.
	ErrCollectionNotFound = errors.New("deck: collection not found")
	// ErrIndexOutOfRange is returned for entry indexes outside the collection.
	ErrIndexOutOfRange = errors.New("deck: entry index out of range")
)

// IsHidden reports whether name denotes a hidden collection.
func IsHidden(name string) bool { return strings.HasPrefix(name, HiddenPrefix) }

// BaseName returns name without its hidden prefix.
func BaseName(name string) string { return strings.TrimPrefix(name, HiddenPrefix) }

// Collection is a named, ordered list of raw entries.
type Collection struct {
	Name    string
	Entries []string
}

// Store is an ordered set of collections.
//
// Store is not safe for concurrent use. It satisfies resolver.Store.
type Store struct {
	names   []string
	entries map[string][]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string][]string)}
}

// FromCollections builds a Store from cs in order.
//
// Postcondition: Returns ErrNameConflict if two collections share a base name.
func FromCollections(cs []Collection) (*Store, error) {
	s := New()
	for _, c := range cs {
		if s.conflicts(c.Name, "") {
			return nil, fmt.Errorf("%w: %q", ErrNameConflict, c.Name)
		}
		s.names = append(s.names, c.Name)
		s.entries[c.Name] = append([]string{}, c.Entries...)
	}
	return s, nil
}

// FromMap builds a Store from m, ordering collections by names. Names
// absent from m become empty collections.
func FromMap(names []string, m map[string][]string) (*Store, error) {
	return FromCollections(lo.Map(names, func(n string, _ int) Collection {
		return Collection{Name: n, Entries: m[n]}
	}))
}

// Names returns all collection names in order.
func (s *Store) Names() []string { return slices.Clone(s.names) }

// Visible returns the names of non-hidden collections in order.
func (s *Store) Visible() []string {
	return lo.Filter(s.names, func(n string, _ int) bool { return !IsHidden(n) })
}

// Search returns the names whose base name contains keyword, ignoring case.
// An empty keyword matches every collection.
func (s *Store) Search(keyword string) []string {
	kw := strings.ToLower(keyword)
	return lo.Filter(s.names, func(n string, _ int) bool {
		return strings.Contains(strings.ToLower(BaseName(n)), kw)
	})
}

// Len returns the number of collections.
func (s *Store) Len() int { return len(s.names) }

// Has reports whether the named collection exists.
func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Entries returns the raw entries of the named collection. The returned slice
// must not be modified.
func (s *Store) Entries(name string) ([]string, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Collections returns a deep copy of every collection in order.
func (s *Store) Collections() []Collection {
	return lo.Map(s.names, func(n string, _ int) Collection {
		return Collection{Name: n, Entries: slices.Clone(s.entries[n])}
	})
}

// Snapshot returns a deep copy of s.
func (s *Store) Snapshot() *Store {
	cp := New()
	for _, c := range s.Collections() {
		cp.names = append(cp.names, c.Name)
		cp.entries[c.Name] = c.Entries
	}
	return cp
}

// conflicts reports whether name collides with a collection other than except.
func (s *Store) conflicts(name, except string) bool {
	base := BaseName(name)
	return lo.ContainsBy(s.names, func(n string) bool {
		return n != except && BaseName(n) == base
	})
}

func (s *Store) index(name string) int { return slices.Index(s.names, name) }

// Create adds an empty collection named base, or base(1), base(2), ... when
// taken, and returns the chosen name. An empty base uses "New Deck".
func (s *Store) Create(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = defaultNewName
	}
	name := base
	for n := 1; s.conflicts(name, ""); n++ {
		name = fmt.Sprintf("%s(%d)", base, n)
	}
	s.names = append(s.names, name)
	s.entries[name] = []string{}
	return name
}

// Set replaces the entries of name, appending a new collection if absent.
//
// Postcondition: Returns ErrNameConflict if a different collection shares
// the base name.
func (s *Store) Set(name string, entries []string) error {
	if s.conflicts(name, name) {
		return fmt.Errorf("%w: %q", ErrNameConflict, name)
	}
	if !s.Has(name) {
		s.names = append(s.names, name)
	}
	s.entries[name] = slices.Clone(entries)
	return nil
}

// Rename renames old to newName in place. newName is trimmed; an empty name
// becomes "Untitled Deck". A hidden collection stays hidden.
//
// Postcondition: Returns the applied name, ErrCollectionNotFound, or
// ErrNameConflict.
func (s *Store) Rename(old, newName string) (string, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		name = defaultRenamedName
	}
	if IsHidden(old) && !IsHidden(name) {
		name = HiddenPrefix + name
	}
	return name, s.rename(old, name)
}

// SetHidden hides or reveals the named collection, keeping its position.
//
// Postcondition: Returns the new name, ErrCollectionNotFound, or ErrNameConflict.
func (s *Store) SetHidden(name string, hidden bool) (string, error) {
	target := BaseName(name)
	if hidden {
		target = HiddenPrefix + target
	}
	return target, s.rename(name, target)
}

// ToggleHidden flips the hidden state of the named collection.
func (s *Store) ToggleHidden(name string) (string, error) {
	return s.SetHidden(name, !IsHidden(name))
}

func (s *Store) rename(old, name string) error {
	i := s.index(old)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCollectionNotFound, old)
	}
	if old == name {
		return nil
	}
	if s.conflicts(name, old) {
		return fmt.Errorf("%w: %q", ErrNameConflict, name)
	}
	s.names[i] = name
	s.entries[name] = s.entries[old]
	delete(s.entries, old)
	return nil
}

// Delete removes the named collection.
func (s *Store) Delete(name string) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	s.names = slices.Delete(s.names, i, i+1)
	delete(s.entries, name)
	return nil
}

// Clear removes every collection.
func (s *Store) Clear() {
	s.names = nil
	s.entries = make(map[string][]string)
}

// MoveUp swaps the named collection with its predecessor. The first
// collection stays in place.
func (s *Store) MoveUp(name string) error { return s.move(name, -1) }

// MoveDown swaps the named collection with its successor. The last
// collection stays in place.
func (s *Store) MoveDown(name string) error { return s.move(name, 1) }

func (s *Store) move(name string, delta int) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	j := i + delta
	if j < 0 || j >= len(s.names) {
		return nil
	}
	s.names[i], s.names[j] = s.names[j], s.names[i]
	return nil
}

func (s *Store) collection(name string) ([]string, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	return e, nil
}

// AddEntry appends content with weightExpr to the named collection.
func (s *Store) AddEntry(name, content, weightExpr string) error {
	e, err := s.collection(name)
	if err != nil {
		return err
	}
	s.entries[name] = append(slices.Clip(e), entry.Encode(content, weightExpr))
	return nil
}

// UpdateEntry replaces the entry at index.
func (s *Store) UpdateEntry(name string, index int, content, weightExpr string) error {
	e, err := s.collection(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e) {
		return fmt.Errorf("%w: %d in %q", ErrIndexOutOfRange, index, name)
	}
	updated := slices.Clone(e)
	updated[index] = entry.Encode(content, weightExpr)
	s.entries[name] = updated
	return nil
}

// RemoveEntry deletes the entry at index. Slices previously returned by
// Entries are left untouched.
func (s *Store) RemoveEntry(name string, index int) error {
	e, err := s.collection(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e) {
		return fmt.Errorf("%w: %d in %q", ErrIndexOutOfRange, index, name)
	}
	s.entries[name] = slices.Delete(slices.Clone(e), index, index+1)
	return nil
}

// MoveEntry swaps the entry at index with its neighbour above (up) or below.
// Moving past either end is a no-op.
func (s *Store) MoveEntry(name string, index int, up bool) error {
	e, err := s.collection(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e) {
		return fmt.Errorf("%w: %d in %q", ErrIndexOutOfRange, index, name)
	}
	j := index + 1
	if up {
		j = index - 1
	}
	if j < 0 || j >= len(e) {
		return nil
	}
	moved := slices.Clone(e)
	moved[index], moved[j] = moved[j], moved[index]
	s.entries[name] = moved
	return nil
}
