// Package favorites holds the per-visitor favorites store: an observable set
// of product ids mirrored to a durable slot owned by the visitor's browser.
//
// A Store starts empty and storage-less. Until Hydrate is called every query
// answers as the empty set. Hydrate loads the slot exactly once; afterwards
// each membership change is applied in memory first and then written to the
// slot on a best-effort basis. Storage failures are logged and never returned
// to callers.
package favorites

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mrops-br/restyle-storefront/internal/domain"
)

var _ domain.Favorites = (*Store)(nil)

// Listener receives a private copy of the set after every change
type Listener func(domain.FavoriteSet)

// Store is the observable favorites set of one browser profile.
type Store struct {
	mu        sync.Mutex
	set       domain.FavoriteSet
	slot      Slot
	hydrated  bool
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
}

// NewStore creates an empty store with no storage attached
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		set:       domain.NewFavoriteSet(),
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Hydrate performs the one-time load from slot and attaches it for writes.
// Calls after the first are ignored.
func (s *Store) Hydrate(slot Slot) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		s.logger.Debug("Favorites store already hydrated")
		return
	}
	s.hydrated = true

	if slot == nil {
		s.mu.Unlock()
		return
	}

	raw, found, err := slot.Load(StorageKey)
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		s.mu.Unlock()
		s.logger.Warn("Favorites storage unavailable, continuing in memory",
			slog.String("error", err.Error()),
		)
		return
	case err != nil:
		s.slot = slot
		s.mu.Unlock()
		s.logger.Error("Failed to read favorites storage",
			slog.String("key", StorageKey),
			slog.String("error", err.Error()),
		)
		return
	case !found:
		s.slot = slot
		s.mu.Unlock()
		return
	}

	loaded, err := decodeSet(raw)
	s.slot = slot
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("Discarding unreadable favorites storage",
			slog.String("key", StorageKey),
			slog.String("error", err.Error()),
		)
		return
	}

	s.set = loaded
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Favorites loaded from storage",
		slog.Int("count", snapshot.Len()),
	)
	notify(listeners, snapshot)
}

// Hydrated reports whether Hydrate has run
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

func (s *Store) IsFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Contains(id)
}

func (s *Store) ToggleFavorite(id int) {
	s.mutate(func(set domain.FavoriteSet) bool {
		if set.Contains(id) {
			delete(set, id)
		} else {
			set[id] = struct{}{}
		}
		return true
	})
}

func (s *Store) AddFavorite(id int) {
	s.mutate(func(set domain.FavoriteSet) bool {
		if set.Contains(id) {
			return false
		}
		set[id] = struct{}{}
		return true
	})
}

func (s *Store) RemoveFavorite(id int) {
	s.mutate(func(set domain.FavoriteSet) bool {
		if !set.Contains(id) {
			return false
		}
		delete(set, id)
		return true
	})
}

// Snapshot returns a copy of the current set
func (s *Store) Snapshot() domain.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// IDs returns the current members in ascending order
func (s *Store) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.IDs()
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate applies change under the lock, persists while still holding it so
// writes land in mutation order, then notifies outside the lock.
func (s *Store) mutate(change func(domain.FavoriteSet) bool) {
	s.mu.Lock()
	if !change(s.set) {
		s.mu.Unlock()
		return
	}
	s.persistLocked()
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

func (s *Store) persistLocked() {
	if s.slot == nil {
		return
	}

	value, err := encodeSet(s.set)
	if err != nil {
		s.logger.Error("Failed to encode favorites",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.slot.Save(StorageKey, value); err != nil {
		s.logger.Error("Failed to persist favorites",
			slog.String("key", StorageKey),
			slog.Int("count", s.set.Len()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) snapshotLocked() (domain.FavoriteSet, []Listener) {
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return s.set.Clone(), listeners
}

func notify(listeners []Listener, set domain.FavoriteSet) {
	for _, l := range listeners {
		l(set.Clone())
	}
}
