package favorites

import (
	"errors"
	"sync"
)

// StorageKey is the fixed slot key the favorites set is persisted under
const StorageKey = "favorites-storage"

var (
	// ErrStorageUnavailable means the slot cannot be used at all for this
	// browser profile (storage disabled, non-browser client).
	ErrStorageUnavailable = errors.New("favorites storage unavailable")
	// ErrQuotaExceeded means the encoded value does not fit into the slot
	ErrQuotaExceeded = errors.New("favorites storage quota exceeded")
	// ErrCorruptState wraps values that cannot be decoded as a favorites set
	ErrCorruptState = errors.New("favorites storage holds corrupt state")
)

// Slot is a durable key-value slot scoped to one browser profile.
type Slot interface {
	// Load returns the stored value; found is false when nothing was stored.
	Load(key string) (value string, found bool, err error)
	Save(key, value string) error
}

// MemorySlot keeps values in process memory.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

func (m *MemorySlot) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySlot) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// UnavailableSlot rejects every access with ErrStorageUnavailable.
type UnavailableSlot struct{}

func (UnavailableSlot) Load(string) (string, bool, error) {
	return "", false, ErrStorageUnavailable
}

func (UnavailableSlot) Save(string, string) error {
	return ErrStorageUnavailable
}
