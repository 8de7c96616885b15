// Package memstore provides a fixed-capacity in-memory table store.
//
// Records live in an array of (name, value) slots. Saving a name already
// present updates its slot in place; a new name takes the first empty slot.
// Once every slot is taken, saving a new name fails with a
// capacity-exhausted error. Load yields occupied slots in array order.
//
// The table is lost on restart. It serves development images, tests and
// the regctl shell when no persistent medium is configured.
package memstore

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
)

const (
	// DefaultCapacity is the default number of slots
	DefaultCapacity = 64

	// MaxNameLen is the longest name a slot holds
	MaxNameLen = 64

	// MaxValueLen is the longest value a slot holds
	MaxValueLen = 64
)

type slot struct {
	name  string
	value string
}

// Store is an in-memory table of name/value slots.
type Store struct {
	mu     sync.Mutex
	slots  []slot
	writes int
	log    *zap.Logger
}

// New creates a store with capacity slots. A capacity below one selects
// DefaultCapacity.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{
		slots: make([]slot, capacity),
		log:   logging.GetLogger(),
	}
}

// Load calls fn for every occupied slot in slot order.
func (s *Store) Load(fn registry.LoadFunc) error {
	// copy out so fn may call back into the store
	s.mu.Lock()
	records := make([]slot, 0, len(s.slots))
	for _, sl := range s.slots {
		if sl.name != "" {
			records = append(records, sl)
		}
	}
	s.mu.Unlock()

	for _, r := range records {
		fn(r.name, r.value)
	}
	return nil
}

// Save stores value under name.
func (s *Store) Save(name, value string) error {
	const op = "memstore save"

	if name == "" {
		return registry.NewInvalidFormatError(op, "empty name", nil)
	}
	if len(name) > MaxNameLen {
		return registry.NewOverflowError(op, fmt.Sprintf("name of %d bytes exceeds %d", len(name), MaxNameLen))
	}
	if len(value) > MaxValueLen {
		return registry.NewOverflowError(op, fmt.Sprintf("value of %d bytes exceeds %d", len(value), MaxValueLen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	free := -1
	for i, sl := range s.slots {
		if sl.name == "" {
			if free == -1 {
				free = i
			}
			continue
		}
		if sl.name == name {
			s.slots[i].value = value
			s.writes++
			s.log.Debug("Updated slot", zap.Int("slot", i), zap.String("name", name))
			return nil
		}
	}

	if free == -1 {
		return registry.NewCapacityError(op, name)
	}

	s.slots[free] = slot{name: name, value: value}
	s.writes++
	s.log.Debug("Filled slot", zap.Int("slot", free), zap.String("name", name))
	return nil
}

// Len returns the number of occupied slots
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sl := range s.slots {
		if sl.name != "" {
			n++
		}
	}
	return n
}

// Capacity returns the number of slots
func (s *Store) Capacity() int {
	return len(s.slots)
}

// Writes returns how many times a slot has been written
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Format empties every slot
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		s.slots[i] = slot{}
	}
	return nil
}
