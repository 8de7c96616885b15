package registry

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
)

// LoadFunc receives one stored record.
type LoadFunc func(name, value string)

// Store is a persistence backend. A store can be registered as a load
// source, as the save destination, or both.
type Store interface {
	// Load calls fn for every stored record.
	Load(fn LoadFunc) error
	// Save stores value under name, replacing any previous value.
	Save(name, value string) error
}

// SaveStarter is implemented by stores that frame a batch of saves.
type SaveStarter interface {
	SaveStart() error
}

// SaveEnder is implemented by stores that frame a batch of saves.
type SaveEnder interface {
	SaveEnd() error
}

// RegisterSource adds a store to the load sources. Values are loaded from
// every source in registration order.
func (r *Registry) RegisterSource(s Store) {
	r.mu.Lock()
	r.sources = append(r.sources, s)
	r.mu.Unlock()
}

// RegisterDestination makes s the save destination, replacing any
// previously registered one.
func (r *Registry) RegisterDestination(s Store) {
	r.mu.Lock()
	r.dest = s
	r.mu.Unlock()
}

// Destination returns the current save destination, or nil.
func (r *Registry) Destination() Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dest
}

func (r *Registry) snapshotSources() []Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Store, len(r.sources))
	copy(out, r.sources)
	return out
}

// Load reads every load source and applies each record with SetValue as it
// is read. A record that fails to apply is logged and skipped; loading
// carries on and the collected failures are returned at the end.
func (r *Registry) Load() error {
	sources := r.snapshotSources()
	if len(sources) == 0 {
		return ErrNoSource
	}

	var errs *multierror.Error
	applied := 0
	for i, src := range sources {
		err := src.Load(func(name, value string) {
			if err := r.SetValue(name, value); err != nil {
				logging.LogLoadRecord(r.log, name, value, err)
				errs = multierror.Append(errs, err)
				return
			}
			applied++
		})
		if err != nil {
			r.log.Warn("Load source failed", zap.Int("source", i), zap.Error(err))
			errs = multierror.Append(errs, fmt.Errorf("load source %d: %w", i, err))
		}
	}

	r.log.Info("Registry loaded", zap.Int("sources", len(sources)), zap.Int("applied", applied))
	return errs.ErrorOrNil()
}

// Save exports every parameter of every group into the save destination
// through SaveOne, framed by SaveStart/SaveEnd when the store supports them.
func (r *Registry) Save() error {
	dst := r.Destination()
	if dst == nil {
		return ErrNoDestination
	}

	if s, ok := dst.(SaveStarter); ok {
		if err := s.SaveStart(); err != nil {
			return fmt.Errorf("save start: %w", err)
		}
	}

	var errs *multierror.Error
	if err := r.exportAll("save", r.SaveOne); err != nil {
		errs = multierror.Append(errs, err)
	}

	if e, ok := dst.(SaveEnder); ok {
		if err := e.SaveEnd(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("save end: %w", err))
		}
	}
	return errs.ErrorOrNil()
}

// SaveOne writes a single parameter to the save destination. The write is
// skipped when the destination already holds the same value under the same
// name, which spares wear on non-volatile media. If the destination cannot
// be read for that check the save is aborted.
func (r *Registry) SaveOne(name, value string) error {
	dst := r.Destination()
	if dst == nil {
		return ErrNoDestination
	}

	dup := false
	if err := dst.Load(func(n, v string) {
		if n == name && v == value {
			dup = true
		}
	}); err != nil {
		return fmt.Errorf("duplicate check for %q: %w", name, err)
	}

	if dup {
		r.log.Debug("Skipping unchanged parameter", zap.String("name", name))
		return nil
	}

	if err := dst.Save(name, value); err != nil {
		return err
	}
	logging.LogSave(r.log, name, value)
	return nil
}

// Dump passes the raw contents of s to fn.
func Dump(s Store, fn LoadFunc) error {
	return s.Load(fn)
}
