package main

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/config"
	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
	"github.com/muurk/devreg/internal/store/filestore"
	"github.com/muurk/devreg/internal/store/memstore"
	"github.com/muurk/devreg/internal/store/nvstore"
	"github.com/muurk/devreg/internal/ui"
)

// formatter is implemented by stores that can be erased
type formatter interface {
	Format() error
}

// app is a registry with the sensebox groups wired to the configured store.
type app struct {
	reg       *registry.Registry
	box       *sensebox
	store     registry.Store
	storeInfo []ui.Detail
	closeFn   func() error
	log       *zap.Logger
}

// newApp opens the store selected by cfg and registers every group.
// Stored values are not loaded.
func newApp(cfg *config.Config) (*app, error) {
	log := logging.GetLogger()

	store, info, closeFn, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &app{
		reg:       registry.New(registry.WithLogger(log)),
		box:       newSensebox(),
		store:     store,
		storeInfo: info,
		closeFn:   closeFn,
		log:       log,
	}

	for _, g := range a.box.groups() {
		if err := a.reg.Register(g); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register group %s: %w", g.Name(), err)
		}
	}

	a.reg.RegisterSource(store)
	a.reg.RegisterDestination(store)
	return a, nil
}

func openStore(sc *config.StoreConfig) (registry.Store, []ui.Detail, func() error, error) {
	noop := func() error { return nil }
	info := []ui.Detail{{Key: "Backend", Value: sc.Backend}}

	switch sc.Backend {
	case config.BackendMemory:
		s := memstore.New(sc.Capacity)
		info = append(info, ui.Detail{Key: "Capacity", Value: strconv.Itoa(s.Capacity())})
		return s, info, noop, nil

	case config.BackendNVRAM:
		path, err := sc.ResolvedNVPath()
		if err != nil {
			return nil, nil, nil, err
		}
		m, err := nvstore.OpenFileMedium(path, sc.NVSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open nv image: %w", err)
		}
		s := nvstore.New(m)
		info = append(info,
			ui.Detail{Key: "Image", Value: path},
			ui.Detail{Key: "Size", Value: strconv.Itoa(m.Size())},
		)
		return s, info, s.Medium().Close, nil

	case config.BackendFile:
		path, err := sc.ResolvedFilePath()
		if err != nil {
			return nil, nil, nil, err
		}
		s := filestore.New(path)
		info = append(info, ui.Detail{Key: "File", Value: s.Path()})
		return s, info, noop, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}

// info describes the store for result output. The nv image also reports
// how much of it is in use.
func (a *app) info() []ui.Detail {
	out := append([]ui.Detail(nil), a.storeInfo...)
	switch s := a.store.(type) {
	case *nvstore.Store:
		if used, err := s.Used(); err == nil {
			out = append(out, ui.Detail{Key: "Used", Value: strconv.Itoa(used)})
		}
	case *memstore.Store:
		out = append(out, ui.Detail{Key: "Records", Value: strconv.Itoa(s.Len())})
	}
	return out
}

// Close releases the store
func (a *app) Close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}

// loadStored applies stored values. Records that fail are logged by the
// registry and reported as a warning; the rest stay applied.
func (a *app) loadStored() error {
	return a.reg.Load()
}

func (a *app) get(name string) (string, error) {
	v, ok := a.reg.GetValue(name, registry.MaxValLen+1)
	if !ok {
		return "", &registry.Error{Kind: registry.KindNotFound, Op: "get", Name: name, Message: "parameter does not exist"}
	}
	return v, nil
}

func (a *app) set(name, value string) error {
	return a.reg.SetValue(name, value)
}

// list returns every parameter, or those under name.
func (a *app) list(name string) ([]ui.Detail, error) {
	var rows []ui.Detail
	err := a.reg.Export(func(n, v string) error {
		rows = append(rows, ui.Detail{Key: n, Value: v})
		return nil
	}, name)
	return rows, err
}

// dump returns the raw store contents.
func (a *app) dump() ([]ui.Detail, error) {
	var rows []ui.Detail
	err := registry.Dump(a.store, func(n, v string) {
		rows = append(rows, ui.Detail{Key: n, Value: v})
	})
	return rows, err
}

func (a *app) save() error {
	return a.reg.Save()
}

func (a *app) commit(name string) error {
	return a.reg.Commit(name)
}

func (a *app) format() error {
	f, ok := a.store.(formatter)
	if !ok {
		return fmt.Errorf("store does not support formatting")
	}
	if err := f.Format(); err != nil {
		return err
	}
	a.log.Info("Store formatted")
	return nil
}
