// Package filestore provides a store kept in a plain text file with one
// name=value record per line.
//
// The line is split at the first '=' so values may contain '='. Lines that
// cannot be parsed are logged and skipped. A missing file loads as empty.
// Every write replaces the file atomically through a temporary file and a
// rename; between SaveStart and SaveEnd writes are batched into a single
// replacement.
package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
)

// maxLineLen is the longest line that can hold a valid record
const maxLineLen = registry.MaxNameLen + 1 + registry.MaxValLen

type record struct {
	name  string
	value string
}

// Store is a text file store.
type Store struct {
	mu      sync.Mutex
	path    string
	pending []record
	batch   bool
	log     *zap.Logger
}

// New creates a store for the file at path. The file is not touched until
// the first load or save.
func New(path string) *Store {
	return &Store{path: path, log: logging.GetLogger()}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load calls fn for every readable record, in file order. During a batch
// it reports the pending contents.
func (s *Store) Load(fn registry.LoadFunc) error {
	s.mu.Lock()
	var records []record
	if s.batch {
		records = append(records, s.pending...)
	} else {
		var err error
		records, err = s.read()
		if err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	for _, r := range records {
		fn(r.name, r.value)
	}
	return nil
}

// Save stores value under name, replacing an existing line for name.
func (s *Store) Save(name, value string) error {
	const op = "filestore save"

	if name == "" {
		return registry.NewInvalidFormatError(op, "empty name", nil)
	}
	if strings.ContainsAny(name, "=\n\r") {
		return registry.NewInvalidFormatError(op, fmt.Sprintf("name %q contains '=' or a line break", name), nil)
	}
	if strings.ContainsAny(value, "\n\r") {
		return registry.NewInvalidFormatError(op, fmt.Sprintf("value for %q contains a line break", name), nil)
	}
	if len(value) > registry.MaxValLen {
		return registry.NewOverflowError(op, fmt.Sprintf("value of %d bytes exceeds %d", len(value), registry.MaxValLen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batch {
		s.pending = upsert(s.pending, name, value)
		return nil
	}

	records, err := s.read()
	if err != nil {
		return err
	}
	return s.write(upsert(records, name, value))
}

// SaveStart begins a batch. Saves are held in memory until SaveEnd.
func (s *Store) SaveStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	s.pending = records
	s.batch = true
	return nil
}

// SaveEnd writes the batch to the file.
func (s *Store) SaveEnd() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.batch {
		return nil
	}
	records := s.pending
	s.pending = nil
	s.batch = false
	return s.write(records)
}

// Format replaces the file with an empty one and drops any pending batch.
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.batch = false
	return s.write(nil)
}

func upsert(records []record, name, value string) []record {
	for i := range records {
		if records[i].name == name {
			records[i].value = value
			return records
		}
	}
	return append(records, record{name: name, value: value})
}

func (s *Store) read() ([]record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var records []record
	index := make(map[string]int)
	for i, raw := range bytes.Split(data, []byte("\n")) {
		line := i + 1
		raw = bytes.TrimRight(raw, "\r")
		if len(raw) == 0 {
			continue
		}
		if len(raw) > maxLineLen {
			logging.LogStoreRecord(s.log, "file", line, "line too long")
			continue
		}

		name, value, ok := strings.Cut(string(raw), "=")
		switch {
		case !ok:
			logging.LogStoreRecord(s.log, "file", line, "missing '='")
			continue
		case name == "":
			logging.LogStoreRecord(s.log, "file", line, "empty name")
			continue
		case len(value) > registry.MaxValLen:
			logging.LogStoreRecord(s.log, "file", line, "value too long")
			continue
		}

		if j, dup := index[name]; dup {
			records[j].value = value
			continue
		}
		index[name] = len(records)
		records = append(records, record{name: name, value: value})
	}
	return records, nil
}

func (s *Store) write(records []record) error {
	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(r.name)
		buf.WriteByte('=')
		buf.WriteString(r.value)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Write to temp file first, then rename (atomic operation)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.log.Debug("Store file written", zap.String("path", s.path), zap.Int("records", len(records)))
	return nil
}
