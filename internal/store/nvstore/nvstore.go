// Package nvstore provides a log-structured store on erase-before-write
// media such as flash or an image file standing in for it.
//
// # Record Format
//
// Records are appended back to back from offset zero:
//
//	magic(0xA5) | nameLen u16 LE | valueLen u8 | name | value | checksum u32 LE
//
// The checksum is the low 32 bits of the xxhash64 of everything before it.
// The first erased byte (0xFF) where a record would start marks the end of
// the log. A later record for a name supersedes earlier ones.
//
// # Compaction
//
// When a record does not fit in the erased tail, or the tail turns out not
// to be erased, the live set (latest value per name, plus the new record) is
// rewritten from offset zero after a full erase. If the live set alone does
// not fit, Save fails with a capacity-exhausted error and the medium is left
// untouched.
//
// # Damage
//
// Scanning stops at the first record with a bad magic byte, impossible
// lengths or a checksum mismatch. Records before it are kept; everything
// from it on is dropped at the next compaction.
package nvstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
)

const (
	recordMagic  = 0xA5
	headerLen    = 4
	checksumLen  = 4
	recordFixLen = headerLen + checksumLen
)

type record struct {
	name  string
	value string
}

// Store is a log-structured store on a Medium.
type Store struct {
	mu     sync.Mutex
	medium Medium
	log    *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for scan and compaction events
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New creates a store on m. The medium is not modified until the first Save.
func New(m Medium, opts ...Option) *Store {
	s := &Store{medium: m, log: logging.GetLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Medium returns the underlying medium
func (s *Store) Medium() Medium {
	return s.medium
}

// Load calls fn with the latest value of every stored name, in the order
// each name was first written.
func (s *Store) Load(fn registry.LoadFunc) error {
	s.mu.Lock()
	live, _, _, err := s.scan()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, r := range live {
		fn(r.name, r.value)
	}
	return nil
}

// Save appends a record for name, compacting the log when needed.
func (s *Store) Save(name, value string) error {
	const op = "nvstore save"

	if name == "" {
		return registry.NewInvalidFormatError(op, "empty name", nil)
	}
	if len(name) > registry.MaxNameLen {
		return registry.NewOverflowError(op, fmt.Sprintf("name of %d bytes exceeds %d", len(name), registry.MaxNameLen))
	}
	if len(value) > registry.MaxValLen {
		return registry.NewOverflowError(op, fmt.Sprintf("value of %d bytes exceeds %d", len(value), registry.MaxValLen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	live, tail, clean, err := s.scan()
	if err != nil {
		return err
	}

	rec := encodeRecord(name, value)
	if clean && tail+len(rec) <= s.medium.Size() {
		err := s.medium.WriteAt(rec, tail)
		if err == nil {
			return s.medium.Sync()
		}
		if !errors.Is(err, ErrNotErased) {
			return fmt.Errorf("nvstore: append record: %w", err)
		}
		s.log.Warn("Log tail not erased", zap.Int("offset", tail))
	}

	return s.compact(op, upsert(live, name, value))
}

// Used returns the number of bytes taken by readable records.
func (s *Store) Used() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, tail, _, err := s.scan()
	return tail, err
}

// Format erases the medium, dropping every record.
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.Erase(); err != nil {
		return err
	}
	return s.medium.Sync()
}

func upsert(live []record, name, value string) []record {
	out := make([]record, 0, len(live)+1)
	found := false
	for _, r := range live {
		if r.name == name {
			r.value = value
			found = true
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, record{name: name, value: value})
	}
	return out
}

func (s *Store) compact(op string, live []record) error {
	var img []byte
	for _, r := range live {
		img = append(img, encodeRecord(r.name, r.value)...)
	}
	if len(img) > s.medium.Size() {
		return registry.NewCapacityError(op, live[len(live)-1].name)
	}

	if err := s.medium.Erase(); err != nil {
		return fmt.Errorf("nvstore: erase: %w", err)
	}
	if len(img) > 0 {
		if err := s.medium.WriteAt(img, 0); err != nil {
			return fmt.Errorf("nvstore: rewrite log: %w", err)
		}
	}
	if err := s.medium.Sync(); err != nil {
		return err
	}

	s.log.Info("Compacted store",
		zap.Int("records", len(live)),
		zap.Int("bytes", len(img)),
		zap.Int("size", s.medium.Size()),
	)
	return nil
}

// scan reads the log. It returns the live records, the offset just past the
// last readable record and whether the log ended on an erased byte.
func (s *Store) scan() ([]record, int, bool, error) {
	size := s.medium.Size()
	var live []record
	index := make(map[string]int)

	off := 0
	for off < size {
		var lead [1]byte
		if err := s.medium.ReadAt(lead[:], off); err != nil {
			return nil, 0, false, err
		}
		if lead[0] == ErasedByte {
			return live, off, true, nil
		}

		r, next, reason, err := s.readRecord(off)
		if err != nil {
			return nil, 0, false, err
		}
		if reason != "" {
			logging.LogStoreRecord(s.log, "nvram", off, reason)
			return live, off, false, nil
		}

		if i, ok := index[r.name]; ok {
			live[i].value = r.value
		} else {
			index[r.name] = len(live)
			live = append(live, r)
		}
		off = next
	}
	return live, off, true, nil
}

// readRecord decodes the record at off. A non-empty reason reports a damaged
// record; err reports a medium failure.
func (s *Store) readRecord(off int) (record, int, string, error) {
	size := s.medium.Size()
	if off+headerLen > size {
		return record{}, 0, "truncated header", nil
	}

	var hdr [headerLen]byte
	if err := s.medium.ReadAt(hdr[:], off); err != nil {
		return record{}, 0, "", err
	}
	if hdr[0] != recordMagic {
		return record{}, 0, fmt.Sprintf("bad magic 0x%02x", hdr[0]), nil
	}

	nameLen := int(binary.LittleEndian.Uint16(hdr[1:3]))
	valLen := int(hdr[3])
	if nameLen == 0 || nameLen > registry.MaxNameLen || valLen > registry.MaxValLen {
		return record{}, 0, "bad lengths", nil
	}

	end := off + headerLen + nameLen + valLen + checksumLen
	if end > size {
		return record{}, 0, "truncated record", nil
	}

	buf := make([]byte, end-off)
	if err := s.medium.ReadAt(buf, off); err != nil {
		return record{}, 0, "", err
	}

	body := buf[:len(buf)-checksumLen]
	if binary.LittleEndian.Uint32(buf[len(body):]) != checksum(body) {
		return record{}, 0, "checksum mismatch", nil
	}

	name := string(body[headerLen : headerLen+nameLen])
	value := string(body[headerLen+nameLen:])
	return record{name: name, value: value}, end, "", nil
}

func encodeRecord(name, value string) []byte {
	buf := make([]byte, 0, recordFixLen+len(name)+len(value))
	buf = append(buf, recordMagic)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(name)))
	buf = append(buf, byte(len(value)))
	buf = append(buf, name...)
	buf = append(buf, value...)
	return binary.LittleEndian.AppendUint32(buf, checksum(buf))
}

func checksum(b []byte) uint32 {
	return uint32(xxhash.Sum64(b))
}
