package nvstore

import (
	"errors"
	"fmt"
	"sync"
)

// ErasedByte is the value of every byte of a freshly erased medium.
const ErasedByte = 0xFF

// ErrNotErased is returned when a write targets bytes that were programmed
// since the last erase.
var ErrNotErased = errors.New("nvstore: write to non-erased bytes")

// Medium is a byte-addressable persistent medium with erase-before-write
// semantics: bytes can only be written once between two erases.
type Medium interface {
	// Size returns the capacity in bytes
	Size() int
	// ReadAt fills p from offset off
	ReadAt(p []byte, off int) error
	// WriteAt programs p at offset off. Every target byte must be erased.
	WriteAt(p []byte, off int) error
	// Erase returns every byte to ErasedByte
	Erase() error
	// Sync makes written bytes durable
	Sync() error
	// Close releases the medium
	Close() error
}

// image holds the bytes of a medium and enforces its write rules.
type image struct {
	mu   sync.Mutex
	data []byte
}

func (im *image) Size() int {
	return len(im.data)
}

func (im *image) check(off, n int) error {
	if off < 0 || n < 0 || off+n > len(im.data) {
		return fmt.Errorf("nvstore: range [%d,%d) outside medium of %d bytes", off, off+n, len(im.data))
	}
	return nil
}

func (im *image) ReadAt(p []byte, off int) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if err := im.check(off, len(p)); err != nil {
		return err
	}
	copy(p, im.data[off:off+len(p)])
	return nil
}

func (im *image) WriteAt(p []byte, off int) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if err := im.check(off, len(p)); err != nil {
		return err
	}
	for _, b := range im.data[off : off+len(p)] {
		if b != ErasedByte {
			return ErrNotErased
		}
	}
	copy(im.data[off:], p)
	return nil
}

func (im *image) Erase() error {
	im.mu.Lock()
	defer im.mu.Unlock()
	for i := range im.data {
		im.data[i] = ErasedByte
	}
	return nil
}

// MemMedium is a RAM-backed medium. It counts physical writes and erases.
type MemMedium struct {
	image
	writes int
	erases int
}

// NewMemMedium creates an erased medium of size bytes.
func NewMemMedium(size int) *MemMedium {
	m := &MemMedium{image: image{data: make([]byte, size)}}
	_ = m.image.Erase()
	return m
}

// WriteAt programs p at offset off
func (m *MemMedium) WriteAt(p []byte, off int) error {
	if err := m.image.WriteAt(p, off); err != nil {
		return err
	}
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
	return nil
}

// Erase returns every byte to ErasedByte
func (m *MemMedium) Erase() error {
	if err := m.image.Erase(); err != nil {
		return err
	}
	m.mu.Lock()
	m.erases++
	m.mu.Unlock()
	return nil
}

// Sync is a no-op for RAM
func (m *MemMedium) Sync() error { return nil }

// Close is a no-op for RAM
func (m *MemMedium) Close() error { return nil }

// Writes returns the number of successful WriteAt calls
func (m *MemMedium) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Erases returns the number of Erase calls
func (m *MemMedium) Erases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.erases
}

// Corrupt overwrites bytes without honoring erase rules. Tests use it to
// simulate bit rot.
func (m *MemMedium) Corrupt(off int, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.data[off:], p)
}
