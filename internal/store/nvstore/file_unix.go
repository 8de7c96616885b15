//go:build unix

package nvstore

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileMedium is a medium backed by a memory-mapped image file.
type FileMedium struct {
	image
	f *os.File
}

// OpenFileMedium maps the image file at path, creating an erased image of
// size bytes when it does not exist. An existing image keeps its own size.
func OpenFileMedium(path string, size int) (*FileMedium, error) {
	f, created, err := openImage(path, size)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("nvstore: image %s is empty", path)
	}
	if info.Size() > int64(^uint(0)>>1) {
		f.Close()
		return nil, fmt.Errorf("nvstore: image %s too large to map (%d bytes)", path, info.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nvstore: mmap %s: %w", path, err)
	}

	m := &FileMedium{image: image{data: data}, f: f}
	if created {
		_ = m.image.Erase()
		if err := m.Sync(); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// Sync flushes the mapping to the image file
func (m *FileMedium) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps and closes the image file.
func (m *FileMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}

	var errs []error
	if err := unix.Munmap(m.data); err != nil && !errors.Is(err, unix.EINVAL) {
		errs = append(errs, err)
	}
	m.data = nil
	if err := m.f.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
