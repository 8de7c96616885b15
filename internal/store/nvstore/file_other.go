//go:build !unix

package nvstore

import (
	"fmt"
	"io"
	"os"
)

// FileMedium is a medium backed by an image file. Without mmap the image
// is held in memory and written through on Sync.
type FileMedium struct {
	image
	f *os.File
}

// OpenFileMedium opens the image file at path, creating an erased image of
// size bytes when it does not exist. An existing image keeps its own size.
func OpenFileMedium(path string, size int) (*FileMedium, error) {
	f, created, err := openImage(path, size)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(data) == 0 {
		f.Close()
		return nil, fmt.Errorf("nvstore: image %s is empty", path)
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

// Sync writes the image back to its file
func (m *FileMedium) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	if _, err := m.f.WriteAt(m.data, 0); err != nil {
		return err
	}
	return m.f.Sync()
}

// Close closes the image file.
func (m *FileMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	m.data = nil
	return m.f.Close()
}
