package nvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSize is the image size used when none is configured.
const DefaultSize = 4096

// openImage opens path read-write, creating a zero-filled file of size
// bytes when it does not exist yet.
func openImage(path string, size int) (*os.File, bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	if size <= 0 {
		size = DefaultSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, false, fmt.Errorf("nvstore: create image directory: %w", err)
	}
	f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, false, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, false, fmt.Errorf("nvstore: size image: %w", err)
	}
	return f, true, nil
}
