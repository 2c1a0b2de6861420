package resgroup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// Cache persists the last accepted list document to a file,
// compressed with snappy block encoding.
type Cache struct {
	path string
}

// NewCache returns a Cache stored at path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// Save replaces the cached document with data.
// The file is written to a temporary name and renamed into place,
// so a concurrent Load never observes a partial write.
func (c *Cache) Save(data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temporary cache file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(snappy.Encode(nil, data)); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing cache file %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing cache file %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file into place: %w", err)
	}
	return nil
}

// Load returns the cached document.
// If nothing has been cached yet, the error satisfies
// errors.Is(err, fs.ErrNotExist).
func (c *Cache) Load() ([]byte, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding cache file %q: %w", c.path, err)
	}
	return data, nil
}
