package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps one JSON file per entry under dir, fanned out into
// subdirectories by the first byte of the key hash. It is meant for the
// single-user CLI.
type FileCache struct {
	dir string
	now func() time.Time
}

// fileEntry is the on-disk form of an entry. The key is kept so entries can
// be grouped by kind without a separate index.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// NewFileCache opens (and creates) a cache directory.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the entry for key. Expired or unreadable entries are removed
// and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	e, err := readEntry(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil || e.Key != key || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry atomically: readers see the old file or the new one.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing keys are not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

// FileStats summarizes a cache directory.
type FileStats struct {
	Entries int            `json:"entries"`
	Expired int            `json:"expired"`
	Bytes   int64          `json:"bytes"`
	ByKind  map[string]int `json:"byKind"`
}

// Stats walks the directory and counts entries by key kind.
func (c *FileCache) Stats(ctx context.Context) (FileStats, error) {
	st := FileStats{ByKind: map[string]int{}}
	now := c.now()
	err := c.walk(ctx, func(path string, info fs.FileInfo) error {
		e, err := readEntry(path)
		if err != nil {
			return nil
		}
		st.Entries++
		st.Bytes += info.Size()
		if e.expired(now) {
			st.Expired++
		}
		st.ByKind[KeyKind(e.Key)]++
		return nil
	})
	return st, err
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := c.now()
	removed := 0
	err := c.walk(ctx, func(path string, _ fs.FileInfo) error {
		e, err := readEntry(path)
		if err == nil && !e.expired(now) {
			return nil
		}
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Clear removes every entry and the emptied subdirectories, and returns how
// many entries were removed.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	removed := 0
	err := c.walk(ctx, func(path string, _ fs.FileInfo) error {
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	subdirs, _ := os.ReadDir(c.dir)
	for _, d := range subdirs {
		if d.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, d.Name()))
		}
	}
	return removed, nil
}

// walk calls fn for every entry file.
func (c *FileCache) walk(ctx context.Context, fn func(path string, info fs.FileInfo) error) error {
	return filepath.Walk(c.dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable files
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		return fn(path, info)
	})
}

// path maps a key to <dir>/<hash[:2]>/<hash[2:]>.json.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

func readEntry(path string) (fileEntry, error) {
	var e fileEntry
	raw, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(raw, &e)
	return e, err
}

var _ Cache = (*FileCache)(nil)
