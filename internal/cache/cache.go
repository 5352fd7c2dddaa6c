// Package cache remembers files that are already formatted so that
// unchanged files are skipped on the next run.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "format_cache.gob"

// DefaultMaxAge bounds how long an entry stays valid.
const DefaultMaxAge = 7 * 24 * time.Hour

// Entry records the state of a formatted file.
type Entry struct {
	ContentHash string
	OptionsHash string
	CreatedAt   time.Time
}

// Cache is a gob-persisted map from file path to Entry. It is safe for
// concurrent use.
type Cache struct {
	Dir     string
	entries map[string]Entry
	mutex   sync.RWMutex
	maxAge  time.Duration
	dirty   bool
	now     func() time.Time
}

// New opens the cache stored in dir, creating dir when missing.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		Dir:     dir,
		entries: make(map[string]Entry),
		maxAge:  DefaultMaxAge,
		now:     time.Now,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.Dir, fileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the entries when they changed since the last save.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// IsFormatted reports whether path was formatted with the same content
// and options.
func (c *Cache) IsFormatted(path string, content []byte, optionsHash string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return false
	}
	if c.now().Sub(entry.CreatedAt) > c.maxAge ||
		entry.OptionsHash != optionsHash ||
		entry.ContentHash != Hash(content) {
		delete(c.entries, path)
		c.dirty = true
		return false
	}
	return true
}

// MarkFormatted records that content is the formatted state of path.
func (c *Cache) MarkFormatted(path string, content []byte, optionsHash string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[path] = Entry{
		ContentHash: Hash(content),
		OptionsHash: optionsHash,
		CreatedAt:   c.now(),
	}
	c.dirty = true
}

// SetMaxAge changes the entry lifetime.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	c.entries = make(map[string]Entry)
	c.dirty = true
	c.mutex.Unlock()

	return c.Save()
}

// Hash returns the hex digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}
