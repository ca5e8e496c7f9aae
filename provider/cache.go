package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the local content-addressed cache for sequence and
// timetable responses, keyed by a hash of the request URL, per
// spec.md §4.1. Reads are served from an in-process LRU first
// (github.com/hashicorp/golang-lru/v2, grounded on lintang-b-s-Navigatorx's
// engine.go), falling through to the on-disk JSON file. Writes go to a
// temp file and are renamed into place so a reader never observes a
// partial write, generalizing the teacher's plain os.Create pattern in
// graph_generators/json_to_gob.go.
type Cache struct {
	dir string
	mem *lru.Cache[string, []byte]

	keyLocksMu sync.Mutex
	keyLocks   map[string]*sync.Mutex
}

// NewCache opens a content-addressed cache rooted at dir, with an
// in-process LRU layer holding up to memSize recent entries.
func NewCache(dir string, memSize int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir cache dir %s: %w", dir, err)
	}
	mem, err := lru.New[string, []byte](memSize)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache{
		dir:      dir,
		mem:      mem,
		keyLocks: map[string]*sync.Mutex{},
	}, nil
}

// Key returns the content-address for a request URL, per spec.md §4.1
// "results ... are written through a local content-addressed cache
// keyed by URL".
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *Cache) lockFor(key string) *sync.Mutex {
	c.keyLocksMu.Lock()
	defer c.keyLocksMu.Unlock()
	l, ok := c.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.keyLocks[key] = l
	}
	return l
}

// Get returns the raw cached bytes for key, and whether it was found.
// Cache I/O is serialised per key, per spec.md §5.
func (c *Cache) Get(key string) ([]byte, bool) {
	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if data, ok := c.mem.Get(key); ok {
		return data, true
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	c.mem.Add(key, data)
	return data, true
}

// Put writes raw bytes under key, atomically (temp file + rename).
func (c *Cache) Put(key string, data []byte) error {
	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		return fmt.Errorf("rename cache entry %s into place: %w", key, err)
	}
	c.mem.Add(key, data)
	return nil
}

// GetJSON decodes the cached entry for key into v.
func (c *Cache) GetJSON(key string, v interface{}) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// PutJSON encodes v and writes it under key.
func (c *Cache) PutJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", key, err)
	}
	return c.Put(key, data)
}
