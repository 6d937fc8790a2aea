package internal

import (
	"context"
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gnolang/tregex/search"
)

const (
	cacheFileName = "match_cache.gob"
	// DefaultMaxAge is how long an entry stays valid when no max age is set.
	DefaultMaxAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type CacheEntry struct {
	Metadata     fileMetadata
	Matches      []search.Match
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache keeps search results on disk, keyed by file and by the set of
// patterns that produced them. An entry is dropped when the file changes or
// the entry outlives the max age.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.Mutex
	maxAge   time.Duration
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   DefaultMaxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
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

func (c *Cache) save() error {
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

func cacheKey(filename, patterns string) string {
	return patterns + "\x00" + filename
}

// Set stores the matches of patterns in filename.
func (c *Cache) Set(filename, patterns string, matches []search.Match) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	now := time.Now()
	c.entries[cacheKey(filename, patterns)] = CacheEntry{
		Metadata:     metadata,
		Matches:      matches,
		CreatedAt:    now,
		LastAccessed: now,
	}

	return c.save()
}

func (c *Cache) Get(filename, patterns string) ([]search.Match, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := cacheKey(filename, patterns)
	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(filename, entry) {
		delete(c.entries, key)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[key] = entry

	return entry.Matches, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	current, err := getFileMetadata(filename)
	return err != nil || current.Hash != entry.Metadata.Hash ||
		!current.LastModified.Equal(entry.Metadata.LastModified)
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	return c.save()
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

// CachedEngine answers from a Cache before running the wrapped engine.
// Key identifies the patterns the engine searches for; results of
// different pattern sets never mix.
type CachedEngine struct {
	Engine search.Engine
	Cache  *Cache
	Key    string
}

var _ search.Engine = (*CachedEngine)(nil)

func (e *CachedEngine) Run(ctx context.Context, path string) ([]search.Match, error) {
	if matches, ok := e.Cache.Get(path, e.Key); ok {
		return matches, nil
	}
	matches, err := e.Engine.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := e.Cache.Set(path, e.Key, matches); err != nil {
		return nil, err
	}
	return matches, nil
}
