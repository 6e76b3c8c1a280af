package project

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// CacheFileName is the build cache stored in the project root.
const CacheFileName = ".socmap-cache"

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

func digestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

// cacheEntry records what one map compiled to. Options fingerprints the build
// settings that affect output so a config change invalidates the entry.
type cacheEntry struct {
	Input   Digest
	Options string
	Outputs map[string]Digest
}

type cachePayload struct {
	Schema  uint16
	Entries map[string]cacheEntry
}

// Cache remembers input and output digests between builds.
// Thread-safe for concurrent access.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]cacheEntry
	dirty   bool
}

// OpenCache loads the cache at path. A missing, unreadable or outdated cache
// starts empty.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]cacheEntry{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var payload cachePayload
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return c
	}
	if payload.Schema != cacheSchemaVersion || payload.Entries == nil {
		return c
	}
	c.entries = payload.Entries
	return c
}

// Fresh reports whether input was last compiled from the same content with
// the same options into exactly the outputs listed, and every one of them is
// still intact.
func (c *Cache) Fresh(input string, digest Digest, options string, outputs []string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	e, ok := c.entries[input]
	c.mu.Unlock()
	if !ok || e.Input != digest || e.Options != options || len(e.Outputs) != len(outputs) {
		return false
	}
	for _, out := range outputs {
		if _, ok := e.Outputs[out]; !ok {
			return false
		}
	}
	for out, want := range e.Outputs {
		data, err := os.ReadFile(out)
		if err != nil || digestOf(data) != want {
			return false
		}
	}
	return true
}

// Record stores the digests of a successful compile.
func (c *Cache) Record(input string, digest Digest, options string, outputs map[string][]byte) {
	if c == nil {
		return
	}
	e := cacheEntry{Input: digest, Options: options, Outputs: make(map[string]Digest, len(outputs))}
	for path, data := range outputs {
		e.Outputs[path] = digestOf(data)
	}
	c.mu.Lock()
	c.entries[input] = e
	c.dirty = true
	c.mu.Unlock()
}

// Save writes the cache if it changed.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&cachePayload{Schema: cacheSchemaVersion, Entries: c.entries}); err != nil {
		return fmt.Errorf("failed to encode build cache: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(c.path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return err
	}
	c.dirty = false
	return nil
}

// Clear removes the cache file.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
	c.dirty = false
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
