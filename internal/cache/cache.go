// Package cache stores check results on disk keyed by a digest of everything
// that determines them, so unchanged files are not re-processed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/parser"
)

// Increment when Entry changes shape.
const schemaVersion uint16 = 1

type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Key hashes parts with length prefixes so that ("ab","c") != ("a","bc").
func Key(parts ...[]byte) Digest {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

type Entry struct {
	Schema       uint16
	Path         string
	Results      []parser.Result
	Unattributed []diag.Diagnostic
}

// Cache is safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, key.String()+".mp")
}

// Put writes the entry atomically. A nil cache is a no-op.
func (c *Cache) Put(key Digest, e *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e.Schema = schemaVersion
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		f.Close()
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), c.pathFor(key))
}

// Get reads the entry for key. Missing entries and entries written by an
// older schema report false.
func (c *Cache) Get(key Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion {
		return false, nil
	}
	*out = e
	return true, nil
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".mp" {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
