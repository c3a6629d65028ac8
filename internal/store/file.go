package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// defaultCacheTTL bounds how long a loaded Store may be served from memory
// before it is re-read from disk. Save refreshes the cache immediately, so
// within one process the cache never serves a stale post-write view.
const defaultCacheTTL = 5 * time.Minute

// FileStore persists the Store as a single indented JSON document.
//
// The mutex serializes access within one process only. Two processes (or two
// replicas) sharing the same file race with last-write-wins semantics on the
// whole document; callers accepting that trade-off is part of the contract.
type FileStore struct {
	path string
	ttl  time.Duration

	mu       sync.Mutex
	cache    Store
	cachedAt time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileStore{path: path, ttl: defaultCacheTTL}, nil
}

// Load returns the full Store. A missing or empty backing file yields an
// empty Store; a malformed one yields a *ParseError.
func (f *FileStore) Load() (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cache != nil && time.Since(f.cachedAt) < f.ttl {
		return f.cache.Clone(), nil
	}
	st, err := f.loadUnlocked()
	if err != nil {
		return nil, err
	}
	f.cache = st
	f.cachedAt = time.Now()
	return st.Clone(), nil
}

// Save replaces the backing document with the given Store and refreshes the
// load cache so the next Load reflects the write.
func (f *FileStore) Save(st Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveUnlocked(st); err != nil {
		return err
	}
	f.cache = st.Clone()
	f.cachedAt = time.Now()
	return nil
}

func (f *FileStore) loadUnlocked() (Store, error) {
	fl, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(fl *os.File) {
		_ = fl.Close()
	}(fl)
	var st Store
	dec := json.NewDecoder(fl)
	if err := dec.Decode(&st); err != nil {
		if errors.Is(err, io.EOF) {
			return Store{}, nil
		}
		return nil, &ParseError{Path: f.path, Err: err}
	}
	if st == nil {
		st = Store{}
	}
	return st, nil
}

func (f *FileStore) saveUnlocked(st Store) error {
	fl, err := os.OpenFile(f.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(fl *os.File) {
		_ = fl.Close()
	}(fl)
	enc := json.NewEncoder(fl)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
