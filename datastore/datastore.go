// Package datastore is a small JSON-file key-value store. The whole mapping
// lives in memory; every save writes one complete snapshot via temp file,
// fsync and rename, so a reader never observes a partial file.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const autoSaveInterval = 10 * time.Second

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]any
	file         string
	lastChecksum string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// New opens the store at filePath. A missing file starts as an empty
// mapping; it is created on the first save.
func New(filePath string) (*DataStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	ds := &DataStore{
		data: make(map[string]any),
		file: filePath,
	}
	ds.ctx, ds.cancel = context.WithCancel(context.Background())

	if _, err := os.Stat(filePath); err == nil {
		if err := ds.load(); err != nil {
			ds.cancel()
			return nil, fmt.Errorf("failed to load data from file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		ds.cancel()
		return nil, fmt.Errorf("failed to check file existence: %w", err)
	}

	ds.wg.Add(1)
	go ds.autoSave()

	return ds, nil
}

// Get retrieves a value by key. Values loaded from disk come back as
// whatever encoding/json produced (maps, float64 numbers).
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	value, exists := ds.data[key]
	return value, exists
}

// Add stores a key-value pair in memory. It hits disk on the next save.
func (ds *DataStore) Add(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
}

// Delete removes a key-value pair.
func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.data, key)
}

// SaveToFile writes the full snapshot to disk, skipping the write when
// nothing changed since the last save.
func (ds *DataStore) SaveToFile() error {
	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	checksum := checksumOf(data)
	if checksum == ds.currentChecksum() {
		return nil
	}

	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	ds.setChecksum(checksum)
	return nil
}

// Close stops the autosave loop and performs a final save. Safe to call
// more than once.
func (ds *DataStore) Close() error {
	ds.closeOnce.Do(func() {
		ds.cancel()
		ds.wg.Wait()
		ds.closeErr = ds.SaveToFile()
	})
	return ds.closeErr
}

func (ds *DataStore) load() error {
	raw, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}

	ds.mu.Lock()
	ds.data = data
	ds.mu.Unlock()
	ds.setChecksum(checksumOf(raw))
	return nil
}

// writeFileAtomic writes data through a temp file, syncs it and renames it
// over the target.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"

	f, err := os.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()

	ticker := time.NewTicker(autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ds.ctx.Done():
			return
		case <-ticker.C:
			if err := ds.SaveToFile(); err != nil {
				log.Printf("[ERR] datastore auto-save: %v", err)
			}
		}
	}
}

func (ds *DataStore) currentChecksum() string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.lastChecksum
}

func (ds *DataStore) setChecksum(sum string) {
	ds.mu.Lock()
	ds.lastChecksum = sum
	ds.mu.Unlock()
}

func checksumOf(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
