package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"creatorhub/config"

	log "github.com/sirupsen/logrus"
)

// Storage is a durable string key-value store. Values are opaque to the store; callers
// decide what they hold (usually a JSON document).
type Storage interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys starting with prefix, sorted ascending.
	Keys(prefix string) ([]string, error)
	Close() error
}

// Open returns the storage backend selected by cfg.StorageDriver.
func Open(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.DbFilePath)
	case config.DriverFile, "":
		return NewFileStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// FileStore keeps every key in memory and persists the whole map to a single JSON file.
// Writes are debounced by cfg.SaveInterval and written atomically (.tmp + rename), with an
// optional .bak of the previous file.
type FileStore struct {
	mu          sync.RWMutex
	data        map[string]string
	path        string // empty means memory only
	interval    time.Duration
	backup      bool
	saveTimer   *time.Timer // Timer for debounced saving
	savePending bool
	saveMutex   sync.Mutex // Guards saveTimer and savePending
}

// NewFileStore creates a FileStore and loads any existing state from cfg.DbFilePath.
func NewFileStore(cfg *config.Config) (*FileStore, error) {
	s := &FileStore{
		data:     make(map[string]string),
		path:     cfg.DbFilePath,
		interval: cfg.SaveInterval,
		backup:   cfg.EnableBackup,
	}

	log.Infof("Initializing JSON store with file: %s", s.path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStore returns a FileStore that never touches disk.
func NewMemoryStore() *FileStore {
	return &FileStore{data: make(map[string]string)}
}

// Load reads the store from disk. A missing file yields an empty store; a file that
// cannot be parsed is a critical error and leaves the in-memory state untouched.
func (s *FileStore) Load() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fileData, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("Store file '%s' not found. Starting empty.", s.path)
			s.data = make(map[string]string)
			return nil
		}
		return fmt.Errorf("read store file '%s': %w", s.path, err)
	}

	loaded := make(map[string]string)
	if err := json.Unmarshal(fileData, &loaded); err != nil {
		log.Errorf("Failed to parse store file '%s': %v", s.path, err)
		return fmt.Errorf("parse store file '%s': %w", s.path, err)
	}
	s.data = loaded

	log.Infof("Loaded store from %s. Keys: %d", s.path, len(s.data))
	return nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()

	s.requestSave()
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if existed {
		s.requestSave()
	}
	return nil
}

func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// persist writes the current state to disk.
func (s *FileStore) persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	jsonData, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tempFilePath := s.path + ".tmp"
	backupFilePath := s.path + ".bak"

	if err := os.WriteFile(tempFilePath, jsonData, 0644); err != nil {
		return fmt.Errorf("write temporary store file '%s': %w", tempFilePath, err)
	}

	if s.backup {
		if _, err := os.Stat(s.path); err == nil {
			if err := os.Rename(s.path, backupFilePath); err != nil {
				log.Warnf("Failed to rename '%s' to '%s' for backup: %v. Proceeding with save.", s.path, backupFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Warnf("Error checking store file '%s' before backup: %v", s.path, err)
		}
	}

	if err := os.Rename(tempFilePath, s.path); err != nil {
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("rename '%s' to '%s': %w", tempFilePath, s.path, err)
	}

	log.Debugf("Saved store state to %s", s.path)
	return nil
}

// requestSave is called after every write to trigger a debounced save.
func (s *FileStore) requestSave() {
	if s.path == "" {
		return
	}

	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	if s.interval <= 0 {
		// Immediate saves run inline so the file is current when Set returns.
		if err := s.persist(); err != nil {
			log.Errorf("Immediate persist failed: %v", err)
		}
		return
	}

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.savePending = true

	s.saveTimer = time.AfterFunc(s.interval, func() {
		s.saveMutex.Lock()
		if !s.savePending {
			s.saveMutex.Unlock()
			return
		}
		s.savePending = false
		s.saveMutex.Unlock()

		if err := s.persist(); err != nil {
			log.Errorf("Debounced persist failed: %v", err)
		}
	})
}

// Close flushes any pending save.
func (s *FileStore) Close() error {
	var needsFinalPersist bool

	s.saveMutex.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if s.savePending {
		needsFinalPersist = true
		s.savePending = false
	}
	s.saveMutex.Unlock()

	if needsFinalPersist {
		log.Info("Performing final persist on close...")
		if err := s.persist(); err != nil {
			return fmt.Errorf("final persist: %w", err)
		}
	}
	return nil
}

// ErrCorrupt is returned by helpers when a stored value cannot be decoded.
var ErrCorrupt = errors.New("stored value is corrupt")

// GetJSON decodes the value under key into v. It reports false when the key is missing.
func GetJSON(s Storage, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}
