package syncbridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"creatorhub/config"
	"creatorhub/models"
)

var (
	// ErrSyncUnavailable wraps every failure to reach or use the remote store.
	ErrSyncUnavailable = errors.New("sync unavailable")
	// ErrNotFound is returned when the remote has no record for a username.
	ErrNotFound = errors.New("remote record not found")
)

// RemoteStore is a shared key-value mirror of profiles, keyed by username.
type RemoteStore interface {
	Get(ctx context.Context, username string) (models.SyncPayload, error)
	Put(ctx context.Context, username string, payload models.SyncPayload) error
	Exists(ctx context.Context, username string) (bool, error)
	Ping(ctx context.Context) error
}

// RemoteFromConfig builds the remote selected by cfg.RemoteKind. It returns nil for "none".
func RemoteFromConfig(cfg *config.Config) (RemoteStore, error) {
	switch cfg.RemoteKind {
	case config.RemoteNone, "":
		return nil, nil
	case config.RemoteHTTP:
		return NewHTTPRemote(cfg.RemoteURL, &http.Client{Timeout: cfg.RemoteTimeout}), nil
	case config.RemoteRedis:
		return DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown remote kind %q", cfg.RemoteKind)
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// MemoryRemote is an in-process RemoteStore. It can be switched offline to simulate
// an unreachable remote.
type MemoryRemote struct {
	mu      sync.RWMutex
	records map[string]models.SyncPayload
	offline bool
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{records: make(map[string]models.SyncPayload)}
}

// SetOffline makes every call fail with ErrSyncUnavailable while true.
func (m *MemoryRemote) SetOffline(offline bool) {
	m.mu.Lock()
	m.offline = offline
	m.mu.Unlock()
}

func (m *MemoryRemote) Get(ctx context.Context, username string) (models.SyncPayload, error) {
	if err := ctx.Err(); err != nil {
		return models.SyncPayload{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.offline {
		return models.SyncPayload{}, ErrSyncUnavailable
	}
	p, ok := m.records[normalizeUsername(username)]
	if !ok {
		return models.SyncPayload{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryRemote) Put(ctx context.Context, username string, payload models.SyncPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return ErrSyncUnavailable
	}
	m.records[normalizeUsername(username)] = payload
	return nil
}

func (m *MemoryRemote) Exists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.offline {
		return false, ErrSyncUnavailable
	}
	_, ok := m.records[normalizeUsername(username)]
	return ok, nil
}

func (m *MemoryRemote) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.offline {
		return ErrSyncUnavailable
	}
	return nil
}
