package syncbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorhub/db"
	"creatorhub/models"
	"creatorhub/utils"

	log "github.com/sirupsen/logrus"
)

const (
	defaultCallTimeout = 5 * time.Second

	deviceIDKey     = "device-id"
	syncStatePrefix = "sync-state-"
)

// Status is the sync view reported to the dashboard.
type Status struct {
	IsEnabled bool       `json:"isEnabled"`
	IsOnline  bool       `json:"isOnline"`
	LastSync  *time.Time `json:"lastSync"`
	Synced    bool       `json:"synced"`
	DeviceID  string     `json:"deviceId"`
}

// Bridge mirrors profiles to a RemoteStore and records per-username sync state locally.
// A Bridge with no remote behaves as permanently offline.
type Bridge struct {
	remote   RemoteStore
	store    db.Storage
	timeout  time.Duration
	deviceID string
	now      func() time.Time
}

// New constructs a Bridge. remote may be nil. The device id is loaded from store or
// generated and persisted on first use.
func New(remote RemoteStore, store db.Storage, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	b := &Bridge{
		remote:  remote,
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
	b.deviceID = b.loadDeviceID()
	return b
}

// WithClock overrides the clock used for lastSync stamps.
func (b *Bridge) WithClock(now func() time.Time) *Bridge {
	if now != nil {
		b.now = now
	}
	return b
}

func (b *Bridge) loadDeviceID() string {
	id, ok, err := b.store.Get(deviceIDKey)
	if err == nil && ok && id != "" {
		return id
	}
	id = "device-" + utils.GenerateDashlessUUID()
	if err := b.store.Set(deviceIDKey, id); err != nil {
		log.WithError(err).Warn("sync bridge: persist device id failed")
	}
	return id
}

// DeviceID is the stable identifier of this installation.
func (b *Bridge) DeviceID() string {
	return b.deviceID
}

// Configured reports whether a remote store is attached at all.
func (b *Bridge) Configured() bool {
	return b != nil && b.remote != nil
}

func (b *Bridge) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, b.timeout)
}

// Online reports whether the remote answered a ping within the call timeout.
func (b *Bridge) Online(ctx context.Context) bool {
	if !b.Configured() {
		return false
	}
	callCtx, cancel := b.callContext(ctx)
	defer cancel()
	if err := b.remote.Ping(callCtx); err != nil {
		log.WithError(err).Debug("sync bridge: remote offline")
		return false
	}
	return true
}

// Push mirrors one profile and its document. The outcome is recorded in the
// username's sync state either way.
func (b *Bridge) Push(ctx context.Context, user models.User, doc models.UserDocument) error {
	if !b.Configured() {
		return fmt.Errorf("%w: no remote configured", ErrSyncUnavailable)
	}
	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	state := b.State(user.Username)
	err := b.remote.Put(callCtx, user.Username, models.SyncPayload{User: user, UserData: doc})
	if err != nil {
		state.Synced = false
		b.saveState(user.Username, state)
		log.WithError(err).WithField("username", user.Username).Warn("sync bridge: push failed")
		return wrapUnavailable(err)
	}

	now := b.now().UTC()
	state.LastSync = &now
	state.Synced = true
	b.saveState(user.Username, state)
	log.WithField("username", user.Username).Debug("sync bridge: pushed profile")
	return nil
}

// Pull fetches the remote record for username. ErrNotFound when the remote has none.
func (b *Bridge) Pull(ctx context.Context, username string) (models.SyncPayload, error) {
	if !b.Configured() {
		return models.SyncPayload{}, fmt.Errorf("%w: no remote configured", ErrSyncUnavailable)
	}
	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	payload, err := b.remote.Get(callCtx, username)
	if errors.Is(err, ErrNotFound) {
		return models.SyncPayload{}, ErrNotFound
	}
	if err != nil {
		log.WithError(err).WithField("username", username).Warn("sync bridge: pull failed")
		return models.SyncPayload{}, wrapUnavailable(err)
	}
	payload.UserData.Normalize()
	return payload, nil
}

// Exists reports whether the remote holds username. An error means "unknown".
func (b *Bridge) Exists(ctx context.Context, username string) (bool, error) {
	if !b.Configured() {
		return false, fmt.Errorf("%w: no remote configured", ErrSyncUnavailable)
	}
	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	ok, err := b.remote.Exists(callCtx, username)
	if err != nil {
		log.WithError(err).WithField("username", username).Debug("sync bridge: existence check failed")
		return false, wrapUnavailable(err)
	}
	return ok, nil
}

// State returns the recorded sync state for username (zero value when none).
func (b *Bridge) State(username string) models.SyncState {
	var state models.SyncState
	if _, err := db.GetJSON(b.store, syncStatePrefix+normalizeUsername(username), &state); err != nil {
		log.WithError(err).Warn("sync bridge: unreadable sync state, treating as never synced")
		return models.SyncState{}
	}
	return state
}

func (b *Bridge) saveState(username string, state models.SyncState) {
	if err := db.SetJSON(b.store, syncStatePrefix+normalizeUsername(username), state); err != nil {
		log.WithError(err).Warn("sync bridge: persist sync state failed")
	}
}

// ClearState forgets everything recorded for username.
func (b *Bridge) ClearState(username string) {
	if err := b.store.Delete(syncStatePrefix + normalizeUsername(username)); err != nil {
		log.WithError(err).Warn("sync bridge: clear sync state failed")
	}
}

// Status builds the dashboard sync view. enabled is the caller's verdict on whether sync
// applies to this profile at all.
func (b *Bridge) Status(ctx context.Context, username string, enabled bool) Status {
	st := Status{IsEnabled: enabled, DeviceID: b.deviceID}
	if username != "" {
		state := b.State(username)
		st.LastSync = state.LastSync
		st.Synced = state.Synced
	}
	st.IsOnline = b.Online(ctx)
	return st
}

func wrapUnavailable(err error) error {
	if errors.Is(err, ErrSyncUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrSyncUnavailable, err)
}
