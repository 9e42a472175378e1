// Package session owns the device's profiles, the current-user pointer and each
// profile's persisted document.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"creatorhub/db"
	"creatorhub/models"
	"creatorhub/syncbridge"
	"creatorhub/utils"

	log "github.com/sirupsen/logrus"
)

// Storage keys.
const (
	RegistryKey       = "creator-hub-global"
	documentKeyPrefix = "creator-hub-user-"
	backupKeyPrefix   = "backup-"
)

// DocumentKey is the storage key of a profile's document.
func DocumentKey(userID string) string {
	return documentKeyPrefix + userID
}

// BackupPrefix is the storage key prefix of a profile's backup snapshots.
func BackupPrefix(userID string) string {
	return backupKeyPrefix + userID + "-"
}

const (
	minUsernameLen    = 3
	minPasswordLen    = 4
	minDisplayNameLen = 2
)

// Session is the identity store plus the per-user data store for one device.
// All methods are safe for concurrent use; read-modify-write cycles are serialised.
type Session struct {
	mu     sync.Mutex
	store  db.Storage
	bridge *syncbridge.Bridge
	hasher utils.PasswordHasher
	now    func() time.Time
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h utils.PasswordHasher) Option {
	return func(s *Session) {
		if h != nil {
			s.hasher = h
		}
	}
}

// New builds a Session over store. bridge may be nil, which disables sync.
func New(store db.Storage, bridge *syncbridge.Bridge, opts ...Option) *Session {
	s := &Session{
		store:  store,
		bridge: bridge,
		hasher: utils.NewBcryptHasher(12),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bridge returns the sync bridge (possibly nil).
func (s *Session) Bridge() *syncbridge.Bridge {
	return s.bridge
}

// Now returns the session clock's current time in UTC.
func (s *Session) Now() time.Time {
	return s.now().UTC()
}

// --- registry ---

func (s *Session) loadRegistry() models.Registry {
	reg := models.DefaultRegistry()
	found, err := db.GetJSON(s.store, RegistryKey, &reg)
	if err != nil {
		log.WithError(err).Error("session: registry unreadable, starting empty")
		return models.DefaultRegistry()
	}
	if !found {
		return reg
	}
	if reg.Users == nil {
		reg.Users = []models.User{}
	}
	return reg
}

func (s *Session) saveRegistry(reg models.Registry) error {
	if err := db.SetJSON(s.store, RegistryKey, reg); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

func findByUsername(reg *models.Registry, username string) int {
	for i := range reg.Users {
		if strings.EqualFold(reg.Users[i].Username, username) {
			return i
		}
	}
	return -1
}

// currentLocked resolves the current-user pointer, clearing it when it dangles.
func (s *Session) currentLocked(reg *models.Registry) (models.User, bool) {
	if reg.CurrentUser == nil {
		return models.User{}, false
	}
	if idx := reg.FindUser(*reg.CurrentUser); idx >= 0 {
		return reg.Users[idx], true
	}
	log.Warnf("session: current user %s no longer exists, clearing pointer", *reg.CurrentUser)
	reg.CurrentUser = nil
	if err := s.saveRegistry(*reg); err != nil {
		log.WithError(err).Warn("session: clear dangling pointer failed")
	}
	return models.User{}, false
}

// syncAllowed reports whether remote traffic is permitted for user.
func (s *Session) syncAllowed(reg models.Registry, user models.User) bool {
	return user.CloudSync && reg.GlobalSettings.CloudSyncEnabled && s.bridge.Configured()
}

func validateRegistration(username, password, displayName string) error {
	if utf8.RuneCountInString(username) < minUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters", ErrInvalidInput, minUsernameLen)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if utf8.RuneCountInString(displayName) < minDisplayNameLen {
		return fmt.Errorf("%w: display name must be at least %d characters", ErrInvalidInput, minDisplayNameLen)
	}
	return nil
}

// --- identity operations ---

// Register creates a profile and its default document. It does not log the profile in.
func (s *Session) Register(ctx context.Context, username, password, displayName string, enableSync bool) (models.User, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if err := validateRegistration(username, password, displayName); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	if !reg.GlobalSettings.AllowUserRegistration {
		return models.User{}, ErrRegistrationClosed
	}
	if findByUsername(&reg, username) >= 0 {
		return models.User{}, fmt.Errorf("%w: %s exists locally", ErrDuplicateUsername, strings.ToLower(username))
	}

	remoteSync := enableSync && reg.GlobalSettings.CloudSyncEnabled && s.bridge.Configured()
	if remoteSync {
		exists, err := s.bridge.Exists(ctx, username)
		switch {
		case err != nil:
			log.WithError(err).Warn("session: could not check remote for existing user, continuing")
		case exists:
			return models.User{}, fmt.Errorf("%w: %s exists remotely", ErrDuplicateUsername, strings.ToLower(username))
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	now := s.Now()
	user := models.User{
		ID:          utils.GenerateDashlessUUID(),
		Username:    strings.ToLower(username),
		Password:    hash,
		DisplayName: displayName,
		CreatedAt:   now,
		LastLogin:   now,
		CloudSync:   enableSync,
	}

	doc := models.DefaultDocument(now)
	doc.Settings.DisplayName = displayName
	doc.Settings.CloudSync = enableSync

	reg.Users = append(reg.Users, user)
	if err := s.saveRegistry(reg); err != nil {
		return models.User{}, err
	}
	if err := s.writeDocument(user.ID, doc); err != nil {
		return models.User{}, err
	}

	if remoteSync {
		if err := s.bridge.Push(ctx, user, doc); err != nil {
			log.WithError(err).Warnf("session: %s registered locally but remote mirror failed", user.Username)
		}
	}
	log.Infof("session: registered user %s", user.Username)
	return user, nil
}

// Login authenticates username, falling back to the remote mirror when the profile is
// unknown locally, and reconciles the document with the remote when sync is on.
func (s *Session) Login(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	idx := findByUsername(&reg, username)

	if idx < 0 && reg.GlobalSettings.CloudSyncEnabled && s.bridge.Configured() {
		adopted, err := s.bootstrapFromRemote(ctx, &reg, username, password)
		if err != nil {
			return models.User{}, err
		}
		if adopted {
			idx = len(reg.Users) - 1
		}
	}
	if idx < 0 {
		return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, strings.ToLower(username))
	}
	if !s.hasher.Verify(password, reg.Users[idx].Password) {
		return models.User{}, ErrInvalidPassword
	}

	reg.Users[idx].LastLogin = s.Now()
	id := reg.Users[idx].ID
	reg.CurrentUser = &id
	if err := s.saveRegistry(reg); err != nil {
		return models.User{}, err
	}
	user := reg.Users[idx]

	if s.syncAllowed(reg, user) {
		s.reconcileLocked(ctx, user)
	}
	log.Infof("session: %s logged in", user.Username)
	return user, nil
}

// bootstrapFromRemote adopts a remote-only profile when the password matches.
// It reports whether a profile was appended to reg.
func (s *Session) bootstrapFromRemote(ctx context.Context, reg *models.Registry, username, password string) (bool, error) {
	payload, err := s.bridge.Pull(ctx, username)
	if errors.Is(err, syncbridge.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		log.WithError(err).Warn("session: remote lookup during login failed")
		return false, nil
	}
	if !s.hasher.Verify(password, payload.User.Password) {
		return false, ErrInvalidPassword
	}

	user := payload.User
	user.Username = strings.ToLower(user.Username)
	if user.ID == "" {
		user.ID = utils.GenerateDashlessUUID()
	}
	reg.Users = append(reg.Users, user)
	if err := s.saveRegistry(*reg); err != nil {
		return false, err
	}
	if err := s.writeDocument(user.ID, payload.UserData); err != nil {
		return false, err
	}
	log.Infof("session: adopted %s from remote mirror", user.Username)
	return true, nil
}

// reconcileLocked applies newest-lastAccess-wins between the stored local document and
// the remote one. Ties and missing remotes push local.
func (s *Session) reconcileLocked(ctx context.Context, user models.User) {
	remote, err := s.bridge.Pull(ctx, user.Username)
	if err != nil && !errors.Is(err, syncbridge.ErrNotFound) {
		log.WithError(err).Warn("session: login sync skipped")
		return
	}
	if err == nil {
		localAccess := s.storedLastAccess(user.ID)
		if remote.UserData.Settings.LastAccess.After(localAccess) {
			if err := s.writeDocument(user.ID, remote.UserData); err != nil {
				log.WithError(err).Warn("session: adopting newer remote document failed")
				return
			}
			log.WithField("username", user.Username).Info("session: using remote document (more recent)")
			return
		}
	}
	doc := s.loadDocumentLocked(user.ID)
	if err := s.bridge.Push(ctx, user, doc); err != nil {
		log.WithError(err).Warn("session: pushing local document after login failed")
		return
	}
	log.WithField("username", user.Username).Debug("session: pushed local document after login")
}

// Logout clears the current-user pointer. Data is kept.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	reg.CurrentUser = nil
	return s.saveRegistry(reg)
}

// CurrentUser returns the logged-in profile.
func (s *Session) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg := s.loadRegistry()
	return s.currentLocked(&reg)
}

// RestoreSession reports whether a persisted login is still valid.
func (s *Session) RestoreSession() bool {
	_, ok := s.CurrentUser()
	return ok
}

// Users lists every profile on this device.
func (s *Session) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg := s.loadRegistry()
	out := make([]models.User, len(reg.Users))
	copy(out, reg.Users)
	return out
}

// DeleteUser removes a profile together with its document, backups and sync state.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	idx := reg.FindUser(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	user := reg.Users[idx]
	reg.Users = append(reg.Users[:idx], reg.Users[idx+1:]...)
	if reg.CurrentUser != nil && *reg.CurrentUser == id {
		reg.CurrentUser = nil
	}
	if err := s.saveRegistry(reg); err != nil {
		return err
	}

	if err := s.store.Delete(DocumentKey(id)); err != nil {
		log.WithError(err).Error("session: delete user document failed")
	}
	backups, err := s.store.Keys(BackupPrefix(id))
	if err != nil {
		log.WithError(err).Warn("session: list backups for deleted user failed")
	}
	for _, key := range backups {
		if err := s.store.Delete(key); err != nil {
			log.WithError(err).Warnf("session: delete backup %s failed", key)
		}
	}
	if s.bridge != nil {
		s.bridge.ClearState(user.Username)
	}
	log.Infof("session: deleted user %s", user.Username)
	return nil
}

// GlobalSettings returns the device-wide switches.
func (s *Session) GlobalSettings() models.GlobalSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRegistry().GlobalSettings
}

// SetGlobalSettings replaces the device-wide switches.
func (s *Session) SetGlobalSettings(gs models.GlobalSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg := s.loadRegistry()
	reg.GlobalSettings = gs
	return s.saveRegistry(reg)
}

// UpdateDisplayName renames the current profile in the registry.
func (s *Session) UpdateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minDisplayNameLen {
		return fmt.Errorf("%w: display name must be at least %d characters", ErrInvalidInput, minDisplayNameLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return ErrNoCurrentUser
	}
	reg.Users[reg.FindUser(user.ID)].DisplayName = name
	return s.saveRegistry(reg)
}
