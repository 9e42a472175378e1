package session

import (
	"context"
	"fmt"

	"creatorhub/syncbridge"

	log "github.com/sirupsen/logrus"
)

// ToggleCloudSync switches mirroring for the current profile. Enabling performs an initial
// push; a failed push leaves sync enabled and returns an ErrSyncUnavailable error.
// Disabling forgets the recorded sync state.
func (s *Session) ToggleCloudSync(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return ErrNoCurrentUser
	}
	user.CloudSync = enabled
	reg.Users[reg.FindUser(user.ID)] = user
	if err := s.saveRegistry(reg); err != nil {
		return err
	}

	doc := s.loadDocumentLocked(user.ID)
	doc.Settings.CloudSync = enabled
	if err := s.writeDocument(user.ID, doc); err != nil {
		return err
	}

	if !enabled {
		if s.bridge != nil {
			s.bridge.ClearState(user.Username)
		}
		log.Infof("session: cloud sync disabled for %s", user.Username)
		return nil
	}
	if !reg.GlobalSettings.CloudSyncEnabled || !s.bridge.Configured() {
		return fmt.Errorf("cloud sync enabled but initial sync failed: %w", syncbridge.ErrSyncUnavailable)
	}
	if err := s.bridge.Push(ctx, user, doc); err != nil {
		return fmt.Errorf("cloud sync enabled but initial sync failed: %w", err)
	}
	log.Infof("session: cloud sync enabled for %s", user.Username)
	return nil
}

// ForceSync pushes the current document immediately.
func (s *Session) ForceSync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return ErrNoCurrentUser
	}
	if !user.CloudSync || !reg.GlobalSettings.CloudSyncEnabled {
		return ErrSyncDisabled
	}
	if !s.bridge.Online(ctx) {
		return fmt.Errorf("%w: device is offline", syncbridge.ErrSyncUnavailable)
	}
	doc := s.loadDocumentLocked(user.ID)
	return s.bridge.Push(ctx, user, doc)
}

// SyncStatus reports the sync view of the current profile.
func (s *Session) SyncStatus(ctx context.Context) syncbridge.Status {
	s.mu.Lock()
	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	s.mu.Unlock()

	if !ok || s.bridge == nil {
		st := syncbridge.Status{DeviceID: "unknown"}
		if s.bridge != nil {
			st.DeviceID = s.bridge.DeviceID()
		}
		return st
	}
	return s.bridge.Status(ctx, user.Username, user.CloudSync && reg.GlobalSettings.CloudSyncEnabled)
}

// KeepAlive re-stamps lastAccess and opportunistically mirrors the document.
// It is a no-op while logged out.
func (s *Session) KeepAlive(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return
	}
	doc := s.loadDocumentLocked(user.ID)
	if s.syncAllowed(reg, user) && doc.Settings.CloudSync {
		if err := s.bridge.Push(ctx, user, doc); err != nil {
			log.WithError(err).Debug("session: keep-alive sync failed")
		}
	}
}
