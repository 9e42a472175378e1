package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"creatorhub/models"
	"creatorhub/session"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// maxBackups is how many snapshots are kept per profile.
const maxBackups = 5

// BackupInfo describes one stored snapshot.
type BackupInfo struct {
	Key  string    `json:"key"`
	Date time.Time `json:"date"`
	Size string    `json:"size"`
}

// ExportData serialises the current document as indented JSON.
func (s *Service) ExportData() (string, error) {
	data, err := json.MarshalIndent(s.load(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("export document: %w", err)
	}
	return string(data), nil
}

// ParseDocument decodes an exported document. Missing fields take their defaults.
func ParseDocument(data string, now time.Time) (models.UserDocument, error) {
	if !gjson.Valid(data) || !gjson.Parse(data).IsObject() {
		return models.UserDocument{}, session.ErrParse
	}
	doc := models.DefaultDocument(now)
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return models.UserDocument{}, fmt.Errorf("%w: %v", session.ErrParse, err)
	}
	doc.Normalize()
	return doc, nil
}

// ImportData replaces the whole document with data.
func (s *Service) ImportData(ctx context.Context, data string) error {
	doc, err := ParseDocument(data, s.now())
	if err != nil {
		return err
	}
	return s.mutate(ctx, func(current *models.UserDocument) error {
		*current = doc
		return nil
	})
}

// ResetAllData replaces the document with a fresh default. Saving mirrors the reset
// when sync is on.
func (s *Service) ResetAllData(ctx context.Context) error {
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		*doc = models.DefaultDocument(s.now())
		return nil
	})
	if err == nil {
		log.Info("dashboard: all data reset to defaults")
	}
	return err
}

func (s *Service) currentUserID() (string, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return "", session.ErrNoCurrentUser
	}
	return user.ID, nil
}

// PerformAutoBackup stores a snapshot when the profile has automatic backups on.
// It returns the new key, or "" when backups are off.
func (s *Service) PerformAutoBackup(ctx context.Context) (string, error) {
	if _, err := s.currentUserID(); err != nil {
		return "", err
	}
	if !s.load().Settings.AutoBackup {
		return "", nil
	}
	return s.CreateBackup(ctx)
}

// CreateBackup stores a snapshot of the current document and prunes old ones.
func (s *Service) CreateBackup(ctx context.Context) (string, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return "", err
	}
	data, err := s.ExportData()
	if err != nil {
		return "", err
	}
	key := session.BackupPrefix(userID) + strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Set(key, data); err != nil {
		return "", fmt.Errorf("store backup: %w", err)
	}

	keys, err := s.store.Keys(session.BackupPrefix(userID))
	if err != nil {
		log.WithError(err).Warn("dashboard: list backups for pruning failed")
		return key, nil
	}
	if len(keys) > maxBackups {
		for _, old := range keys[:len(keys)-maxBackups] {
			if err := s.store.Delete(old); err != nil {
				log.WithError(err).Warnf("dashboard: prune backup %s failed", old)
			}
		}
	}
	log.WithField("key", key).Debug("dashboard: backup stored")
	return key, nil
}

// Backups lists the current profile's snapshots, newest first.
func (s *Service) Backups() []BackupInfo {
	userID, err := s.currentUserID()
	if err != nil {
		return []BackupInfo{}
	}
	prefix := session.BackupPrefix(userID)
	keys, err := s.store.Keys(prefix)
	if err != nil {
		log.WithError(err).Warn("dashboard: list backups failed")
		return []BackupInfo{}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]BackupInfo, 0, len(keys))
	for _, key := range keys {
		data, _, err := s.store.Get(key)
		if err != nil {
			continue
		}
		millis, _ := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		out = append(out, BackupInfo{
			Key:  key,
			Date: time.UnixMilli(millis).UTC(),
			Size: fmt.Sprintf("%dKB", int(math.Round(float64(len(data))/1024))),
		})
	}
	return out
}

// RestoreBackup imports a snapshot owned by the current profile.
func (s *Service) RestoreBackup(ctx context.Context, key string) error {
	userID, err := s.currentUserID()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(key, session.BackupPrefix(userID)) {
		return fmt.Errorf("backup %s: %w", key, ErrNotFound)
	}
	data, ok, err := s.store.Get(key)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if !ok {
		return fmt.Errorf("backup %s: %w", key, ErrNotFound)
	}
	return s.ImportData(ctx, data)
}
