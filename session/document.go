package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// documentFields maps every top-level document field to its decode target inside doc.
func documentFields(doc *models.UserDocument) map[string]any {
	return map[string]any{
		"productIdeas":     &doc.ProductIdeas,
		"trendingProducts": &doc.TrendingProducts,
		"affiliateKits":    &doc.AffiliateKits,
		"goals":            &doc.Goals,
		"dailyEarnings":    &doc.DailyEarnings,
		"monthlyStats":     &doc.MonthlyStats,
		"tasks":            &doc.Tasks,
		"accounts":         &doc.Accounts,
		"settings":         &doc.Settings,
	}
}

func fieldDecodes(field, raw string) bool {
	var scratch models.UserDocument
	target, ok := documentFields(&scratch)[field]
	if !ok {
		return true
	}
	return json.Unmarshal([]byte(raw), target) == nil
}

// decodeDocument merges a stored document onto a fresh default. Fields that fail to
// decode are dropped and fall back to their defaults; only an unparseable value fails.
func decodeDocument(raw string, now time.Time) (models.UserDocument, error) {
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return models.UserDocument{}, ErrParse
	}

	var scratch models.UserDocument
	for field := range documentFields(&scratch) {
		value := gjson.Get(raw, field)
		if !value.Exists() || fieldDecodes(field, value.Raw) {
			continue
		}
		cleaned, err := sjson.Delete(raw, field)
		if err != nil {
			return models.UserDocument{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		log.WithField("field", field).Warn("session: dropping unreadable document field")
		raw = cleaned
	}

	doc := models.DefaultDocument(now)
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return models.UserDocument{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *Session) writeDocument(userID string, doc models.UserDocument) error {
	doc.Normalize()
	if err := db.SetJSON(s.store, DocumentKey(userID), doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// loadDocumentLocked reads, repairs, stamps and persists the stored document of userID.
// It never fails; unreadable storage yields a fresh default.
func (s *Session) loadDocumentLocked(userID string) models.UserDocument {
	now := s.Now()
	doc := models.DefaultDocument(now)

	raw, ok, err := s.store.Get(DocumentKey(userID))
	switch {
	case err != nil:
		log.WithError(err).Error("session: read document failed, using defaults")
	case ok:
		decoded, err := decodeDocument(raw, now)
		if err != nil {
			log.WithError(err).Errorf("session: document of %s is corrupt, resetting to defaults", userID)
		} else {
			doc = decoded
		}
	}

	doc.Settings.LastAccess = now
	if err := s.writeDocument(userID, doc); err != nil {
		log.WithError(err).Error("session: persist loaded document failed")
	}
	return doc
}

// storedLastAccess reads settings.lastAccess without re-stamping it. Zero when unknown.
func (s *Session) storedLastAccess(userID string) time.Time {
	raw, ok, err := s.store.Get(DocumentKey(userID))
	if err != nil || !ok {
		return time.Time{}
	}
	value := gjson.Get(raw, "settings.lastAccess")
	if !value.Exists() {
		return time.Time{}
	}
	return value.Time()
}

// Load returns the current profile's document, or a fresh unsaved default for guests.
func (s *Session) Load() models.UserDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return models.DefaultDocument(s.Now())
	}
	return s.loadDocumentLocked(user.ID)
}

// Save persists doc for the current profile and mirrors it when sync applies.
func (s *Session) Save(ctx context.Context, doc models.UserDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, doc)
}

func (s *Session) saveLocked(ctx context.Context, doc models.UserDocument) error {
	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		log.Warn("session: save attempted without a logged in user")
		return ErrNoCurrentUser
	}
	if err := s.writeDocument(user.ID, doc); err != nil {
		return err
	}
	if s.syncAllowed(reg, user) && doc.Settings.CloudSync {
		if err := s.bridge.Push(ctx, user, doc); err != nil {
			log.WithError(err).Debug("session: automatic sync failed")
		}
	}
	return nil
}

// Mutate loads the current document, applies fn and saves the result, all under the
// session lock. An error from fn aborts without saving.
func (s *Session) Mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		log.Warn("session: mutation attempted without a logged in user")
		return ErrNoCurrentUser
	}
	doc := s.loadDocumentLocked(user.ID)
	if err := fn(&doc); err != nil {
		return err
	}
	return s.saveLocked(ctx, doc)
}

// HasData reports whether the current profile has a stored document.
func (s *Session) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.loadRegistry()
	user, ok := s.currentLocked(&reg)
	if !ok {
		return false
	}
	_, found, err := s.store.Get(DocumentKey(user.ID))
	return err == nil && found
}
