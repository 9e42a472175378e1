package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"creatorhub/models"
	"creatorhub/session"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/text/language"
)

// supportedLanguages are the UI languages a profile may choose.
var supportedLanguages = []language.Tag{language.English, language.Portuguese}

// protectedSettings are maintained by the dashboard itself and ignored in generic updates.
// cloudSync follows the profile flag set by ToggleCloudSync; activeAffiliates goes through
// UpdateActiveAffiliates so the monthly snapshot stays current.
var protectedSettings = []string{"lastAccess", "totalLockedSavings", "monthlyRevenue", "cloudSync", "activeAffiliates"}

// NormalizeLanguage maps a BCP 47 tag such as "pt-BR" to its supported base language.
func NormalizeLanguage(tag string) (string, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", fmt.Errorf("%w: invalid language %q", session.ErrInvalidInput, tag)
	}
	base, _ := parsed.Base()
	for _, supported := range supportedLanguages {
		if b, _ := supported.Base(); b == base {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("%w: unsupported language %q", session.ErrInvalidInput, tag)
}

type ProfilePatch struct {
	DisplayName string  `json:"displayName"`
	Email       string  `json:"email"`
	Bio         string  `json:"bio"`
	Avatar      *string `json:"avatar"`
}

type NotificationPatch struct {
	EmailNotifications *bool `json:"emailNotifications"`
	PushNotifications  *bool `json:"pushNotifications"`
	GoalReminders      *bool `json:"goalReminders"`
	TaskReminders      *bool `json:"taskReminders"`
	WeeklyReports      *bool `json:"weeklyReports"`
}

type AppearancePatch struct {
	CompactView *bool `json:"compactView"`
	Animations  *bool `json:"animations"`
}

type PrivacyPatch struct {
	DataAnalytics *bool `json:"dataAnalytics"`
	AutoBackup    *bool `json:"autoBackup"`
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *Service) Settings() models.Settings {
	return s.load().Settings
}

// UpdateSettings merges a partial settings object (JSON) into the current settings.
// System accumulators cannot be overwritten this way.
func (s *Service) UpdateSettings(ctx context.Context, partial []byte) (models.Settings, error) {
	raw := string(partial)
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return models.Settings{}, fmt.Errorf("%w: settings must be a JSON object", session.ErrInvalidInput)
	}
	for _, key := range protectedSettings {
		cleaned, err := sjson.Delete(raw, key)
		if err != nil {
			return models.Settings{}, fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
		}
		raw = cleaned
	}
	if lang := gjson.Get(raw, "language"); lang.Exists() {
		normalized, err := NormalizeLanguage(lang.String())
		if err != nil {
			return models.Settings{}, err
		}
		if raw, err = sjson.Set(raw, "language", normalized); err != nil {
			return models.Settings{}, fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
		}
	}
	displayName := strings.TrimSpace(gjson.Get(raw, "displayName").String())
	if displayName != "" {
		if utf8.RuneCountInString(displayName) < 2 {
			return models.Settings{}, invalid([]string{"display name must be at least 2 characters"})
		}
		var err error
		if raw, err = sjson.Set(raw, "displayName", displayName); err != nil {
			return models.Settings{}, fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
		}
	}

	var updated models.Settings
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		if err := json.Unmarshal([]byte(raw), &doc.Settings); err != nil {
			return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
		}
		updated = doc.Settings
		return nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	if displayName != "" {
		if err := s.session.UpdateDisplayName(displayName); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// UpdateProfileSettings sets the non-empty profile fields. A new display name is also
// applied to the profile itself.
func (s *Service) UpdateProfileSettings(ctx context.Context, p ProfilePatch) (models.Settings, error) {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.Email = strings.TrimSpace(p.Email)
	var problems []string
	if p.DisplayName != "" && utf8.RuneCountInString(p.DisplayName) < 2 {
		problems = append(problems, "display name must be at least 2 characters")
	}
	if p.Email != "" && !validEmail(p.Email) {
		problems = append(problems, "email is not valid")
	}
	if err := invalid(problems); err != nil {
		return models.Settings{}, err
	}

	var updated models.Settings
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		if p.DisplayName != "" {
			doc.Settings.DisplayName = p.DisplayName
		}
		if p.Email != "" {
			doc.Settings.Email = p.Email
		}
		if p.Bio != "" {
			doc.Settings.Bio = p.Bio
		}
		if p.Avatar != nil {
			doc.Settings.Avatar = *p.Avatar
		}
		updated = doc.Settings
		return nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	if p.DisplayName != "" {
		if err := s.session.UpdateDisplayName(p.DisplayName); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *Service) UpdateNotificationSettings(ctx context.Context, p NotificationPatch) (models.Settings, error) {
	var updated models.Settings
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		setBool(&doc.Settings.EmailNotifications, p.EmailNotifications)
		setBool(&doc.Settings.PushNotifications, p.PushNotifications)
		setBool(&doc.Settings.GoalReminders, p.GoalReminders)
		setBool(&doc.Settings.TaskReminders, p.TaskReminders)
		setBool(&doc.Settings.WeeklyReports, p.WeeklyReports)
		updated = doc.Settings
		return nil
	})
	return updated, err
}

func (s *Service) UpdateAppearanceSettings(ctx context.Context, p AppearancePatch) (models.Settings, error) {
	var updated models.Settings
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		setBool(&doc.Settings.CompactView, p.CompactView)
		setBool(&doc.Settings.Animations, p.Animations)
		updated = doc.Settings
		return nil
	})
	return updated, err
}

// UpdatePrivacySettings covers analytics and automatic backups. Cloud sync has its own
// switch on the session because it also touches the profile and the remote.
func (s *Service) UpdatePrivacySettings(ctx context.Context, p PrivacyPatch) (models.Settings, error) {
	var updated models.Settings
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		setBool(&doc.Settings.DataAnalytics, p.DataAnalytics)
		setBool(&doc.Settings.AutoBackup, p.AutoBackup)
		updated = doc.Settings
		return nil
	})
	return updated, err
}

// Language returns the profile's UI language, "en" when unset.
func (s *Service) Language() string {
	if lang := s.load().Settings.Language; lang != "" {
		return lang
	}
	return "en"
}

func (s *Service) UpdateLanguage(ctx context.Context, tag string) (string, error) {
	lang, err := NormalizeLanguage(tag)
	if err != nil {
		return "", err
	}
	err = s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Settings.Language = lang
		return nil
	})
	return lang, err
}

// ToggleDarkMode flips the stored flag and returns the new value. Applying the theme is
// up to the caller.
func (s *Service) ToggleDarkMode(ctx context.Context) (bool, error) {
	var dark bool
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Settings.DarkMode = !doc.Settings.DarkMode
		dark = doc.Settings.DarkMode
		return nil
	})
	return dark, err
}
