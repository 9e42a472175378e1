package dashboard

import (
	"context"
	"fmt"
	"math/rand"
	"net/mail"
	"strings"

	"creatorhub/models"

	"github.com/shopspring/decimal"
)

// GrowthEstimator produces the growth percentage shown for an affiliate account.
type GrowthEstimator interface {
	Growth(account models.Account) float64
}

// GrowthFunc adapts a function to GrowthEstimator.
type GrowthFunc func(account models.Account) float64

func (f GrowthFunc) Growth(account models.Account) float64 {
	return f(account)
}

// RandomGrowth is a placeholder estimator returning a value in [-5, 15).
type RandomGrowth struct{}

func (RandomGrowth) Growth(models.Account) float64 {
	return rand.Float64()*20 - 5
}

// AffiliateTrackerEntry is one row of the affiliate tracker.
type AffiliateTrackerEntry struct {
	Name     string          `json:"name"`
	Earnings decimal.Decimal `json:"earnings"`
	Target   decimal.Decimal `json:"target"`
	Growth   float64         `json:"growth"`
}

var (
	defaultTrackerBase = decimal.NewFromInt(1000)
	trackerMultiplier  = decimal.RequireFromString("1.5")
)

type AccountInput struct {
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Platform  string           `json:"platform"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	URL       string           `json:"url"`
	IsActive  *bool            `json:"isActive"`
	Earnings  *decimal.Decimal `json:"earnings"`
	Followers *int             `json:"followers"`
	Password  string           `json:"password"`
	Notes     string           `json:"notes"`
}

type AccountPatch struct {
	Name      *string          `json:"name"`
	Type      *string          `json:"type"`
	Platform  *string          `json:"platform"`
	Username  *string          `json:"username"`
	Email     *string          `json:"email"`
	URL       *string          `json:"url"`
	IsActive  *bool            `json:"isActive"`
	Earnings  *decimal.Decimal `json:"earnings"`
	Followers *int             `json:"followers"`
	Password  *string          `json:"password"`
	Notes     *string          `json:"notes"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validAccountType(t string) bool {
	return t == models.AccountSales || t == models.AccountSocial
}

// ValidateAccountInput checks an account form.
func ValidateAccountInput(in AccountInput) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !validAccountType(in.Type) {
		problems = append(problems, fmt.Sprintf("type must be %q or %q", models.AccountSales, models.AccountSocial))
	}
	if strings.TrimSpace(in.Platform) == "" {
		problems = append(problems, "platform is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		problems = append(problems, "username is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		problems = append(problems, "email is required")
	} else if !validEmail(strings.TrimSpace(in.Email)) {
		problems = append(problems, "email is not valid")
	}
	if in.Earnings != nil && in.Earnings.IsNegative() {
		problems = append(problems, "earnings cannot be negative")
	}
	if in.Followers != nil && *in.Followers < 0 {
		problems = append(problems, "followers cannot be negative")
	}
	return invalid(problems)
}

func findAccount(doc *models.UserDocument, id string) int {
	for i := range doc.Accounts {
		if doc.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) Accounts() []models.Account {
	return s.load().Accounts
}

// AccountsByType filters accounts by "sales" or "social".
func (s *Service) AccountsByType(accountType string) []models.Account {
	out := []models.Account{}
	for _, a := range s.load().Accounts {
		if a.Type == accountType {
			out = append(out, a)
		}
	}
	return out
}

func (s *Service) AddAccount(ctx context.Context, in AccountInput) (models.Account, error) {
	if err := ValidateAccountInput(in); err != nil {
		return models.Account{}, err
	}
	now := s.now()
	account := models.Account{
		ID:         newID(),
		Name:       strings.TrimSpace(in.Name),
		Type:       in.Type,
		Platform:   in.Platform,
		Username:   in.Username,
		Email:      strings.TrimSpace(in.Email),
		URL:        in.URL,
		IsActive:   true,
		Earnings:   in.Earnings,
		Followers:  in.Followers,
		Password:   in.Password,
		Notes:      in.Notes,
		LastUpdate: now,
		CreatedAt:  now,
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Accounts = append(doc.Accounts, account)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// UpdateAccount merges patch into the account and stamps lastUpdate.
func (s *Service) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (models.Account, error) {
	var problems []string
	if patch.Type != nil && !validAccountType(*patch.Type) {
		problems = append(problems, fmt.Sprintf("unknown account type %q", *patch.Type))
	}
	if patch.Email != nil && !validEmail(strings.TrimSpace(*patch.Email)) {
		problems = append(problems, "email is not valid")
	}
	if err := invalid(problems); err != nil {
		return models.Account{}, err
	}

	var updated models.Account
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findAccount(doc, id)
		if idx < 0 {
			return fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		a := &doc.Accounts[idx]
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Type != nil {
			a.Type = *patch.Type
		}
		if patch.Platform != nil {
			a.Platform = *patch.Platform
		}
		if patch.Username != nil {
			a.Username = *patch.Username
		}
		if patch.Email != nil {
			a.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.URL != nil {
			a.URL = *patch.URL
		}
		if patch.IsActive != nil {
			a.IsActive = *patch.IsActive
		}
		if patch.Earnings != nil {
			a.Earnings = patch.Earnings
		}
		if patch.Followers != nil {
			a.Followers = patch.Followers
		}
		if patch.Password != nil {
			a.Password = *patch.Password
		}
		if patch.Notes != nil {
			a.Notes = *patch.Notes
		}
		a.LastUpdate = s.now()
		updated = *a
		return nil
	})
	return updated, err
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findAccount(doc, id)
		if idx < 0 {
			return fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		doc.Accounts = append(doc.Accounts[:idx], doc.Accounts[idx+1:]...)
		return nil
	})
}

// AffiliateTrackerData maps active sales accounts to tracker rows. The target is 1.5x the
// account's earnings, or 1.5x 1000 when earnings are unset or zero.
func (s *Service) AffiliateTrackerData() []AffiliateTrackerEntry {
	out := []AffiliateTrackerEntry{}
	for _, a := range s.load().Accounts {
		if a.Type != models.AccountSales || !a.IsActive {
			continue
		}
		earnings := decimal.Zero
		if a.Earnings != nil {
			earnings = *a.Earnings
		}
		base := earnings
		if base.IsZero() {
			base = defaultTrackerBase
		}
		out = append(out, AffiliateTrackerEntry{
			Name:     a.Platform,
			Earnings: earnings,
			Target:   base.Mul(trackerMultiplier).Round(0),
			Growth:   s.growth.Growth(a),
		})
	}
	return out
}
