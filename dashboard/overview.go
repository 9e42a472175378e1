package dashboard

import (
	"fmt"
	"time"

	"creatorhub/db"
	"creatorhub/models"
	"creatorhub/session"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Stats is the overview of everything the profile has recorded.
type Stats struct {
	TotalIdeas            int             `json:"totalIdeas"`
	TotalTrendingProducts int             `json:"totalTrendingProducts"`
	TotalKits             int             `json:"totalKits"`
	TotalGoals            int             `json:"totalGoals"`
	CompletedGoals        int             `json:"completedGoals"`
	TotalTasks            int             `json:"totalTasks"`
	CompletedTasks        int             `json:"completedTasks"`
	TotalAccounts         int             `json:"totalAccounts"`
	ActiveAccounts        int             `json:"activeAccounts"`
	TotalEarnings         decimal.Decimal `json:"totalEarnings"`
	LastAccess            time.Time       `json:"lastAccess"`
	IsFirstTime           bool            `json:"isFirstTime"`
}

func (s *Service) Stats() Stats {
	doc := s.load()
	st := Stats{
		TotalIdeas:            len(doc.ProductIdeas),
		TotalTrendingProducts: len(doc.TrendingProducts),
		TotalKits:             len(doc.AffiliateKits),
		TotalGoals:            len(doc.Goals),
		TotalTasks:            len(doc.Tasks),
		TotalAccounts:         len(doc.Accounts),
		TotalEarnings:         sumEarnings(doc.DailyEarnings),
		LastAccess:            doc.Settings.LastAccess,
		IsFirstTime:           doc.Settings.IsFirstTime,
	}
	for _, g := range doc.Goals {
		if g.Status == models.GoalCompleted {
			st.CompletedGoals++
		}
	}
	for _, t := range doc.Tasks {
		if t.Status == models.TaskCompleted {
			st.CompletedTasks++
		}
	}
	for _, a := range doc.Accounts {
		if a.IsActive {
			st.ActiveAccounts++
		}
	}
	return st
}

// ValidateData checks the stored document's shape before any repair: settings must be an
// object and the core lists must be arrays. Guests have nothing stored and pass.
func (s *Service) ValidateData() bool {
	user, ok := s.session.CurrentUser()
	if !ok {
		return true
	}
	raw, found, err := s.store.Get(session.DocumentKey(user.ID))
	if err != nil || !found || !gjson.Valid(raw) {
		return false
	}
	if !gjson.Get(raw, "settings").IsObject() {
		return false
	}
	for _, field := range []string{"dailyEarnings", "productIdeas", "goals", "tasks", "accounts"} {
		if !gjson.Get(raw, field).IsArray() {
			return false
		}
	}
	return true
}

func search[T any](items []T, query []string) ([]T, error) {
	parsed, err := db.ParseContentQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return db.Filter(items, parsed)
}

// SearchGoals filters goals with the content query language,
// e.g. ["status equals on-track", "and", "target greaterThan 500"].
func (s *Service) SearchGoals(query []string) ([]models.Goal, error) {
	return search(s.load().Goals, query)
}

func (s *Service) SearchTasks(query []string) ([]models.Task, error) {
	return search(s.load().Tasks, query)
}

func (s *Service) SearchAccounts(query []string) ([]models.Account, error) {
	return search(s.load().Accounts, query)
}
