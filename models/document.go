package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal statuses. StatusAtRisk is never produced by progress updates, only set explicitly.
const (
	GoalOnTrack   = "on-track"
	GoalBehind    = "behind"
	GoalAtRisk    = "at-risk"
	GoalCompleted = "completed"
)

// Task statuses and priorities.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Account types.
const (
	AccountSales  = "sales"
	AccountSocial = "social"
)

// ProductIdea is a generated digital-product idea.
type ProductIdea struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Niche            string    `json:"niche"`
	Potential        string    `json:"potential"`
	Difficulty       string    `json:"difficulty"`
	EstimatedRevenue string    `json:"estimatedRevenue"`
	Description      string    `json:"description"`
	Keywords         []string  `json:"keywords"`
	Topic            string    `json:"topic"`
	Region           string    `json:"region"`
	ProductType      string    `json:"productType"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TrendingProduct is a generated market-trend entry.
type TrendingProduct struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Trend       string    `json:"trend"`
	AvgPrice    string    `json:"avgPrice"`
	Competition string    `json:"competition"`
	Demand      string    `json:"demand"`
	Region      string    `json:"region"`
	Description string    `json:"description"`
	Topic       string    `json:"topic"`
	ProductType string    `json:"productType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AffiliateKit is a generated bundle of promotion material for a product.
type AffiliateKit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Components     []string  `json:"components"`
	Commission     string    `json:"commission"`
	ConversionRate string    `json:"conversionRate"`
	Description    string    `json:"description"`
	ProductName    string    `json:"productName"`
	Topic          string    `json:"topic"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Milestone is one rung of a goal's ladder.
type Milestone struct {
	Amount    decimal.Decimal `json:"amount"`
	Completed bool            `json:"completed"`
}

// Goal tracks progress towards a target amount.
type Goal struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Target      decimal.Decimal `json:"target"`
	Current     decimal.Decimal `json:"current"`
	Deadline    string          `json:"deadline"` // YYYY-MM-DD
	Status      string          `json:"status"`
	Icon        string          `json:"icon"`
	Milestones  []Milestone     `json:"milestones"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Task is a dated to-do entry.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt"`
}

// Account is a sales or social platform account.
// Password is stored as entered; it is only hidden by the UI.
type Account struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Platform   string           `json:"platform"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	URL        string           `json:"url,omitempty"`
	IsActive   bool             `json:"isActive"`
	Earnings   *decimal.Decimal `json:"earnings,omitempty"`
	Followers  *int             `json:"followers,omitempty"`
	LastUpdate time.Time        `json:"lastUpdate"`
	Password   string           `json:"password,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// DailyEarning is an immutable income record.
type DailyEarning struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MonthlyStats aggregates one calendar month of earnings.
type MonthlyStats struct {
	Month            string          `json:"month"` // YYYY-MM
	TotalEarnings    decimal.Decimal `json:"totalEarnings"`
	DailyEarnings    []DailyEarning  `json:"dailyEarnings"`
	ActiveAffiliates int             `json:"activeAffiliates"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Settings is the flat per-user settings record.
type Settings struct {
	// Profile
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar,omitempty"`

	// Notifications
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	GoalReminders      bool `json:"goalReminders"`
	TaskReminders      bool `json:"taskReminders"`
	WeeklyReports      bool `json:"weeklyReports"`

	// Appearance
	DarkMode    bool   `json:"darkMode"`
	CompactView bool   `json:"compactView"`
	Animations  bool   `json:"animations"`
	Language    string `json:"language"`

	// Privacy & data
	DataAnalytics bool `json:"dataAnalytics"`
	AutoBackup    bool `json:"autoBackup"`
	CloudSync     bool `json:"cloudSync"`

	// System
	Region                    string          `json:"region"`
	LastAccess                time.Time       `json:"lastAccess"`
	TotalLockedSavings        decimal.Decimal `json:"totalLockedSavings"`
	MonthlyRevenue            decimal.Decimal `json:"monthlyRevenue"`
	ActiveAffiliates          int             `json:"activeAffiliates"`
	IsFirstTime               bool            `json:"isFirstTime"`
	PasswordProtectionEnabled bool            `json:"passwordProtectionEnabled"`
}

// UserDocument is everything one profile owns, persisted as a single JSON value.
type UserDocument struct {
	ProductIdeas     []ProductIdea     `json:"productIdeas"`
	TrendingProducts []TrendingProduct `json:"trendingProducts"`
	AffiliateKits    []AffiliateKit    `json:"affiliateKits"`
	Goals            []Goal            `json:"goals"`
	DailyEarnings    []DailyEarning    `json:"dailyEarnings"`
	MonthlyStats     []MonthlyStats    `json:"monthlyStats"`
	Tasks            []Task            `json:"tasks"`
	Accounts         []Account         `json:"accounts"`
	Settings         Settings          `json:"settings"`
}

// DefaultDocument returns a zeroed document for a brand-new profile.
func DefaultDocument(now time.Time) UserDocument {
	return UserDocument{
		ProductIdeas:     []ProductIdea{},
		TrendingProducts: []TrendingProduct{},
		AffiliateKits:    []AffiliateKit{},
		Goals:            []Goal{},
		DailyEarnings:    []DailyEarning{},
		MonthlyStats:     []MonthlyStats{},
		Tasks:            []Task{},
		Accounts:         []Account{},
		Settings: Settings{
			EmailNotifications: true,
			PushNotifications:  true,
			GoalReminders:      true,
			TaskReminders:      true,
			WeeklyReports:      false,

			Animations: true,
			Language:   "en",

			DataAnalytics: true,
			AutoBackup:    true,
			CloudSync:     true,

			Region:             "Brasil",
			LastAccess:         now.UTC(),
			TotalLockedSavings: decimal.Zero,
			MonthlyRevenue:     decimal.Zero,
			IsFirstTime:        true,
		},
	}
}

// Normalize replaces nil lists with empty ones so partially stored documents behave
// like fresh ones.
func (d *UserDocument) Normalize() {
	if d.ProductIdeas == nil {
		d.ProductIdeas = []ProductIdea{}
	}
	if d.TrendingProducts == nil {
		d.TrendingProducts = []TrendingProduct{}
	}
	if d.AffiliateKits == nil {
		d.AffiliateKits = []AffiliateKit{}
	}
	if d.Goals == nil {
		d.Goals = []Goal{}
	}
	if d.DailyEarnings == nil {
		d.DailyEarnings = []DailyEarning{}
	}
	if d.MonthlyStats == nil {
		d.MonthlyStats = []MonthlyStats{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	for i := range d.Goals {
		if d.Goals[i].Milestones == nil {
			d.Goals[i].Milestones = []Milestone{}
		}
	}
	for i := range d.MonthlyStats {
		if d.MonthlyStats[i].DailyEarnings == nil {
			d.MonthlyStats[i].DailyEarnings = []DailyEarning{}
		}
	}
}
