package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"creatorhub/models"

	"github.com/shopspring/decimal"
)

type EarningInput struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
}

// EarningsOverview is the earnings dashboard header.
type EarningsOverview struct {
	TodayTotal         decimal.Decimal `json:"todayTotal"`
	MonthTotal         decimal.Decimal `json:"monthTotal"`
	TotalLockedSavings decimal.Decimal `json:"totalLockedSavings"`
	MonthlyRevenue     decimal.Decimal `json:"monthlyRevenue"`
	ActiveAffiliates   int             `json:"activeAffiliates"`
	TodayCount         int             `json:"todayCount"`
	MonthCount         int             `json:"monthCount"`
	IsFirstTime        bool            `json:"isFirstTime"`
}

func validateEarning(in EarningInput) error {
	var problems []string
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		problems = append(problems, "date must be a YYYY-MM-DD date")
	}
	if !in.Amount.IsPositive() {
		problems = append(problems, "amount must be greater than zero")
	}
	if strings.TrimSpace(in.Source) == "" {
		problems = append(problems, "source is required")
	}
	return invalid(problems)
}

// recordEarning appends e and maintains the lifetime total, the month bucket and the
// best-month record. Buckets stay sorted newest month first.
func recordEarning(doc *models.UserDocument, e models.DailyEarning, now time.Time) {
	doc.DailyEarnings = append(doc.DailyEarnings, e)
	doc.Settings.TotalLockedSavings = doc.Settings.TotalLockedSavings.Add(e.Amount)

	month := e.Date[:7]
	idx := -1
	for i := range doc.MonthlyStats {
		if doc.MonthlyStats[i].Month == month {
			idx = i
			break
		}
	}
	if idx < 0 {
		doc.MonthlyStats = append(doc.MonthlyStats, models.MonthlyStats{
			Month:            month,
			TotalEarnings:    decimal.Zero,
			DailyEarnings:    []models.DailyEarning{},
			ActiveAffiliates: doc.Settings.ActiveAffiliates,
			CreatedAt:        now,
		})
		idx = len(doc.MonthlyStats) - 1
	}

	bucket := &doc.MonthlyStats[idx]
	bucket.DailyEarnings = append(bucket.DailyEarnings, e)
	total := decimal.Zero
	for _, d := range bucket.DailyEarnings {
		total = total.Add(d.Amount)
	}
	bucket.TotalEarnings = total
	if total.GreaterThan(doc.Settings.MonthlyRevenue) {
		doc.Settings.MonthlyRevenue = total
	}

	sort.SliceStable(doc.MonthlyStats, func(i, j int) bool {
		return doc.MonthlyStats[i].Month > doc.MonthlyStats[j].Month
	})
}

// AddDailyEarning records an income entry. Entries are immutable afterwards.
func (s *Service) AddDailyEarning(ctx context.Context, in EarningInput) (models.DailyEarning, error) {
	if err := validateEarning(in); err != nil {
		return models.DailyEarning{}, err
	}
	now := s.now()
	earning := models.DailyEarning{
		ID:          newID(),
		Date:        in.Date,
		Amount:      in.Amount,
		Source:      strings.TrimSpace(in.Source),
		Description: in.Description,
		CreatedAt:   now,
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		recordEarning(doc, earning, now)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.DailyEarning{}, err
	}
	return earning, nil
}

// UpdateActiveAffiliates sets the affiliate count and refreshes the current month's snapshot.
func (s *Service) UpdateActiveAffiliates(ctx context.Context, count int) error {
	if count < 0 {
		return invalid([]string{"active affiliates cannot be negative"})
	}
	month := s.now().Format("2006-01")
	return s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Settings.ActiveAffiliates = count
		for i := range doc.MonthlyStats {
			if doc.MonthlyStats[i].Month == month {
				doc.MonthlyStats[i].ActiveAffiliates = count
			}
		}
		return nil
	})
}

func (s *Service) DailyEarnings() []models.DailyEarning {
	return s.load().DailyEarnings
}

func earningsWithPrefix(doc models.UserDocument, prefix string) []models.DailyEarning {
	out := []models.DailyEarning{}
	for _, e := range doc.DailyEarnings {
		if strings.HasPrefix(e.Date, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Service) TodayEarnings() []models.DailyEarning {
	return earningsWithPrefix(s.load(), s.today())
}

// EarningsByMonth returns the entries whose date starts with month (YYYY-MM).
func (s *Service) EarningsByMonth(month string) []models.DailyEarning {
	return earningsWithPrefix(s.load(), month)
}

// MonthlyStats returns every month bucket, newest first.
func (s *Service) MonthlyStats() []models.MonthlyStats {
	return s.load().MonthlyStats
}

func (s *Service) MonthlyStatsFor(month string) (models.MonthlyStats, bool) {
	for _, m := range s.load().MonthlyStats {
		if m.Month == month {
			return m, true
		}
	}
	return models.MonthlyStats{}, false
}

func sumEarnings(entries []models.DailyEarning) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

func (s *Service) EarningsOverview() EarningsOverview {
	doc := s.load()
	today := s.today()
	todayEntries := earningsWithPrefix(doc, today)
	monthEntries := earningsWithPrefix(doc, today[:7])

	return EarningsOverview{
		TodayTotal:         sumEarnings(todayEntries),
		MonthTotal:         sumEarnings(monthEntries),
		TotalLockedSavings: doc.Settings.TotalLockedSavings,
		MonthlyRevenue:     doc.Settings.MonthlyRevenue,
		ActiveAffiliates:   doc.Settings.ActiveAffiliates,
		TodayCount:         len(todayEntries),
		MonthCount:         len(monthEntries),
		IsFirstTime:        doc.Settings.IsFirstTime,
	}
}
