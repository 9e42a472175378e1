package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"creatorhub/models"
	"creatorhub/session"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
)

var goalStatuses = map[string]bool{
	models.GoalOnTrack:   true,
	models.GoalBehind:    true,
	models.GoalAtRisk:    true,
	models.GoalCompleted: true,
}

// GoalInput is the payload for creating a goal. Empty milestones get the default quarter
// ladder; an empty status is derived from progress.
type GoalInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Target      decimal.Decimal    `json:"target"`
	Current     decimal.Decimal    `json:"current"`
	Deadline    string             `json:"deadline"`
	Status      string             `json:"status"`
	Icon        string             `json:"icon"`
	Milestones  []models.Milestone `json:"milestones"`
}

// GoalPatch holds the fields to change on an existing goal; nil fields are kept.
type GoalPatch struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Target      *decimal.Decimal    `json:"target"`
	Current     *decimal.Decimal    `json:"current"`
	Deadline    *string             `json:"deadline"`
	Status      *string             `json:"status"`
	Icon        *string             `json:"icon"`
	Milestones  *[]models.Milestone `json:"milestones"`
}

// ValidateGoalInput checks a goal form.
func ValidateGoalInput(in GoalInput) error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		problems = append(problems, "category is required")
	}
	if !in.Target.IsPositive() {
		problems = append(problems, "target must be greater than zero")
	}
	if in.Current.IsNegative() {
		problems = append(problems, "current cannot be negative")
	} else if in.Target.IsPositive() && in.Current.GreaterThan(in.Target) {
		problems = append(problems, "current cannot exceed target")
	}
	if strings.TrimSpace(in.Deadline) == "" {
		problems = append(problems, "deadline is required")
	} else if _, err := time.Parse(dateLayout, in.Deadline); err != nil {
		problems = append(problems, "deadline must be a YYYY-MM-DD date")
	}
	if in.Status != "" && !goalStatuses[in.Status] {
		problems = append(problems, fmt.Sprintf("unknown status %q", in.Status))
	}
	return invalid(problems)
}

func invalid(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", session.ErrInvalidInput, strings.Join(problems, "; "))
}

// QuarterMilestones is the default milestone ladder: 25%, 50%, 75% and 100% of target.
// Financial goals round each quarter of the target; other categories use multiples of a
// rounded quarter.
func QuarterMilestones(category string, target decimal.Decimal) []models.Milestone {
	var amounts []decimal.Decimal
	if strings.EqualFold(category, "Financial") {
		for _, pct := range []string{"0.25", "0.5", "0.75"} {
			amounts = append(amounts, target.Mul(decimal.RequireFromString(pct)).Round(0))
		}
	} else {
		q := target.Div(decimal.NewFromInt(4)).Round(0)
		amounts = []decimal.Decimal{q, q.Mul(decimal.NewFromInt(2)), q.Mul(decimal.NewFromInt(3))}
	}
	amounts = append(amounts, target)

	out := make([]models.Milestone, len(amounts))
	for i, a := range amounts {
		out[i] = models.Milestone{Amount: a}
	}
	return out
}

// progressStatus derives a goal status from current/target.
// 50% and above is on-track until the target is reached.
func progressStatus(current, target decimal.Decimal) string {
	if !target.IsPositive() {
		if current.IsPositive() {
			return models.GoalCompleted
		}
		return models.GoalBehind
	}
	pct := current.Mul(hundred).Div(target)
	switch {
	case pct.GreaterThanOrEqual(hundred):
		return models.GoalCompleted
	case pct.GreaterThanOrEqual(fifty):
		return models.GoalOnTrack
	default:
		return models.GoalBehind
	}
}

func markMilestones(milestones []models.Milestone, current decimal.Decimal) {
	for i := range milestones {
		milestones[i].Completed = current.GreaterThanOrEqual(milestones[i].Amount)
	}
}

func findGoal(doc *models.UserDocument, id string) int {
	for i := range doc.Goals {
		if doc.Goals[i].ID == id {
			return i
		}
	}
	return -1
}

// Goals lists the current profile's goals.
func (s *Service) Goals() []models.Goal {
	return s.load().Goals
}

// Goal returns one goal.
func (s *Service) Goal(id string) (models.Goal, error) {
	doc := s.load()
	idx := findGoal(&doc, id)
	if idx < 0 {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return doc.Goals[idx], nil
}

// AddGoal validates and appends a goal.
func (s *Service) AddGoal(ctx context.Context, in GoalInput) (models.Goal, error) {
	if err := ValidateGoalInput(in); err != nil {
		return models.Goal{}, err
	}

	milestones := append([]models.Milestone(nil), in.Milestones...)
	if len(milestones) == 0 {
		milestones = QuarterMilestones(in.Category, in.Target)
	}
	markMilestones(milestones, in.Current)
	status := in.Status
	if status == "" {
		status = progressStatus(in.Current, in.Target)
	}

	goal := models.Goal{
		ID:          newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Target:      in.Target,
		Current:     in.Current,
		Deadline:    in.Deadline,
		Status:      status,
		Icon:        in.Icon,
		Milestones:  milestones,
		CreatedAt:   s.now(),
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Goals = append(doc.Goals, goal)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

// UpdateGoal merges patch into the goal. Milestones and status given in the patch are
// kept as is; otherwise a change to current or target recomputes them.
func (s *Service) UpdateGoal(ctx context.Context, id string, patch GoalPatch) (models.Goal, error) {
	if patch.Status != nil && !goalStatuses[*patch.Status] {
		return models.Goal{}, invalid([]string{fmt.Sprintf("unknown status %q", *patch.Status)})
	}

	var updated models.Goal
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findGoal(doc, id)
		if idx < 0 {
			return fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}
		g := &doc.Goals[idx]
		if patch.Title != nil {
			g.Title = *patch.Title
		}
		if patch.Description != nil {
			g.Description = *patch.Description
		}
		if patch.Category != nil {
			g.Category = *patch.Category
		}
		if patch.Target != nil {
			g.Target = *patch.Target
		}
		if patch.Current != nil {
			g.Current = *patch.Current
		}
		if patch.Deadline != nil {
			g.Deadline = *patch.Deadline
		}
		if patch.Status != nil {
			g.Status = *patch.Status
		}
		if patch.Icon != nil {
			g.Icon = *patch.Icon
		}
		if patch.Milestones != nil {
			g.Milestones = append([]models.Milestone(nil), (*patch.Milestones)...)
		}
		if patch.Current != nil || patch.Target != nil {
			if patch.Milestones == nil {
				markMilestones(g.Milestones, g.Current)
			}
			if patch.Status == nil {
				g.Status = progressStatus(g.Current, g.Target)
			}
		}
		updated = *g
		return nil
	})
	return updated, err
}

// DeleteGoal removes a goal.
func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	return s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findGoal(doc, id)
		if idx < 0 {
			return fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}
		doc.Goals = append(doc.Goals[:idx], doc.Goals[idx+1:]...)
		return nil
	})
}

// UpdateGoalProgress sets current, then recomputes milestone flags and status.
func (s *Service) UpdateGoalProgress(ctx context.Context, id string, current decimal.Decimal) (models.Goal, error) {
	if current.IsNegative() {
		return models.Goal{}, invalid([]string{"progress cannot be negative"})
	}

	var updated models.Goal
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findGoal(doc, id)
		if idx < 0 {
			return fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}
		g := &doc.Goals[idx]
		g.Current = current
		markMilestones(g.Milestones, current)
		g.Status = progressStatus(current, g.Target)
		updated = *g
		return nil
	})
	return updated, err
}
