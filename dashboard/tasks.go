package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"creatorhub/models"
)

// maxTaskAge is how far in the past a new task may be dated.
const maxTaskAge = 7 * 24 * time.Hour

var (
	taskStatuses = map[string]bool{
		models.TaskPending:    true,
		models.TaskInProgress: true,
		models.TaskCompleted:  true,
	}
	taskPriorities = map[string]bool{
		models.PriorityLow:    true,
		models.PriorityMedium: true,
		models.PriorityHigh:   true,
	}
)

type TaskInput struct {
	Title       string `json:"title"`
	Time        string `json:"time"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type TaskPatch struct {
	Title       *string `json:"title"`
	Time        *string `json:"time"`
	Date        *string `json:"date"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// TaskStats summarises today's tasks.
type TaskStats struct {
	TotalTasks      int `json:"totalTasks"`
	TodayTasks      int `json:"todayTasks"`
	CompletedToday  int `json:"completedToday"`
	PendingToday    int `json:"pendingToday"`
	InProgressToday int `json:"inProgressToday"`
	CompletionRate  int `json:"completionRate"`
}

// ValidateTaskInput checks a task form. now bounds how old the task date may be.
func ValidateTaskInput(in TaskInput, now time.Time) error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		problems = append(problems, "category is required")
	}
	if strings.TrimSpace(in.Time) == "" {
		problems = append(problems, "time is required")
	}
	if strings.TrimSpace(in.Date) == "" {
		problems = append(problems, "date is required")
	} else if day, err := time.Parse(dateLayout, in.Date); err != nil {
		problems = append(problems, "date must be a YYYY-MM-DD date")
	} else {
		today, _ := time.Parse(dateLayout, now.Format(dateLayout))
		if today.Sub(day) > maxTaskAge {
			problems = append(problems, "date cannot be more than 7 days in the past")
		}
	}
	if in.Status != "" && !taskStatuses[in.Status] {
		problems = append(problems, fmt.Sprintf("unknown status %q", in.Status))
	}
	if in.Priority != "" && !taskPriorities[in.Priority] {
		problems = append(problems, fmt.Sprintf("unknown priority %q", in.Priority))
	}
	return invalid(problems)
}

// nextTaskStatus cycles pending -> in-progress -> completed -> pending.
func nextTaskStatus(status string) string {
	switch status {
	case models.TaskCompleted:
		return models.TaskPending
	case models.TaskPending:
		return models.TaskInProgress
	default:
		return models.TaskCompleted
	}
}

func findTask(doc *models.UserDocument, id string) int {
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) Tasks() []models.Task {
	return s.load().Tasks
}

// TasksByDate returns the tasks dated date (YYYY-MM-DD).
func (s *Service) TasksByDate(date string) []models.Task {
	out := []models.Task{}
	for _, t := range s.load().Tasks {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) TodayTasks() []models.Task {
	return s.TasksByDate(s.today())
}

func (s *Service) AddTask(ctx context.Context, in TaskInput) (models.Task, error) {
	if err := ValidateTaskInput(in, s.now()); err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:          newID(),
		Title:       strings.TrimSpace(in.Title),
		Time:        in.Time,
		Date:        in.Date,
		Status:      in.Status,
		Priority:    in.Priority,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.Tasks = append(doc.Tasks, task)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, id string, patch TaskPatch) (models.Task, error) {
	var problems []string
	if patch.Status != nil && !taskStatuses[*patch.Status] {
		problems = append(problems, fmt.Sprintf("unknown status %q", *patch.Status))
	}
	if patch.Priority != nil && !taskPriorities[*patch.Priority] {
		problems = append(problems, fmt.Sprintf("unknown priority %q", *patch.Priority))
	}
	if err := invalid(problems); err != nil {
		return models.Task{}, err
	}

	var updated models.Task
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findTask(doc, id)
		if idx < 0 {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		t := &doc.Tasks[idx]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Time != nil {
			t.Time = *patch.Time
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		updated = *t
		return nil
	})
	return updated, err
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findTask(doc, id)
		if idx < 0 {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		doc.Tasks = append(doc.Tasks[:idx], doc.Tasks[idx+1:]...)
		return nil
	})
}

// ToggleTaskStatus advances the task to its next status.
func (s *Service) ToggleTaskStatus(ctx context.Context, id string) (models.Task, error) {
	var updated models.Task
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		idx := findTask(doc, id)
		if idx < 0 {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		doc.Tasks[idx].Status = nextTaskStatus(doc.Tasks[idx].Status)
		updated = doc.Tasks[idx]
		return nil
	})
	return updated, err
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// TaskStats counts all tasks and today's tasks by status.
func (s *Service) TaskStats() TaskStats {
	doc := s.load()
	today := s.today()
	stats := TaskStats{TotalTasks: len(doc.Tasks)}
	for _, t := range doc.Tasks {
		if t.Date != today {
			continue
		}
		stats.TodayTasks++
		switch t.Status {
		case models.TaskCompleted:
			stats.CompletedToday++
		case models.TaskPending:
			stats.PendingToday++
		case models.TaskInProgress:
			stats.InProgressToday++
		}
	}
	stats.CompletionRate = completionRate(stats.CompletedToday, stats.TodayTasks)
	return stats
}

// DailyTaskProgress is today's completion percentage (0 when nothing is planned).
func (s *Service) DailyTaskProgress() int {
	return s.TaskStats().CompletionRate
}
