package domain

import (
	"strings"
	"time"
)

// DueDateLayout is the calendar-date form due dates are stored in.
const DueDateLayout = "2006-01-02"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryStudy    Category = "study"
)

// Categories lists every known category.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryStudy}
}

// Valid reports whether c names a known category. The empty category
// (task not categorized) is valid.
func (c Category) Valid() bool {
	if c == "" {
		return true
	}
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Task is a single to-do entry, the unit of storage and display.
// IDs are positive, unique and monotonically assigned; they are never
// reused even after deletion. CompletedAt is non-nil exactly when
// Completed is true.
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    Category   `json:"category,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
}

// Due parses the task's due date in the local timezone. The second
// return is false when the task has no (or a malformed) due date.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DueDateLayout, *t.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseDueDate validates a calendar date string.
func ParseDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.ParseInLocation(DueDateLayout, s, time.Local); err != nil {
		return "", err
	}
	return s, nil
}

// SameDay reports calendar-day equality in the local timezone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates ts to midnight local time.
func StartOfDay(ts time.Time) time.Time {
	y, m, d := ts.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
