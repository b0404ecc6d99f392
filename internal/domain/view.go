package domain

import (
	"fmt"
	"strings"
)

// Filter selects a subset of tasks for display.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterRecent    Filter = "recent"
	FilterDueToday  Filter = "due-today"
	FilterOverdue   Filter = "overdue"
	FilterNoDueDate Filter = "no-due-date"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterCompleted, FilterPending, FilterRecent,
		FilterDueToday, FilterOverdue, FilterNoDueDate:
		return true
	}
	return false
}

// SortKey orders the filtered set.
type SortKey string

const (
	SortCreatedDesc  SortKey = "created-desc"
	SortCreatedAsc   SortKey = "created-asc"
	SortAlphabetical SortKey = "alphabetical"
	SortCompletion   SortKey = "completion"
	SortPriority     SortKey = "priority"
	SortDueDate      SortKey = "due-date"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortCreatedDesc, SortCreatedAsc, SortAlphabetical,
		SortCompletion, SortPriority, SortDueDate:
		return true
	}
	return false
}

// ViewConfig is the tuple deciding what subset and order of tasks is
// displayed. Category is an independent predicate; when both Filter and
// Category are set they are ANDed.
type ViewConfig struct {
	Filter   Filter   `json:"filter"`
	Category Category `json:"category,omitempty"`
	Sort     SortKey  `json:"sort"`
	Query    string   `json:"query,omitempty"`
}

// DefaultViewConfig shows everything, newest first.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{Filter: FilterAll, Sort: SortCreatedDesc}
}

// ParseFilter accepts the plain filter names plus the "category:<name>"
// form, which selects FilterAll scoped to that category.
func ParseFilter(s string) (Filter, Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, "", nil
	}
	if name, ok := strings.CutPrefix(s, "category:"); ok {
		c := Category(name)
		if c == "" || !c.Valid() {
			return "", "", fmt.Errorf("unknown category %q", name)
		}
		return FilterAll, c, nil
	}
	f := Filter(s)
	if !f.Valid() {
		return "", "", fmt.Errorf("unknown filter %q", s)
	}
	return f, "", nil
}

// Stats are read-only aggregates derived from the collection; they are
// never stored. The due-date and priority breakdowns count pending tasks
// only.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`

	PendingByPriority map[Priority]int `json:"pendingByPriority"`
	ByCategory        map[Category]int `json:"byCategory"`

	DueToday  int `json:"dueToday"`
	Overdue   int `json:"overdue"`
	Upcoming  int `json:"upcoming"`
	NoDueDate int `json:"noDueDate"`

	CreatedToday   int `json:"createdToday"`
	CompletedToday int `json:"completedToday"`
}
