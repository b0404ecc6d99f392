package store

import (
	"sort"
	"strings"
	"time"

	"taskdeck/internal/domain"
)

// SetFilter parses and applies a filter name ("pending", "overdue",
// "category:work", ...). The category:<name> form scopes the view to that
// category; otherwise any previously set category scope is kept and ANDed
// with the new filter.
func (s *Store) SetFilter(name string) error {
	f, c, err := domain.ParseFilter(name)
	if err != nil {
		return &ValidationError{Field: "filter", Reason: err.Error()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Filter = f
	if c != "" {
		s.view.Category = c
	}
	return nil
}

// SetCategoryScope sets (or clears, with "") the category predicate ANDed
// onto the current filter.
func (s *Store) SetCategoryScope(c domain.Category) error {
	if !c.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Category = c
	return nil
}

// SetSort applies a sort key.
func (s *Store) SetSort(name string) error {
	k := domain.SortKey(strings.TrimSpace(name))
	if k == "" {
		k = domain.SortCreatedDesc
	}
	if !k.Valid() {
		return &ValidationError{Field: "sort", Reason: "unknown sort key"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Sort = k
	return nil
}

// SetSearchQuery applies the search substring; matching trims and
// lower-cases it, so any query value is acceptable here.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Query = q
}

// ViewConfig returns the currently applied view configuration.
func (s *Store) ViewConfig() domain.ViewConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// View derives the filtered+sorted sequence for the store's current view
// configuration. The result is a copy; mutating it never touches the
// collection.
func (s *Store) View() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriveLocked(s.view)
}

// ViewWith derives a view for an explicit configuration without changing
// the applied one.
func (s *Store) ViewWith(cfg domain.ViewConfig) ([]domain.Task, error) {
	if cfg.Filter == "" {
		cfg.Filter = domain.FilterAll
	}
	if cfg.Sort == "" {
		cfg.Sort = domain.SortCreatedDesc
	}
	if !cfg.Filter.Valid() {
		return nil, &ValidationError{Field: "filter", Reason: "unknown filter"}
	}
	if !cfg.Sort.Valid() {
		return nil, &ValidationError{Field: "sort", Reason: "unknown sort key"}
	}
	if !cfg.Category.Valid() {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriveLocked(cfg), nil
}

func (s *Store) deriveLocked(cfg domain.ViewConfig) []domain.Task {
	now := s.now()
	query := strings.ToLower(strings.TrimSpace(cfg.Query))

	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if query != "" && !strings.Contains(strings.ToLower(t.Text), query) {
			continue
		}
		if !matchesFilter(t, cfg.Filter, now) {
			continue
		}
		if cfg.Category != "" && t.Category != cfg.Category {
			continue
		}
		out = append(out, t)
	}
	s.sortTasks(out, cfg.Sort)
	return out
}

func matchesFilter(t domain.Task, f domain.Filter, now time.Time) bool {
	switch f {
	case domain.FilterAll, "":
		return true
	case domain.FilterCompleted:
		return t.Completed
	case domain.FilterPending:
		return !t.Completed
	case domain.FilterRecent:
		return t.CreatedAt.After(now.Add(-24 * time.Hour))
	case domain.FilterDueToday:
		due, ok := t.Due()
		return ok && domain.SameDay(due, now)
	case domain.FilterOverdue:
		due, ok := t.Due()
		return ok && !t.Completed && due.Before(domain.StartOfDay(now))
	case domain.FilterNoDueDate:
		return t.DueDate == nil
	}
	return false
}

// sortTasks orders the filtered set in place. All sorts are stable; the
// grouped sorts put incomplete work first and break ties newest-first.
func (s *Store) sortTasks(tasks []domain.Task, key domain.SortKey) {
	newestFirst := func(a, b domain.Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	var less func(a, b domain.Task) bool
	switch key {
	case domain.SortCreatedAsc:
		less = func(a, b domain.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.SortAlphabetical:
		less = func(a, b domain.Task) bool { return s.collator.CompareString(a.Text, b.Text) < 0 }
	case domain.SortCompletion:
		less = func(a, b domain.Task) bool {
			if a.Completed != b.Completed {
				return !a.Completed
			}
			return newestFirst(a, b)
		}
	case domain.SortPriority:
		less = func(a, b domain.Task) bool {
			if a.Completed != b.Completed {
				return !a.Completed
			}
			if ar, br := a.Priority.Rank(), b.Priority.Rank(); ar != br {
				return ar < br
			}
			return newestFirst(a, b)
		}
	case domain.SortDueDate:
		less = func(a, b domain.Task) bool {
			if a.Completed != b.Completed {
				return !a.Completed
			}
			ad, aok := a.Due()
			bd, bok := b.Due()
			if aok != bok {
				return aok
			}
			if aok && !ad.Equal(bd) {
				return ad.Before(bd)
			}
			return newestFirst(a, b)
		}
	default: // created-desc
		less = newestFirst
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}
