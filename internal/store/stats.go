package store

import "taskdeck/internal/domain"

// Stats derives aggregate counts at evaluation time. "Today" means
// calendar-day equality in the local timezone; the due-date buckets and
// the priority breakdown consider pending tasks only.
func (s *Store) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := domain.StartOfDay(now)
	st := domain.Stats{
		PendingByPriority: map[domain.Priority]int{},
		ByCategory:        map[domain.Category]int{},
	}
	for _, t := range s.tasks {
		st.Total++
		if t.Completed {
			st.Completed++
			if t.CompletedAt != nil && domain.SameDay(*t.CompletedAt, now) {
				st.CompletedToday++
			}
		} else {
			st.Pending++
			st.PendingByPriority[t.Priority]++
			if due, ok := t.Due(); ok {
				switch {
				case domain.SameDay(due, now):
					st.DueToday++
				case due.Before(today):
					st.Overdue++
				default:
					st.Upcoming++
				}
			} else {
				st.NoDueDate++
			}
		}
		if t.Category != "" {
			st.ByCategory[t.Category]++
		}
		if domain.SameDay(t.CreatedAt, now) {
			st.CreatedToday++
		}
	}
	return st
}
