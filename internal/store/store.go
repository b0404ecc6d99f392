// Package store is the task-state engine: it owns the in-memory task
// collection and the id counter, derives the filtered/sorted/searched
// views and statistics, and writes state back through a persist.Store
// after every successful mutation.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskdeck/internal/domain"
	"taskdeck/internal/persist"
)

// Store serializes all operations behind a mutex: every call runs to
// completion before the next begins, so mutation, view derivation and
// persistence stay consistent under the HTTP surface.
type Store struct {
	mu      sync.Mutex
	tasks   []domain.Task
	counter int64
	view    domain.ViewConfig

	storage  persist.Store
	log      *logrus.Logger
	collator *collate.Collator

	// Now is the store clock; tests pin it.
	Now func() time.Time
}

// New loads state from storage once and returns a ready store. A failed
// load is reported at error level and the store starts empty; the session
// continues in memory either way. The counter is clamped to max(id)+1 so
// it never regresses, even against a stale or damaged counter key.
func New(storage persist.Store, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}
	s := &Store{
		storage:  storage,
		log:      log,
		collator: collate.New(language.Und),
		view:     domain.DefaultViewConfig(),
		Now:      time.Now,
	}
	tasks, counter, err := storage.Load()
	if err != nil {
		log.WithError(err).Error("load task state; starting empty")
		tasks, counter = nil, 1
	}
	s.tasks = tasks
	s.counter = counter
	for _, t := range s.tasks {
		if t.ID >= s.counter {
			s.counter = t.ID + 1
		}
	}
	return s
}

// Close releases the storage adapter.
func (s *Store) Close() error {
	return s.storage.Close()
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// persistLocked writes both keys back. Failures are logged and wrapped;
// the in-memory state stays mutated.
func (s *Store) persistLocked(op string) error {
	if err := s.storage.Save(s.tasks, s.counter); err != nil {
		s.log.WithError(err).WithField("op", op).Error("persist task state")
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddOptions carries the optional attributes of a new task.
type AddOptions struct {
	Priority domain.Priority
	Category domain.Category
	DueDate  string
}

// Add creates a task from trimmed text, assigns the next id and persists.
// Empty text is a ValidationError and mutates nothing.
func (s *Store) Add(text string, opts AddOptions) (domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Task{}, &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	priority := opts.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, &ValidationError{Field: "priority", Reason: "must be high, medium or low"}
	}
	if !opts.Category.Valid() {
		return domain.Task{}, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	var due *string
	if opts.DueDate != "" {
		d, err := domain.ParseDueDate(opts.DueDate)
		if err != nil {
			return domain.Task{}, &ValidationError{Field: "dueDate", Reason: "want " + domain.DueDateLayout}
		}
		due = &d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Task{
		ID:        s.counter,
		Text:      text,
		CreatedAt: s.now(),
		Priority:  priority,
		Category:  opts.Category,
		DueDate:   due,
	}
	s.counter++
	s.tasks = append(s.tasks, t)
	return t, s.persistLocked("add")
}

// Delete removes the task if present; absence is a silent no-op and does
// not trigger a write.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.persistLocked("delete")
}

// Toggle flips completion. CompletedAt is set to the store clock on
// pending->completed and cleared on the way back. The bool reports
// whether a task was found.
func (s *Store) Toggle(id int64) (domain.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Task{}, false, nil
	}
	t := &s.tasks[i]
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
	} else {
		t.Completed = true
		ts := s.now()
		t.CompletedAt = &ts
	}
	return *t, true, s.persistLocked("toggle")
}

// Edit replaces the task text with the trimmed value. Empty text is a
// ValidationError; a missing id is a silent no-op.
func (s *Store) Edit(id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Text = text
	return s.persistLocked("edit")
}

// SetPriority reassigns the task's priority.
func (s *Store) SetPriority(id int64, p domain.Priority) error {
	if !p.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be high, medium or low"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Priority = p
	return s.persistLocked("set-priority")
}

// SetCategory reassigns the task's category; the empty category clears it.
func (s *Store) SetCategory(id int64, c domain.Category) error {
	if !c.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Category = c
	return s.persistLocked("set-category")
}

// SetDueDate reassigns the task's due date; empty clears it.
func (s *Store) SetDueDate(id int64, due string) error {
	var parsed *string
	if strings.TrimSpace(due) != "" {
		d, err := domain.ParseDueDate(due)
		if err != nil {
			return &ValidationError{Field: "dueDate", Reason: "want " + domain.DueDateLayout}
		}
		parsed = &d
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].DueDate = parsed
	return s.persistLocked("set-due-date")
}

// BulkComplete marks every currently-pending task among ids completed and
// returns how many changed. Zero changes skip the write.
func (s *Store) BulkComplete(ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	ts := s.now()
	for _, id := range ids {
		i := s.indexLocked(id)
		if i < 0 || s.tasks[i].Completed {
			continue
		}
		s.tasks[i].Completed = true
		completedAt := ts
		s.tasks[i].CompletedAt = &completedAt
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.persistLocked("bulk-complete")
}

// BulkDeleteCompleted removes every completed task and returns the count.
func (s *Store) BulkDeleteCompleted() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked("bulk-delete-completed")
}

// ClearAll empties the collection. The id counter is deliberately kept:
// ids are never reused.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	s.tasks = nil
	return s.persistLocked("clear-all")
}

// Get returns a task by id.
func (s *Store) Get(id int64) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Task{}, false
	}
	return s.tasks[i], true
}

// Len is the total task count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
