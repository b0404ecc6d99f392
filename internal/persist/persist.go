// Package persist holds the storage contract the task store persists
// through: a synchronous blob store with two string keys, one for the
// serialized task collection and one for the id counter.
package persist

import (
	"taskdeck/internal/domain"
)

const (
	KeyTasks   = "tasks"
	KeyCounter = "counter"
)

// Store loads and saves the full task collection plus the id counter.
// Load is lenient: absent or unparseable state degrades to an empty
// collection and counter 1 instead of failing, so older or damaged saved
// data never blocks startup. Save replaces both keys.
type Store interface {
	Load() ([]domain.Task, int64, error)
	Save(tasks []domain.Task, counter int64) error
	Close() error
}

// Normalize fills variant fields that older saved records predate:
// a record without a priority gets the medium default, and the
// completed/completedAt invariant is restored if a record drifted.
func Normalize(tasks []domain.Task) []domain.Task {
	for i := range tasks {
		if !tasks[i].Priority.Valid() || tasks[i].Priority == "" {
			tasks[i].Priority = domain.PriorityMedium
		}
		if !tasks[i].Category.Valid() {
			tasks[i].Category = ""
		}
		if !tasks[i].Completed {
			tasks[i].CompletedAt = nil
		}
	}
	return tasks
}
