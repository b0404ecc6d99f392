package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/domain"
)

// Snapshot is a point-in-time export of the whole collection. Writing it
// somewhere (a download, a file) is the presentation layer's job.
type Snapshot struct {
	SnapshotID  string        `json:"snapshotId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Tasks       []domain.Task `json:"tasks"`
}

// Export snapshots the full collection, unfiltered and unsorted beyond
// storage order.
func (s *Store) Export() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]domain.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return Snapshot{
		SnapshotID:  uuid.New().String(),
		GeneratedAt: s.now(),
		Tasks:       tasks,
	}
}

// ExportJSON serializes the snapshot for download.
func (s *Store) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.Export(), "", "  ")
}
