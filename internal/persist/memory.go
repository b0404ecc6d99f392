package persist

import "taskdeck/internal/domain"

// Memory is an in-memory Store for tests. SaveErr, when set, makes every
// Save fail without touching the held state.
type Memory struct {
	Tasks   []domain.Task
	Counter int64
	SaveErr error
	Saves   int
}

func NewMemory() *Memory {
	return &Memory{Counter: 1}
}

func (m *Memory) Load() ([]domain.Task, int64, error) {
	counter := m.Counter
	if counter < 1 {
		counter = 1
	}
	return Normalize(copyTasks(m.Tasks)), counter, nil
}

func (m *Memory) Save(tasks []domain.Task, counter int64) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tasks = copyTasks(tasks)
	m.Counter = counter
	m.Saves++
	return nil
}

func (m *Memory) Close() error { return nil }

func copyTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	copy(out, in)
	for i := range out {
		if out[i].CompletedAt != nil {
			ts := *out[i].CompletedAt
			out[i].CompletedAt = &ts
		}
		if out[i].DueDate != nil {
			d := *out[i].DueDate
			out[i].DueDate = &d
		}
	}
	return out
}
