package store_test

import (
	"testing"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/store"
)

func TestStatsEmpty(t *testing.T) {
	env := newTestEnv(t)
	st := env.Store.Stats()
	if st.Total != 0 || st.Pending != 0 || st.Completed != 0 {
		t.Fatalf("expected zero stats, got %+v", st)
	}
	if len(st.PendingByPriority) != 0 || len(st.ByCategory) != 0 {
		t.Fatalf("expected empty breakdowns, got %+v", st)
	}
}

func TestStatsBuckets(t *testing.T) {
	env := newTestEnv(t)
	yesterday := base.AddDate(0, 0, -1).Format(domain.DueDateLayout)
	today := base.Format(domain.DueDateLayout)
	nextWeek := base.AddDate(0, 0, 7).Format(domain.DueDateLayout)

	mustAdd(t, env.Store, "overdue high", store.AddOptions{Priority: "high", Category: "work", DueDate: yesterday})
	mustAdd(t, env.Store, "due today", store.AddOptions{Category: "work", DueDate: today})
	mustAdd(t, env.Store, "upcoming low", store.AddOptions{Priority: "low", DueDate: nextWeek})
	mustAdd(t, env.Store, "undated", store.AddOptions{Category: "health"})
	done := mustAdd(t, env.Store, "finished", store.AddOptions{Category: "work", DueDate: yesterday})
	env.Store.Toggle(done.ID)

	env.Store.Now = func() time.Time { return base }
	st := env.Store.Stats()

	if st.Total != 5 || st.Pending != 4 || st.Completed != 1 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if st.PendingByPriority[domain.PriorityHigh] != 1 ||
		st.PendingByPriority[domain.PriorityMedium] != 2 ||
		st.PendingByPriority[domain.PriorityLow] != 1 {
		t.Fatalf("unexpected priority breakdown: %+v", st.PendingByPriority)
	}
	if st.ByCategory[domain.CategoryWork] != 3 || st.ByCategory[domain.CategoryHealth] != 1 {
		t.Fatalf("unexpected category breakdown: %+v", st.ByCategory)
	}
	if st.Overdue != 1 || st.DueToday != 1 || st.Upcoming != 1 || st.NoDueDate != 1 {
		t.Fatalf("unexpected due buckets: %+v", st)
	}
	if st.CreatedToday != 5 || st.CompletedToday != 1 {
		t.Fatalf("unexpected today counters: %+v", st)
	}
}

func TestStatsCompletedTasksLeaveDueBuckets(t *testing.T) {
	env := newTestEnv(t)
	yesterday := base.AddDate(0, 0, -1).Format(domain.DueDateLayout)
	task := mustAdd(t, env.Store, "was overdue", store.AddOptions{DueDate: yesterday})

	env.Store.Now = func() time.Time { return base }
	if st := env.Store.Stats(); st.Overdue != 1 {
		t.Fatalf("expected 1 overdue, got %+v", st)
	}
	env.Store.Toggle(task.ID)
	if st := env.Store.Stats(); st.Overdue != 0 {
		t.Fatalf("completed task still counted overdue: %+v", st)
	}
}

func TestExportSnapshot(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "a", store.AddOptions{})
	mustAdd(t, env.Store, "b", store.AddOptions{})

	snap := env.Store.Export()
	if snap.SnapshotID == "" {
		t.Fatalf("expected a snapshot id")
	}
	if snap.GeneratedAt.IsZero() {
		t.Fatalf("expected a generation timestamp")
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}
	other := env.Store.Export()
	if other.SnapshotID == snap.SnapshotID {
		t.Fatalf("snapshot ids should be unique")
	}
}
