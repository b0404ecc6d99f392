package store_test

import (
	"testing"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/store"
)

func texts(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func assertOrder(t *testing.T, got []domain.Task, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks %v, got %v", len(want), want, texts(got))
	}
	for i, text := range want {
		if got[i].Text != text {
			t.Fatalf("position %d: expected %q, got %v", i, text, texts(got))
		}
	}
}

func TestViewDefaultIsAllNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "first", store.AddOptions{})
	mustAdd(t, env.Store, "second", store.AddOptions{})
	mustAdd(t, env.Store, "third", store.AddOptions{})

	cfg := env.Store.ViewConfig()
	if cfg.Filter != domain.FilterAll || cfg.Sort != domain.SortCreatedDesc {
		t.Fatalf("unexpected default view config: %+v", cfg)
	}
	assertOrder(t, env.Store.View(), "third", "second", "first")
}

func TestViewCompletedAndPendingFilters(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "open", store.AddOptions{})
	done := mustAdd(t, env.Store, "done", store.AddOptions{})
	env.Store.Toggle(done.ID)

	if err := env.Store.SetFilter("completed"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "done")

	if err := env.Store.SetFilter("pending"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "open")
}

func TestViewSearchIsCaseInsensitiveSubstring(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "Buy MILK", store.AddOptions{})
	mustAdd(t, env.Store, "Write report", store.AddOptions{})

	env.Store.SetSearchQuery("  milk ")
	assertOrder(t, env.Store.View(), "Buy MILK")

	env.Store.SetSearchQuery("zzz")
	if got := env.Store.View(); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", texts(got))
	}

	env.Store.SetSearchQuery("")
	if got := env.Store.View(); len(got) != 2 {
		t.Fatalf("expected cleared query to match all, got %v", texts(got))
	}
}

func TestViewRejectsUnknownNames(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Store.SetFilter("urgent"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
	if err := env.Store.SetSort("random"); err == nil {
		t.Fatalf("expected error for unknown sort key")
	}
	if err := env.Store.SetFilter("category:garden"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	cfg := env.Store.ViewConfig()
	if cfg.Filter != domain.FilterAll || cfg.Sort != domain.SortCreatedDesc {
		t.Fatalf("rejected names changed the view config: %+v", cfg)
	}
}

func TestViewCategoryScopeIsANDedWithFilter(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "inbox", store.AddOptions{Category: "work"})
	doneWork := mustAdd(t, env.Store, "review", store.AddOptions{Category: "work"})
	mustAdd(t, env.Store, "groceries", store.AddOptions{Category: "shopping"})
	env.Store.Toggle(doneWork.ID)

	if err := env.Store.SetFilter("category:work"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "review", "inbox")

	// the category scope survives a filter change and narrows it
	if err := env.Store.SetFilter("pending"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "inbox")
}

func TestViewRecentFilter(t *testing.T) {
	env := newTestEnv(t)
	env.Store.Now = func() time.Time { return base.Add(-30 * time.Hour) }
	mustAdd(t, env.Store, "stale", store.AddOptions{})
	env.Store.Now = func() time.Time { return base.Add(-time.Hour) }
	mustAdd(t, env.Store, "fresh", store.AddOptions{})

	env.Store.Now = func() time.Time { return base }
	if err := env.Store.SetFilter("recent"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "fresh")
}

func TestViewDueDateFilters(t *testing.T) {
	env := newTestEnv(t)
	yesterday := base.AddDate(0, 0, -1).Format(domain.DueDateLayout)
	today := base.Format(domain.DueDateLayout)
	tomorrow := base.AddDate(0, 0, 1).Format(domain.DueDateLayout)

	mustAdd(t, env.Store, "late", store.AddOptions{DueDate: yesterday})
	lateDone := mustAdd(t, env.Store, "late but done", store.AddOptions{DueDate: yesterday})
	mustAdd(t, env.Store, "today", store.AddOptions{DueDate: today})
	mustAdd(t, env.Store, "soon", store.AddOptions{DueDate: tomorrow})
	mustAdd(t, env.Store, "whenever", store.AddOptions{})
	env.Store.Toggle(lateDone.ID)

	env.Store.Now = func() time.Time { return base }

	if err := env.Store.SetFilter("overdue"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "late")

	if err := env.Store.SetFilter("due-today"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "today")

	if err := env.Store.SetFilter("no-due-date"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "whenever")
}

func TestSortPriorityReordersAfterToggle(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "Buy milk", store.AddOptions{Priority: "high", Category: "shopping"})
	mustAdd(t, env.Store, "Write report", store.AddOptions{Priority: "low"})
	if err := env.Store.SetSort("priority"); err != nil {
		t.Fatal(err)
	}
	view := env.Store.View()
	assertOrder(t, view, "Buy milk", "Write report")

	// completing the high-priority task pushes it below pending work
	env.Store.Toggle(view[0].ID)
	assertOrder(t, env.Store.View(), "Write report", "Buy milk")
}

func TestSortAlphabetical(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "cherry", store.AddOptions{})
	mustAdd(t, env.Store, "Apple", store.AddOptions{})
	mustAdd(t, env.Store, "banana", store.AddOptions{})
	if err := env.Store.SetSort("alphabetical"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "Apple", "banana", "cherry")
}

func TestSortCompletionGroupsPendingFirst(t *testing.T) {
	env := newTestEnv(t)
	oldDone := mustAdd(t, env.Store, "old done", store.AddOptions{})
	mustAdd(t, env.Store, "old open", store.AddOptions{})
	newDone := mustAdd(t, env.Store, "new done", store.AddOptions{})
	mustAdd(t, env.Store, "new open", store.AddOptions{})
	env.Store.Toggle(oldDone.ID)
	env.Store.Toggle(newDone.ID)

	if err := env.Store.SetSort("completion"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "new open", "old open", "new done", "old done")
}

func TestSortDueDate(t *testing.T) {
	env := newTestEnv(t)
	near := base.AddDate(0, 0, 1).Format(domain.DueDateLayout)
	far := base.AddDate(0, 0, 9).Format(domain.DueDateLayout)

	mustAdd(t, env.Store, "far", store.AddOptions{DueDate: far})
	mustAdd(t, env.Store, "undated", store.AddOptions{})
	mustAdd(t, env.Store, "near", store.AddOptions{DueDate: near})
	done := mustAdd(t, env.Store, "done near", store.AddOptions{DueDate: near})
	env.Store.Toggle(done.ID)

	if err := env.Store.SetSort("due-date"); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, env.Store.View(), "near", "far", "undated", "done near")
}

func TestViewWithLeavesAppliedConfigAlone(t *testing.T) {
	env := newTestEnv(t)
	mustAdd(t, env.Store, "open", store.AddOptions{})
	done := mustAdd(t, env.Store, "done", store.AddOptions{})
	env.Store.Toggle(done.ID)

	got, err := env.Store.ViewWith(domain.ViewConfig{Filter: domain.FilterCompleted})
	if err != nil {
		t.Fatal(err)
	}
	assertOrder(t, got, "done")

	if cfg := env.Store.ViewConfig(); cfg.Filter != domain.FilterAll {
		t.Fatalf("ViewWith mutated the applied config: %+v", cfg)
	}

	if _, err := env.Store.ViewWith(domain.ViewConfig{Sort: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown sort key")
	}
}

func TestViewReturnsCopies(t *testing.T) {
	env := newTestEnv(t)
	task := mustAdd(t, env.Store, "immutable", store.AddOptions{})
	view := env.Store.View()
	view[0].Text = "scribbled"
	got, _ := env.Store.Get(task.ID)
	if got.Text != "immutable" {
		t.Fatalf("view aliases the collection: %q", got.Text)
	}
}
