package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskdeck/internal/db"
)

func TestPath(t *testing.T) {
	got := db.Path("/some/workspace")
	want := filepath.Join("/some/workspace", ".taskdeck", "taskdeck.db")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
	if db.Path("") != filepath.Join(".", ".taskdeck", "taskdeck.db") {
		t.Fatalf("empty workspace should resolve to the current directory")
	}
}

func TestOpenCreatesWorkspaceAndFile(t *testing.T) {
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(db.Path(workspace)); err != nil {
		t.Fatalf("database file not created at %s: %v", db.Path(workspace), err)
	}
}
