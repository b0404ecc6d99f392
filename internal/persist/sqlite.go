package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"taskdeck/internal/db"
	"taskdeck/internal/domain"
	"taskdeck/internal/migrate"
	"taskdeck/internal/repo"
)

// SQLite keeps both keys as rows of the workspace kv table: a
// synchronous string-to-string store surviving restarts.
type SQLite struct {
	conn *sql.DB
	kv   repo.Repo
}

// OpenSQLite opens (and migrates) the workspace database.
func OpenSQLite(workspace string) (*SQLite, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{conn: conn, kv: repo.Repo{DB: conn}}, nil
}

func (s *SQLite) Load() ([]domain.Task, int64, error) {
	ctx := context.Background()

	var tasks []domain.Task
	raw, err := s.kv.Get(ctx, KeyTasks)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// first run
	case err != nil:
		return nil, 1, err
	default:
		if jsonErr := json.Unmarshal([]byte(raw), &tasks); jsonErr != nil {
			tasks = nil
		}
	}

	counter := int64(1)
	rawCounter, err := s.kv.Get(ctx, KeyCounter)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		return nil, 1, err
	default:
		if v, parseErr := strconv.ParseInt(rawCounter, 10, 64); parseErr == nil && v >= 1 {
			counter = v
		}
	}

	return Normalize(tasks), counter, nil
}

func (s *SQLite) Save(tasks []domain.Task, counter int64) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	blob, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	ctx := context.Background()
	if err := s.kv.Put(ctx, KeyTasks, string(blob)); err != nil {
		return fmt.Errorf("write %s: %w", KeyTasks, err)
	}
	if err := s.kv.Put(ctx, KeyCounter, strconv.FormatInt(counter, 10)); err != nil {
		return fmt.Errorf("write %s: %w", KeyCounter, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}
