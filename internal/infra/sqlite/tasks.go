package sqlite

import (
	"database/sql"
	"time"

	"github.com/veloce-app/veloce/internal/domain"
)

// ─── Task Repository ────────────────────────────────────────────────────────

// InsertTask creates a new task record.
func (d *DB) InsertTask(t domain.Task) error {
	_, err := d.db.Exec(
		`INSERT INTO tasks (id, title, priority, created_at, due_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Priority), t.CreatedAt.Unix(),
		nullableUnix(t.DueAt), nullableUnix(t.CompletedAt),
	)
	return err
}

// GetTask retrieves a task by ID. Returns domain.ErrTaskNotFound if absent.
func (d *DB) GetTask(id string) (*domain.Task, error) {
	row := d.db.QueryRow(
		`SELECT id, title, priority, created_at, due_at, completed_at
		 FROM tasks WHERE id = ?`, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

// ListOpenTasks returns incomplete tasks, soonest due first.
func (d *DB) ListOpenTasks() ([]domain.Task, error) {
	rows, err := d.db.Query(
		`SELECT id, title, priority, created_at, due_at, completed_at
		 FROM tasks WHERE completed_at IS NULL
		 ORDER BY COALESCE(due_at, created_at) ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListCompletedTasks returns completed tasks, newest first.
func (d *DB) ListCompletedTasks(limit int) ([]domain.Task, error) {
	rows, err := d.db.Query(
		`SELECT id, title, priority, created_at, due_at, completed_at
		 FROM tasks WHERE completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// CompleteTask stamps a task as completed. Returns domain.ErrTaskNotFound
// for unknown ids and domain.ErrTaskAlreadyCompleted for repeat calls.
func (d *DB) CompleteTask(id string, at time.Time) error {
	result, err := d.db.Exec(
		`UPDATE tasks SET completed_at = ? WHERE id = ? AND completed_at IS NULL`,
		at.Unix(), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		if _, err := d.GetTask(id); err != nil {
			return err
		}
		return domain.ErrTaskAlreadyCompleted
	}
	return nil
}

// DeleteTask removes a task record.
func (d *DB) DeleteTask(id string) error {
	result, err := d.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// CountCompleted returns the lifetime number of completed tasks.
func (d *DB) CountCompleted() (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE completed_at IS NOT NULL`,
	).Scan(&count)
	return count, err
}

// CountCompletedBetween returns completions in [from, to).
func (d *DB) CountCompletedBetween(from, to time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE completed_at >= ? AND completed_at < ?`,
		from.Unix(), to.Unix(),
	).Scan(&count)
	return count, err
}

// LastCompletionAt returns the most recent completion time, or the zero
// time if nothing has been completed yet.
func (d *DB) LastCompletionAt() (time.Time, error) {
	var ts sql.NullInt64
	err := d.db.QueryRow(
		`SELECT MAX(completed_at) FROM tasks WHERE completed_at IS NOT NULL`,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0), nil
}

// ─── Scanners ───────────────────────────────────────────────────────────────

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var createdAt int64
	var dueAt, completedAt sql.NullInt64

	err := s.Scan(&t.ID, &t.Title, &t.Priority, &createdAt, &dueAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	if dueAt.Valid {
		t.DueAt = time.Unix(dueAt.Int64, 0)
	}
	if completedAt.Valid {
		t.CompletedAt = time.Unix(completedAt.Int64, 0)
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
