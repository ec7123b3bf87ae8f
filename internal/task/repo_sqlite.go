package task

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sashankbanda/Focusly/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'Low',
	tag TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMP NULL,
	completion_date TIMESTAMP NULL,
	reminder INTEGER NOT NULL DEFAULT 0,
	reminder_lead_minutes INTEGER NOT NULL DEFAULT 0,
	repeat_daily INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at DESC);
`

type sqliteStore struct {
	db *sql.DB
}

// SQLiteRepo is a durable task repository on a local sqlite database.
// Like FileRepo it is user-scoped via ForUser.
type SQLiteRepo struct {
	store  *sqliteStore
	userID string

	Now func() time.Time
}

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteRepo{
		store:  &sqliteStore{db: db},
		userID: "default",
		Now:    time.Now,
	}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.store.db.Close()
}

func (r *SQLiteRepo) ForUser(userID string) *SQLiteRepo {
	if userID == "" {
		userID = "default"
	}
	return &SQLiteRepo{store: r.store, userID: userID, Now: r.Now}
}

const taskColumns = `id, title, completed, priority, tag, due_date, completion_date,
	reminder, reminder_lead_minutes, repeat_daily, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var (
		t              model.Task
		completed      int
		reminder       int
		repeatDaily    int
		dueDate        sql.NullTime
		completionDate sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Text, &completed, &t.Priority, &t.Tag,
		&dueDate, &completionDate, &reminder, &t.ReminderLeadTime,
		&repeatDaily, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Completed = completed != 0
	t.ReminderEnabled = reminder != 0
	t.RepeatDaily = repeatDaily != 0
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if completionDate.Valid {
		c := completionDate.Time
		t.CompletionDate = &c
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := validateNew(&t); err != nil {
		return model.Task{}, err
	}

	now := r.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, completed, priority, tag,
			due_date, completion_date, reminder, reminder_lead_minutes,
			repeat_daily, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, r.userID, t.Text, boolInt(t.Completed), t.Priority, t.Tag,
		nullTime(t.DueDate), nullTime(t.CompletionDate),
		boolInt(t.ReminderEnabled), t.ReminderLeadTime,
		boolInt(t.RepeatDaily), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id, r.userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error) {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id, r.userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("select task: %w", err)
	}

	if err := applyPatch(&t, p, r.Now()); err != nil {
		return model.Task{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, completed = ?, priority = ?, tag = ?,
			due_date = ?, completion_date = ?, reminder = ?,
			reminder_lead_minutes = ?, repeat_daily = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Text, boolInt(t.Completed), t.Priority, t.Tag,
		nullTime(t.DueDate), nullTime(t.CompletionDate),
		boolInt(t.ReminderEnabled), t.ReminderLeadTime,
		boolInt(t.RepeatDaily), t.UpdatedAt, id, r.userID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC`,
		r.userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Delete(ctx context.Context, id model.TaskID) error {
	res, err := r.store.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, r.userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) ClearHistory(ctx context.Context) (int, error) {
	res, err := r.store.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND completed = 1 AND repeat_daily = 0`,
		r.userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
