package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Joseda-hg/mindtask/internal/emotion"
	"github.com/Joseda-hg/mindtask/internal/model"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	DB         *sql.DB
	Classifier emotion.Classifier
	Now        func() time.Time

	validate *validator.Validate
	version  *atomic.Int64
}

type TaskInput struct {
	Title       string         `validate:"required,max=200"`
	Description string         `validate:"max=5000"`
	Category    string         `validate:"max=64"`
	Priority    string         `validate:"oneof=low medium high"`
	Status      string         `validate:"oneof=pending in-progress completed"`
	Emotion     string         `validate:"max=32"`
	DueAt       *time.Time
	Subtasks    []SubtaskInput `validate:"dive"`
}

type SubtaskInput struct {
	Title     string `validate:"required,max=200"`
	Completed bool
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:         db,
		Classifier: emotion.DefaultLexicon(),
		Now:        time.Now,
		validate:   validator.New(),
		version:    new(atomic.Int64),
	}
}

// WithClock returns a store sharing the same database that stamps records
// with now.
func (s *Store) WithClock(now func() time.Time) *Store {
	clone := *s
	clone.Now = now
	return &clone
}

func (s *Store) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	input = normalizeTaskInput(input)
	if err := s.validate.Struct(input); err != nil {
		return model.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	now := s.now()
	var taskID int64
	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (title, description, category, priority, status, emotion, due_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			input.Title, input.Description, input.Category, input.Priority, input.Status, input.Emotion,
			nullTime(input.DueAt), formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		taskID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return replaceSubtasks(ctx, tx, taskID, input.Subtasks)
	})
	if err != nil {
		return model.Task{}, err
	}

	created, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.addHistory(ctx, created.ID, "created", formatCreatedDetails(created)); err != nil {
		return model.Task{}, err
	}

	return created, nil
}

func (s *Store) UpdateTask(ctx context.Context, taskID int64, input TaskInput) (model.Task, error) {
	input = normalizeTaskInput(input)
	if err := s.validate.Struct(input); err != nil {
		return model.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	before, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}

	err = s.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET title = ?, description = ?, category = ?, priority = ?, status = ?, emotion = ?, due_at = ?, updated_at = ?
			 WHERE id = ?`,
			input.Title, input.Description, input.Category, input.Priority, input.Status, input.Emotion,
			nullTime(input.DueAt), formatTime(s.now()), taskID); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return replaceSubtasks(ctx, tx, taskID, input.Subtasks)
	})
	if err != nil {
		return model.Task{}, err
	}

	after, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.addHistory(ctx, taskID, "updated", formatTaskDiff(before, after)); err != nil {
		return model.Task{}, err
	}

	return after, nil
}

// SetTaskStatus changes only the status, keeping subtasks as they are.
func (s *Store) SetTaskStatus(ctx context.Context, taskID int64, status model.Status) (model.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	input := TaskInputFromTask(task)
	input.Status = string(status)
	return s.UpdateTask(ctx, taskID, input)
}

func (s *Store) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID int64, completed bool) (model.Task, error) {
	res, err := s.exec(ctx, "UPDATE subtasks SET completed = ? WHERE id = ? AND task_id = ?", completed, subtaskID, taskID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update subtask: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Task{}, fmt.Errorf("subtask %d of task %d: %w", subtaskID, taskID, ErrNotFound)
	}
	if _, err := s.exec(ctx, "UPDATE tasks SET updated_at = ? WHERE id = ?", formatTime(s.now()), taskID); err != nil {
		return model.Task{}, fmt.Errorf("touch task: %w", err)
	}
	return s.GetTask(ctx, taskID)
}

func (s *Store) DeleteTask(ctx context.Context, taskID int64) error {
	before, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.addHistory(ctx, taskID, "deleted", formatDeletedDetails(before)); err != nil {
		return err
	}

	return s.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM subtasks WHERE task_id = ?", taskID); err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", taskID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

func (s *Store) GetTask(ctx context.Context, taskID int64) (model.Task, error) {
	row := s.DB.QueryRowContext(ctx, taskSelect+" WHERE id = ?", taskID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return model.Task{}, err
	}

	subtasks, err := s.listSubtasks(ctx, []int64{taskID})
	if err != nil {
		return model.Task{}, err
	}
	task.Subtasks = subtasks[taskID]
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
	return task, nil
}

// ListTasks returns every task ordered by id. Filtering and ordering for
// display is done by the query engine.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, taskSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	var taskIDs []int64
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
		taskIDs = append(taskIDs, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subtasks, err := s.listSubtasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Subtasks = subtasks[tasks[i].ID]
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []model.Subtask{}
		}
	}
	return tasks, nil
}

func (s *Store) ListHistory(ctx context.Context, taskID int64) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_id, event_type, details, created_at FROM task_history WHERE task_id = ? ORDER BY id", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.EventType, &entry.Details, &createdAt); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (s *Store) addHistory(ctx context.Context, taskID int64, eventType, details string) error {
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO task_history (task_id, event_type, details, created_at) VALUES (?, ?, ?, ?)",
		taskID, eventType, details, formatTime(s.now())); err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

const taskSelect = `SELECT id, title, description, category, priority, status, emotion, due_at, created_at, updated_at FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var priority, status, createdAt, updatedAt string
	var dueAt sql.NullString
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Category, &priority, &status,
		&task.Emotion, &dueAt, &createdAt, &updatedAt); err != nil {
		return model.Task{}, err
	}
	task.Priority = model.Priority(priority)
	task.Status = model.Status(status)

	var err error
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Task{}, err
	}
	if dueAt.Valid {
		due, err := parseTime(dueAt.String)
		if err != nil {
			return model.Task{}, err
		}
		task.DueAt = &due
	}
	return task, nil
}

func (s *Store) listSubtasks(ctx context.Context, taskIDs []int64) (map[int64][]model.Subtask, error) {
	result := make(map[int64][]model.Subtask, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(taskIDs)), ",")
	args := make([]any, 0, len(taskIDs))
	for _, id := range taskIDs {
		args = append(args, id)
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_id, title, completed FROM subtasks WHERE task_id IN ("+placeholders+") ORDER BY task_id, position, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var subtask model.Subtask
		var taskID int64
		if err := rows.Scan(&subtask.ID, &taskID, &subtask.Title, &subtask.Completed); err != nil {
			return nil, err
		}
		result[taskID] = append(result[taskID], subtask)
	}
	return result, rows.Err()
}

func replaceSubtasks(ctx context.Context, tx *sql.Tx, taskID int64, subtasks []SubtaskInput) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM subtasks WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("clear subtasks: %w", err)
	}
	for i, subtask := range subtasks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO subtasks (task_id, title, completed, position) VALUES (?, ?, ?, ?)",
			taskID, subtask.Title, subtask.Completed, i); err != nil {
			return fmt.Errorf("insert subtask: %w", err)
		}
	}
	return nil
}

func TaskInputFromTask(task model.Task) TaskInput {
	input := TaskInput{
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Emotion:     task.Emotion,
		DueAt:       task.DueAt,
	}
	for _, subtask := range task.Subtasks {
		input.Subtasks = append(input.Subtasks, SubtaskInput{Title: subtask.Title, Completed: subtask.Completed})
	}
	return input
}

func normalizeTaskInput(input TaskInput) TaskInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	input.Priority = normalizePriority(input.Priority)
	input.Status = normalizeStatus(input.Status)
	input.Emotion = strings.ToLower(strings.TrimSpace(input.Emotion))
	for i := range input.Subtasks {
		input.Subtasks[i].Title = strings.TrimSpace(input.Subtasks[i].Title)
	}
	return input
}

func normalizeStatus(status string) string {
	value := strings.TrimSpace(strings.ToLower(status))
	if value == "" {
		return string(model.StatusPending)
	}
	return value
}

func normalizePriority(priority string) string {
	value := strings.TrimSpace(strings.ToLower(priority))
	if value == "" {
		return string(model.PriorityMedium)
	}
	return value
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// writeTx is withTx for writes to notes and tasks; it moves Version on commit.
func (s *Store) writeTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := s.withTx(ctx, fn); err != nil {
		return err
	}
	s.touch()
	return nil
}

// exec runs a single note or task write outside a transaction.
func (s *Store) exec(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	res, err := s.DB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	s.touch()
	return res, nil
}

func (s *Store) touch() {
	if s.version != nil {
		s.version.Add(1)
	}
}

// Version changes after every committed write to notes or tasks, including
// writes made through stores returned by WithClock.
func (s *Store) Version() int64 {
	if s.version == nil {
		return 0
	}
	return s.version.Load()
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Fixed-width so stored timestamps order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
