package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/repo"
)

// Store is the sqlite-backed implementation of repo.Store. Timestamps
// are persisted as RFC3339 strings so the original offset survives the
// round trip.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

const taskColumns = "id, title, category_id, start_at, end_at, completed, color, icon, reminder_at"

func (s *Store) FetchAll(ctx context.Context) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY start_at")
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) FetchByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id.String())
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("%w: %s", repo.ErrTaskNotFound, id)
	}
	return task, err
}

func (s *Store) Insert(ctx context.Context, task model.Task) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID.String(), task.Title, nullableID(task.CategoryID),
		formatTime(task.StartTime), formatTime(task.EndTime),
		boolToInt(task.IsCompleted), task.Color, task.Icon,
		nullableTime(task.ReminderAt))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, task model.Task) error {
	result, err := s.DB.ExecContext(ctx,
		"UPDATE tasks SET title = ?, category_id = ?, start_at = ?, end_at = ?, completed = ?, color = ?, icon = ?, reminder_at = ? WHERE id = ?",
		task.Title, nullableID(task.CategoryID),
		formatTime(task.StartTime), formatTime(task.EndTime),
		boolToInt(task.IsCompleted), task.Color, task.Icon,
		nullableTime(task.ReminderAt), task.ID.String())
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return checkAffected(result, task.ID)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return checkAffected(result, id)
}

func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, name, icon, color FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) CategoryByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, name, icon, color FROM categories WHERE id = ?", id.String())
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("%w: %s", repo.ErrCategoryNotFound, id)
	}
	return category, err
}

func (s *Store) CategoryByName(ctx context.Context, name string) (model.Category, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, name, icon, color FROM categories WHERE name = ?", name)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("%w: %s", repo.ErrCategoryNotFound, name)
	}
	return category, err
}

func (s *Store) InsertCategory(ctx context.Context, category model.Category) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon, color) VALUES (?, ?, ?, ?)",
		category.ID.String(), category.Name, category.Icon, category.Color)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		id, title, color, icon string
		categoryID, reminderAt sql.NullString
		startAt, endAt         string
		completed              int
	)
	if err := row.Scan(&id, &title, &categoryID, &startAt, &endAt, &completed, &color, &icon, &reminderAt); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		Title:       title,
		IsCompleted: completed != 0,
		Color:       color,
		Icon:        icon,
	}

	var err error
	if task.ID, err = uuid.Parse(id); err != nil {
		return model.Task{}, fmt.Errorf("parse task id: %w", err)
	}
	if categoryID.Valid {
		if task.CategoryID, err = uuid.Parse(categoryID.String); err != nil {
			return model.Task{}, fmt.Errorf("parse category id: %w", err)
		}
	}
	if task.StartTime, err = parseTime(startAt); err != nil {
		return model.Task{}, err
	}
	if task.EndTime, err = parseTime(endAt); err != nil {
		return model.Task{}, err
	}
	if reminderAt.Valid {
		at, err := parseTime(reminderAt.String)
		if err != nil {
			return model.Task{}, err
		}
		task.ReminderAt = &at
	}

	return task, nil
}

func scanCategory(row scanner) (model.Category, error) {
	var id, name, icon, color string
	if err := row.Scan(&id, &name, &icon, &color); err != nil {
		return model.Category{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Category{}, fmt.Errorf("parse category id: %w", err)
	}
	return model.Category{ID: parsed, Name: name, Icon: icon, Color: color}, nil
}

func checkAffected(result sql.Result, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", repo.ErrTaskNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
