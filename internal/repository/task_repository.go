package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamtask/internal/models"

	"github.com/jmoiron/sqlx"
)

const taskSelect = `
SELECT t.id, t.title, t.description, t.priority, t.status, t.created_by, t.assigned_to,
       c.name AS creator_name, a.name AS assignee_name, t.created_at, t.updated_at
FROM tasks t
JOIN users c ON c.id = t.created_by
LEFT JOIN users a ON a.id = t.assigned_to`

const taskOrder = ` ORDER BY t.created_at DESC, t.id DESC`

type TaskRepository struct {
	db  sqlx.ExtContext
	now func() time.Time
}

// Create inserts a task. Empty priority and status default to Medium and Todo.
func (r *TaskRepository) Create(ctx context.Context, t models.NewTask) (*models.Task, error) {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	now := r.now()

	const q = `INSERT INTO tasks (title, description, priority, status, created_by, assigned_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Title, t.Description, t.Priority, t.Status, t.CreatedBy, t.AssignedTo, now, now)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	if err := sqlx.GetContext(ctx, r.db, &t, taskSelect+` WHERE t.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// FindByUser pages through tasks the user created or is assigned to, newest first.
func (r *TaskRepository) FindByUser(ctx context.Context, userID int64, page, limit int) (*models.TaskPage, error) {
	const where = ` WHERE t.created_by = ? OR t.assigned_to = ?`
	return r.page(ctx, where, []interface{}{userID, userID}, page, limit)
}

// GetAll pages through every task, newest first.
func (r *TaskRepository) GetAll(ctx context.Context, page, limit int) (*models.TaskPage, error) {
	return r.page(ctx, "", nil, page, limit)
}

func (r *TaskRepository) page(ctx context.Context, where string, args []interface{}, page, limit int) (*models.TaskPage, error) {
	if page < 1 {
		page = models.DefaultPage
	}
	if limit < 1 {
		limit = models.DefaultLimit
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM tasks t`+where, args...); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	tasks := []models.Task{}
	q := taskSelect + where + taskOrder + ` LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), limit, models.Offset(page, limit))
	if err := sqlx.SelectContext(ctx, r.db, &tasks, q, pageArgs...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &models.TaskPage{
		Tasks:      tasks,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: models.TotalPages(total, limit),
	}, nil
}

// Update writes only the provided fields and always touches updated_at.
// The returned count is 0 when no task has that id.
func (r *TaskRepository) Update(ctx context.Context, id int64, u models.TaskUpdate) (int64, error) {
	var (
		sets []string
		args []interface{}
	)
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.AssignedTo.Set {
		sets = append(sets, "assigned_to = ?")
		args = append(args, u.AssignedTo.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	q := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	return execAffected(ctx, r.db, "update task", q, args...)
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "delete task", `DELETE FROM tasks WHERE id = ?`, id)
}

func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "tasks")
}
