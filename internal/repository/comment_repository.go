package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teamtask/internal/models"

	"github.com/jmoiron/sqlx"
)

const commentSelect = `
SELECT c.id, c.task_id, c.user_id, u.name AS user_name, c.content, c.created_at, c.updated_at
FROM comments c
JOIN users u ON u.id = c.user_id`

type CommentRepository struct {
	db  sqlx.ExtContext
	now func() time.Time
}

func (r *CommentRepository) Create(ctx context.Context, taskID, userID int64, content string) (*models.Comment, error) {
	now := r.now()
	const q = `INSERT INTO comments (task_id, user_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, taskID, userID, content, now, now)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	if err := sqlx.GetContext(ctx, r.db, &c, commentSelect+` WHERE c.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// FindByTask returns the comments of a task, oldest first.
func (r *CommentRepository) FindByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	q := commentSelect + ` WHERE c.task_id = ? ORDER BY c.created_at ASC, c.id ASC`
	if err := sqlx.SelectContext(ctx, r.db, &out, q, taskID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (r *CommentRepository) Update(ctx context.Context, id int64, content string) (int64, error) {
	const q = `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`
	return execAffected(ctx, r.db, "update comment", q, content, r.now(), id)
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "delete comment", `DELETE FROM comments WHERE id = ?`, id)
}

// GetAll returns every comment with its task title, newest first.
func (r *CommentRepository) GetAll(ctx context.Context) ([]models.Comment, error) {
	out := []models.Comment{}
	const q = `
SELECT c.id, c.task_id, c.user_id, u.name AS user_name, c.content, c.created_at, c.updated_at,
       t.title AS task_title
FROM comments c
JOIN users u ON u.id = c.user_id
JOIN tasks t ON t.id = c.task_id
ORDER BY c.created_at DESC, c.id DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, q); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (r *CommentRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "comments")
}
