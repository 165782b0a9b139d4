package repository

import (
	"context"
	"fmt"
	"time"

	"teamtask/internal/models"

	"github.com/jmoiron/sqlx"
)

const DefaultActivityLimit = 20

type ActivityRepository struct {
	db  sqlx.ExtContext
	now func() time.Time
}

// Create appends an activity. taskID is nil for events about a task that no
// longer exists.
func (r *ActivityRepository) Create(ctx context.Context, activityType, description string, userID int64, taskID *int64) error {
	const q = `INSERT INTO activities (type, description, user_id, task_id, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, activityType, description, userID, taskID, r.now()); err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// GetRecent returns the newest activities with the actor's name.
func (r *ActivityRepository) GetRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	out := []models.Activity{}
	const q = `
SELECT a.id, a.type, a.description, a.user_id, u.name AS user_name, a.task_id, a.created_at
FROM activities a
JOIN users u ON u.id = a.user_id
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?`
	if err := sqlx.SelectContext(ctx, r.db, &out, q, limit); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}
