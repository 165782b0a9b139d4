package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"teamtask/internal/cache"
	"teamtask/internal/models"
	"teamtask/internal/repository"
	"teamtask/pkg/logger"

	"go.uber.org/zap"
)

type TaskService struct {
	store *repository.Store
	cache cache.TaskCache
	// writes counts invalidations. A read-through that overlaps one drops
	// the entry it just cached.
	writes atomic.Uint64
}

func NewTaskService(store *repository.Store, taskCache cache.TaskCache) *TaskService {
	if taskCache == nil {
		taskCache = cache.NopTaskCache{}
	}
	return &TaskService{store: store, cache: taskCache}
}

// Create stores the task with actor as creator and logs a task_created
// activity in the same transaction.
func (s *TaskService) Create(ctx context.Context, actor *models.User, in models.NewTask) (*models.Task, error) {
	in.CreatedBy = actor.ID

	var task *models.Task
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		var err error
		task, err = r.Tasks.Create(ctx, in)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf(`%s created task "%s"`, actor.Name, task.Title)
		return r.Activities.Create(ctx, models.ActivityTaskCreated, desc, actor.ID, &task.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.AuditLogger.Info("Task created", zap.Int64("task_id", task.ID), zap.Int64("user_id", actor.ID))
	return task, nil
}

// Get returns a task by id, reading through the cache.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	if task, ok, err := s.cache.Get(ctx, id); err != nil {
		logger.SystemLogger.Warn("Task cache read failed", zap.Int64("task_id", id), zap.Error(err))
	} else if ok {
		return task, nil
	}

	gen := s.writes.Load()
	task, err := s.store.Repos().Tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	if err := s.cache.Set(ctx, task); err != nil {
		logger.SystemLogger.Warn("Task cache write failed", zap.Int64("task_id", id), zap.Error(err))
		return task, nil
	}
	if s.writes.Load() != gen {
		// A mutation committed while the row was being read.
		s.evict(ctx, id)
	}
	return task, nil
}

// ListForUser pages through the tasks the user created or is assigned to.
func (s *TaskService) ListForUser(ctx context.Context, userID int64, page, limit int) (*models.TaskPage, error) {
	p, err := s.store.Repos().Tasks.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return p, nil
}

func (s *TaskService) ListAll(ctx context.Context, page, limit int) (*models.TaskPage, error) {
	p, err := s.store.Repos().Tasks.GetAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return p, nil
}

// Update applies the provided fields. Only the creator or the assignee may
// update. A task_updated activity is logged when the status changes.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id int64, u models.TaskUpdate) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		current, err := r.Tasks.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if !current.IsParticipant(actor.ID) {
			return ErrNotTaskParticipant
		}

		n, err := r.Tasks.Update(ctx, id, u)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTaskNotFound
		}

		if u.Status == nil || *u.Status == current.Status {
			return nil
		}
		title := current.Title
		if u.Title != nil {
			title = *u.Title
		}
		desc := fmt.Sprintf(`%s updated task "%s" status to %s`, actor.Name, title, *u.Status)
		return r.Activities.Create(ctx, models.ActivityTaskUpdated, desc, actor.ID, &id)
	})
	if err != nil {
		return s.mutationError("update", id, actor, err)
	}

	s.invalidate(ctx, id)
	logger.AuditLogger.Info("Task updated", zap.Int64("task_id", id), zap.Int64("user_id", actor.ID))
	return nil
}

// Delete removes the task. Only the creator may delete. Comments go with the
// task; the task_deleted activity is stored without a task reference.
func (s *TaskService) Delete(ctx context.Context, actor *models.User, id int64) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		current, err := r.Tasks.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if current.CreatedBy != actor.ID {
			return ErrNotTaskCreator
		}

		if _, err := r.Tasks.Delete(ctx, id); err != nil {
			return err
		}
		desc := fmt.Sprintf(`%s deleted task "%s"`, actor.Name, current.Title)
		return r.Activities.Create(ctx, models.ActivityTaskDeleted, desc, actor.ID, nil)
	})
	if err != nil {
		return s.mutationError("delete", id, actor, err)
	}

	s.invalidate(ctx, id)
	logger.AuditLogger.Info("Task deleted", zap.Int64("task_id", id), zap.Int64("user_id", actor.ID))
	return nil
}

// AssignableUsers lists every user as an assignment candidate.
func (s *TaskService) AssignableUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.Repos().Users.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *TaskService) mutationError(op string, id int64, actor *models.User, err error) error {
	switch {
	case errors.Is(err, ErrNotTaskParticipant), errors.Is(err, ErrNotTaskCreator):
		logger.SecurityLogger.Warn("Task "+op+" forbidden", zap.Int64("task_id", id), zap.Int64("user_id", actor.ID))
		return err
	case errors.Is(err, ErrTaskNotFound):
		return err
	case errors.Is(err, repository.ErrConstraint):
		return ErrInvalidAssignee
	}
	return fmt.Errorf("%s task: %w", op, err)
}

// invalidate must run after the mutation commits.
func (s *TaskService) invalidate(ctx context.Context, id int64) {
	s.writes.Add(1)
	s.evict(ctx, id)
}

func (s *TaskService) evict(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.SystemLogger.Warn("Task cache invalidation failed", zap.Int64("task_id", id), zap.Error(err))
	}
}
