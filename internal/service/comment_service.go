package service

import (
	"context"
	"errors"
	"fmt"

	"teamtask/internal/models"
	"teamtask/internal/repository"
	"teamtask/pkg/logger"

	"go.uber.org/zap"
)

type CommentService struct {
	store *repository.Store
}

func NewCommentService(store *repository.Store) *CommentService {
	return &CommentService{store: store}
}

// Create adds a comment to an existing task. Any authenticated user may
// comment; a comment_added activity is logged in the same transaction.
func (s *CommentService) Create(ctx context.Context, actor *models.User, taskID int64, content string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		task, err := r.Tasks.FindByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		comment, err = r.Comments.Create(ctx, taskID, actor.ID, content)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf(`%s commented on task "%s"`, actor.Name, task.Title)
		return r.Activities.Create(ctx, models.ActivityCommentAdded, desc, actor.ID, &taskID)
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	logger.AuditLogger.Info("Comment created", zap.Int64("comment_id", comment.ID), zap.Int64("task_id", taskID))
	return comment, nil
}

// ListByTask returns the comments of a task, oldest first. An unknown task
// yields an empty list.
func (s *CommentService) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	comments, err := s.store.Repos().Comments.FindByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update changes the content of a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id int64, content string) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if err := s.authorize(ctx, r, actor, id); err != nil {
			return err
		}
		_, err := r.Comments.Update(ctx, id, content)
		return err
	})
	if err != nil {
		return s.mutationError("update", id, actor, err)
	}
	logger.AuditLogger.Info("Comment updated", zap.Int64("comment_id", id))
	return nil
}

// Delete removes a comment. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id int64) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if err := s.authorize(ctx, r, actor, id); err != nil {
			return err
		}
		_, err := r.Comments.Delete(ctx, id)
		return err
	})
	if err != nil {
		return s.mutationError("delete", id, actor, err)
	}
	logger.AuditLogger.Info("Comment deleted", zap.Int64("comment_id", id))
	return nil
}

// ListAll returns every comment with its task title, newest first.
func (s *CommentService) ListAll(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.store.Repos().Comments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) authorize(ctx context.Context, r repository.Repositories, actor *models.User, id int64) error {
	comment, err := r.Comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != actor.ID {
		return ErrNotCommentAuthor
	}
	return nil
}

func (s *CommentService) mutationError(op string, id int64, actor *models.User, err error) error {
	switch {
	case errors.Is(err, ErrNotCommentAuthor):
		logger.SecurityLogger.Warn("Comment "+op+" forbidden", zap.Int64("comment_id", id), zap.Int64("user_id", actor.ID))
		return err
	case errors.Is(err, ErrCommentNotFound):
		return err
	}
	return fmt.Errorf("%s comment: %w", op, err)
}
