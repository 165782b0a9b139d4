package service

import (
	"context"
	"fmt"

	"teamtask/internal/models"
	"teamtask/internal/repository"
	"teamtask/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AdminService struct {
	store *repository.Store
}

func NewAdminService(store *repository.Store) *AdminService {
	return &AdminService{store: store}
}

// Users returns every account, newest first.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Repos().Users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) UpdateRole(ctx context.Context, actor *models.User, userID int64, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	n, err := s.store.Repos().Users.UpdateUser(ctx, userID, models.UserUpdate{Role: &role})
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}

	logger.AuditLogger.Info("User role updated",
		zap.Int64("user_id", userID),
		zap.String("role", string(role)),
		zap.Int64("by", actor.ID),
	)
	return nil
}

// Stats counts users, tasks and comments concurrently.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	repos := s.store.Repos()
	var stats models.Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := repos.Users.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := repos.Tasks.Count(gctx)
		stats.TotalTasks = n
		return err
	})
	g.Go(func() error {
		n, err := repos.Comments.Count(gctx)
		stats.TotalComments = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &stats, nil
}
