package service

import (
	"context"
	"fmt"

	"teamtask/internal/models"
	"teamtask/internal/repository"
)

type ActivityService struct {
	store *repository.Store
}

func NewActivityService(store *repository.Store) *ActivityService {
	return &ActivityService{store: store}
}

// Recent returns the newest activities for the public feed.
func (s *ActivityService) Recent(ctx context.Context) ([]models.Activity, error) {
	activities, err := s.store.Repos().Activities.GetRecent(ctx, repository.DefaultActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("recent activities: %w", err)
	}
	return activities, nil
}
