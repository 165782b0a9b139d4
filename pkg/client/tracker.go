package client

import (
	"context"
	"sync"

	"teamtask/internal/models"
)

// Tracker remembers the keys of the previous snapshot and reports which
// items of the next one are new. The first snapshot reports nothing.
type Tracker[T any] struct {
	key func(T) int64

	mu     sync.Mutex
	seen   map[int64]struct{}
	primed bool
}

func NewTracker[T any](key func(T) int64) *Tracker[T] {
	return &Tracker[T]{key: key}
}

// Update replaces the snapshot and returns the items absent from the
// previous one.
func (t *Tracker[T]) Update(items []T) []T {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[int64]struct{}, len(items))
	var fresh []T
	for _, item := range items {
		k := t.key(item)
		next[k] = struct{}{}
		if !t.primed {
			continue
		}
		if _, ok := t.seen[k]; !ok {
			fresh = append(fresh, item)
		}
	}
	t.seen = next
	t.primed = true
	return fresh
}

// Reset forgets the snapshot so the next Update reports nothing.
func (t *Tracker[T]) Reset() {
	t.mu.Lock()
	t.seen = nil
	t.primed = false
	t.mu.Unlock()
}

// ActivityFeed polls the activity feed and hands each snapshot to onUpdate
// along with the activities that were not in the previous one.
func (c *Client) ActivityFeed(onUpdate func(all, fresh []models.Activity), onError func(error)) *Poller {
	tracker := NewTracker(func(a models.Activity) int64 { return a.ID })
	return NewPoller(func(ctx context.Context) error {
		items, err := c.Activities(ctx)
		if err != nil {
			return err
		}
		onUpdate(items, tracker.Update(items))
		return nil
	}, PollerConfig{Interval: ActivityPollInterval, OnError: onError})
}

// TaskFeed polls one page of the caller's tasks.
func (c *Client) TaskFeed(page, limit int, onUpdate func(*models.TaskPage), onError func(error)) *Poller {
	return NewPoller(func(ctx context.Context) error {
		p, err := c.MyTasks(ctx, page, limit)
		if err != nil {
			return err
		}
		onUpdate(p)
		return nil
	}, PollerConfig{Interval: TaskPollInterval, OnError: onError})
}

// StatsFeed polls the admin counters.
func (c *Client) StatsFeed(onUpdate func(*models.Stats), onError func(error)) *Poller {
	return NewPoller(func(ctx context.Context) error {
		s, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		onUpdate(s)
		return nil
	}, PollerConfig{Interval: AdminPollInterval, OnError: onError})
}
