// Package cache holds the read-through cache for single task lookups.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"teamtask/internal/models"

	"github.com/go-redis/redis/v8"
)

const DefaultPrefix = "teamtask:task:"

// TaskCache stores task read-models by id. Implementations are best effort;
// callers treat errors as misses.
type TaskCache interface {
	Get(ctx context.Context, id int64) (*models.Task, bool, error)
	Set(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
}

// StatsReporter is implemented by caches that count their traffic.
type StatsReporter interface {
	Stats() Stats
}

type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

var (
	_ TaskCache     = (*RedisTaskCache)(nil)
	_ StatsReporter = (*RedisTaskCache)(nil)
	_ TaskCache     = NopTaskCache{}
)

type RedisTaskCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

func NewRedisTaskCache(client *redis.Client, prefix string, ttl time.Duration) *RedisTaskCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisTaskCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisTaskCache) key(id int64) string {
	return c.prefix + strconv.FormatInt(id, 10)
}

func (c *RedisTaskCache) Get(ctx context.Context, id int64) (*models.Task, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		atomic.AddUint64(&c.stats.Misses, 1)
		return nil, false, nil
	}
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return nil, false, fmt.Errorf("cache unmarshal: %w", err)
	}
	atomic.AddUint64(&c.stats.Hits, 1)
	return &task, true, nil
}

func (c *RedisTaskCache) Set(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key(task.ID), data, c.ttl).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache set: %w", err)
	}
	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

func (c *RedisTaskCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache delete: %w", err)
	}
	atomic.AddUint64(&c.stats.Deletes, 1)
	return nil
}

func (c *RedisTaskCache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.stats.Hits),
		Misses:  atomic.LoadUint64(&c.stats.Misses),
		Sets:    atomic.LoadUint64(&c.stats.Sets),
		Deletes: atomic.LoadUint64(&c.stats.Deletes),
		Errors:  atomic.LoadUint64(&c.stats.Errors),
	}
}

// NopTaskCache always misses. Used when no Redis host is configured.
type NopTaskCache struct{}

func (NopTaskCache) Get(context.Context, int64) (*models.Task, bool, error) { return nil, false, nil }
func (NopTaskCache) Set(context.Context, *models.Task) error                { return nil }
func (NopTaskCache) Delete(context.Context, int64) error                    { return nil }
