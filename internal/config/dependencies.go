package config

import (
	"teamtask/configs"
	"teamtask/internal/cache"
	"teamtask/internal/repository"
	"teamtask/internal/service"
	"teamtask/pkg/crypto"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

// Dependencies is built once at startup and handed to the route table.
type Dependencies struct {
	Config    configs.Config
	Store     *repository.Store
	Tokens    *service.TokenManager
	Validate  *validator.Validate
	TaskCache cache.TaskCache

	Auth       *service.AuthService
	Tasks      *service.TaskService
	Comments   *service.CommentService
	Activities *service.ActivityService
	Admin      *service.AdminService
}

// Option tweaks construction, mostly for tests.
type Option func(*options)

type options struct {
	hasher *crypto.PasswordHasher
	redis  *redis.Client
}

// WithPasswordHasher overrides the bcrypt hasher (tests use a low cost).
func WithPasswordHasher(h *crypto.PasswordHasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithRedis enables the Redis task cache.
func WithRedis(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

func NewDependencies(cfg configs.Config, db *sqlx.DB, opts ...Option) *Dependencies {
	o := options{hasher: crypto.NewPasswordHasher(crypto.DefaultBcryptCost)}
	for _, opt := range opts {
		opt(&o)
	}

	store := repository.NewStore(db, o.hasher)
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)

	var taskCache cache.TaskCache = cache.NopTaskCache{}
	if o.redis != nil {
		taskCache = cache.NewRedisTaskCache(o.redis, cache.DefaultPrefix, cfg.CacheTTL)
	}

	return &Dependencies{
		Config:     cfg,
		Store:      store,
		Tokens:     tokens,
		Validate:   NewValidator(),
		TaskCache:  taskCache,
		Auth:       service.NewAuthService(store.Repos().Users, tokens, cfg.ResetTokenTTL),
		Tasks:      service.NewTaskService(store, taskCache),
		Comments:   service.NewCommentService(store),
		Activities: service.NewActivityService(store),
		Admin:      service.NewAdminService(store),
	}
}
