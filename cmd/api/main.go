package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"teamtask/configs"
	v1 "teamtask/internal/api/v1"
	"teamtask/internal/config"
	"teamtask/internal/repository"
	"teamtask/pkg/database"
	"teamtask/pkg/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir, !cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}
	logger.SystemLogger.Info("Starting application",
		zap.String("env", cfg.AppEnv),
		zap.String("time", time.Now().Format(time.RFC3339)),
	)

	// Inisialisasi database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.ErrorLogger.Error("Database connection failed", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
	logger.SystemLogger.Info("Database Connected", zap.String("path", cfg.DBPath))

	ctx := context.Background()
	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		logger.ErrorLogger.Error("Schema setup failed", zap.Error(err))
		db.Close()
		logger.SyncLoggers()
		os.Exit(1)
	}

	var opts []config.Option
	closeRedis := func() error { return nil }
	if cfg.CacheEnabled() {
		rdb, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.SystemLogger.Warn("Redis unavailable, running without task cache", zap.Error(err))
		} else {
			logger.SystemLogger.Info("Redis Connected", zap.String("host", cfg.RedisHost))
			opts = append(opts, config.WithRedis(rdb))
			closeRedis = rdb.Close
		}
	}

	deps := config.NewDependencies(cfg, db, opts...)
	app := v1.NewApp(deps)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			// Connections close only after in-flight requests finish.
			"teamtask": func(ctx context.Context) error {
				logger.SystemLogger.Info("Graceful shutdown initiated")
				err := app.ShutdownWithContext(ctx)
				if cerr := closeRedis(); cerr != nil && err == nil {
					err = cerr
				}
				if cerr := db.Close(); cerr != nil && err == nil {
					err = cerr
				}
				return err
			},
		},
	)

	exitCode := <-wait
	logger.SystemLogger.Info("Application exited", zap.Int("code", exitCode))
	logger.SyncLoggers()
	os.Exit(exitCode)
}
