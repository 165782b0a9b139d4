// Command createadmin creates the admin account, or promotes and resets an
// existing account with the same email.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"teamtask/configs"
	"teamtask/internal/repository"
	"teamtask/pkg/crypto"
	"teamtask/pkg/database"
	"teamtask/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	name := flag.String("name", "Admin User", "admin display name")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

	cfg := configs.LoadConfig()
	if err := logger.InitLoggers(cfg.LogDir, true); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}
	defer logger.SyncLoggers()

	if err := run(cfg, *name, *email, *password); err != nil {
		logger.ErrorLogger.Error("Create admin failed", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
}

func run(cfg configs.Config, name, email, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		return err
	}

	store := repository.NewStore(db, crypto.NewPasswordHasher(crypto.DefaultBcryptCost))
	admin, err := store.Repos().Users.UpsertAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Admin account ready",
		zap.Int64("user_id", admin.ID),
		zap.String("email", admin.Email),
	)
	return nil
}
