package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ad/langbot-referrals/internal/config"
	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/logger"
	"github.com/ad/langbot-referrals/internal/storage"
	"github.com/ad/langbot-referrals/internal/storage/postgres"

	_ "modernc.org/sqlite"
)

// stores groups the repositories of the selected backend
type stores struct {
	users     domain.UserRepository
	referrals domain.ReferralRepository
	rewards   domain.RewardRepository
	sessions  domain.ConversationSessionStore

	cleanupSessions func(ctx context.Context, maxAge time.Duration) error
	close           func()
}

// openStores uses PostgreSQL when DATABASE_URL is set and SQLite otherwise
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.DatabaseURL != "" {
		return openPostgres(ctx, cfg, log)
	}
	return openSQLite(cfg, log)
}

func openSQLite(cfg *config.Config, log *logger.Logger) (*stores, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	lock, err := storage.AcquireInstanceLock(cfg.DatabasePath + ".lock")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	log.Info("Database opened", "backend", "sqlite", "path", cfg.DatabasePath)

	dbQueue := storage.NewDBQueue(db)
	closeAll := func() {
		dbQueue.Close()
		_ = db.Close()
		_ = lock.Unlock()
	}

	if err := storage.InitSchema(dbQueue); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	log.Info("Database schema initialized")

	if err := storage.RunMigrations(dbQueue); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed")

	sessions := storage.NewConversationStorage(dbQueue, log.Named("sessions"))

	return &stores{
		users:           storage.NewUserRepository(dbQueue),
		referrals:       storage.NewReferralRepository(dbQueue),
		rewards:         storage.NewRewardRepository(dbQueue),
		sessions:        sessions,
		cleanupSessions: sessions.CleanupStale,
		close:           closeAll,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	log.Info("Database opened", "backend", "postgres")

	if err := postgres.InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Database schema initialized")

	sessions := postgres.NewConversationStore(db)
	sessionLog := log.Named("sessions")

	return &stores{
		users:     postgres.NewUserRepository(db),
		referrals: postgres.NewReferralRepository(db),
		rewards:   postgres.NewRewardRepository(db),
		sessions:  sessions,
		cleanupSessions: func(ctx context.Context, maxAge time.Duration) error {
			deleted, err := sessions.CleanupStale(ctx, maxAge)
			if err != nil {
				return err
			}
			sessionLog.Info("cleaned up stale conversation sessions", "count", deleted)
			return nil
		},
		close: func() { _ = db.Close() },
	}, nil
}
