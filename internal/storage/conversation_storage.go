package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/logger"
)

// ConversationStorage persists the AI practice language chosen by each user
type ConversationStorage struct {
	queue  *DBQueue
	logger *logger.Logger
}

// NewConversationStorage creates a new conversation storage backed by SQLite
func NewConversationStorage(queue *DBQueue, log *logger.Logger) *ConversationStorage {
	return &ConversationStorage{
		queue:  queue,
		logger: log,
	}
}

// Get returns the active language of a user, or "" when there is no session
func (s *ConversationStorage) Get(ctx context.Context, userID int64) (domain.ConversationLanguage, error) {
	var language string

	err := s.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT language FROM conversation_sessions WHERE user_id = ?`,
			userID,
		).Scan(&language)
	})

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		s.logger.Error("failed to get conversation session", "user_id", userID, "error", err)
		return "", err
	}

	lang := domain.ConversationLanguage(language)
	if !lang.Valid() {
		s.logger.Warn("dropping conversation session with unknown language", "user_id", userID, "language", language)
		_ = s.Delete(ctx, userID)
		return "", nil
	}

	return lang, nil
}

// Set stores or replaces the session of a user
func (s *ConversationStorage) Set(ctx context.Context, userID int64, language domain.ConversationLanguage) error {
	if !language.Valid() {
		return domain.ErrInvalidLanguage
	}

	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO conversation_sessions (user_id, language, created_at, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				language = excluded.language,
				updated_at = CURRENT_TIMESTAMP
		`, userID, string(language))
		return err
	})

	if err != nil {
		s.logger.Error("failed to set conversation session", "user_id", userID, "language", string(language), "error", err)
		return err
	}

	s.logger.Debug("conversation session stored", "user_id", userID, "language", string(language))
	return nil
}

// Delete removes the session of a user
func (s *ConversationStorage) Delete(ctx context.Context, userID int64) error {
	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM conversation_sessions WHERE user_id = ?`, userID)
		return err
	})

	if err != nil {
		s.logger.Error("failed to delete conversation session", "user_id", userID, "error", err)
		return err
	}

	s.logger.Debug("conversation session deleted", "user_id", userID)
	return nil
}

// CleanupStale removes sessions not updated within maxAge
func (s *ConversationStorage) CleanupStale(ctx context.Context, maxAge time.Duration) error {
	var deletedCount int64
	modifier := fmt.Sprintf("-%d seconds", int64(maxAge.Seconds()))

	err := s.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			DELETE FROM conversation_sessions
			WHERE updated_at < datetime('now', ?)
		`, modifier)
		if err != nil {
			return err
		}

		deletedCount, err = result.RowsAffected()
		return err
	})

	if err != nil {
		s.logger.Error("failed to cleanup stale conversation sessions", "error", err)
		return err
	}

	if deletedCount > 0 {
		s.logger.Info("cleaned up stale conversation sessions", "count", deletedCount)
	} else {
		s.logger.Debug("no stale conversation sessions to cleanup")
	}

	return nil
}
