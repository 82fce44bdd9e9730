package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
)

// ConversationStore persists the AI practice language chosen by each user
type ConversationStore struct {
	db *sql.DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Get returns the active language of a user, or "" when there is no session
func (s *ConversationStore) Get(ctx context.Context, userID int64) (domain.ConversationLanguage, error) {
	var language string
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM conversation_sessions WHERE user_id = $1`,
		userID,
	).Scan(&language)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	lang := domain.ConversationLanguage(language)
	if !lang.Valid() {
		return "", nil
	}
	return lang, nil
}

// Set stores or replaces the session of a user
func (s *ConversationStore) Set(ctx context.Context, userID int64, language domain.ConversationLanguage) error {
	if !language.Valid() {
		return domain.ErrInvalidLanguage
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_sessions (user_id, language, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			updated_at = NOW()
	`, userID, string(language))
	return err
}

// Delete removes the session of a user
func (s *ConversationStore) Delete(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversation_sessions WHERE user_id = $1`, userID)
	return err
}

// CleanupStale removes sessions not updated within maxAge and reports how many were removed
func (s *ConversationStore) CleanupStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_sessions WHERE updated_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var (
	_ domain.UserRepository           = (*UserRepository)(nil)
	_ domain.ReferralRepository       = (*ReferralRepository)(nil)
	_ domain.RewardRepository         = (*RewardRepository)(nil)
	_ domain.ConversationSessionStore = (*ConversationStore)(nil)
)
