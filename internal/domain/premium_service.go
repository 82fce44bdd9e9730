package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPremiumRequired = errors.New("active premium required")
)

// RewardRepository interface for reading premium grant history
type RewardRepository interface {
	GetUserGrants(ctx context.Context, userID int64) ([]*RewardGrant, error)
}

// PremiumNotifier tells a user about a premium period granted outside the referral flow
type PremiumNotifier interface {
	SendPremiumGrantedNotification(ctx context.Context, userID int64, expiresAt time.Time) error
}

// ConversationSessionStore keeps the language a user picked for AI practice
type ConversationSessionStore interface {
	Get(ctx context.Context, userID int64) (ConversationLanguage, error)
	Set(ctx context.Context, userID int64, language ConversationLanguage) error
	Delete(ctx context.Context, userID int64) error
}

// PremiumService handles manual premium grants and premium-gated features
type PremiumService struct {
	userRepo   UserRepository
	rewardRepo RewardRepository
	sessions   ConversationSessionStore
	notifier   PremiumNotifier
	now        func() time.Time
	logger     Logger
}

// NewPremiumService creates a new PremiumService
func NewPremiumService(
	userRepo UserRepository,
	rewardRepo RewardRepository,
	sessions ConversationSessionStore,
	notifier PremiumNotifier,
	logger Logger,
) *PremiumService {
	return &PremiumService{
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		sessions:   sessions,
		notifier:   notifier,
		now:        time.Now,
		logger:     logger,
	}
}

// GrantManual activates premium after a confirmed payment. An active period is extended from its
// current expiry; otherwise the period starts now.
func (ps *PremiumService) GrantManual(ctx context.Context, userID int64, duration time.Duration) (*RewardGrant, error) {
	user, err := ps.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := ps.now()
	start := now
	if user.HasActivePremium(now) && user.PremiumExpiresAt != nil {
		start = *user.PremiumExpiresAt
	}

	grant := &RewardGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Source:    GrantSourceAdmin,
		GrantedAt: now,
		ExpiresAt: start.Add(duration),
	}
	if err := grant.Validate(); err != nil {
		return nil, err
	}

	if err := ps.userRepo.GrantPremium(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to grant premium: %w", err)
	}

	ps.logger.Info("premium granted manually", "user_id", userID, "grant_id", grant.ID, "expires_at", grant.ExpiresAt.Format(time.RFC3339))

	if err := ps.notifier.SendPremiumGrantedNotification(ctx, userID, grant.ExpiresAt); err != nil {
		ps.logger.Warn("failed to deliver premium notification", "user_id", userID, "error", err)
	}

	return grant, nil
}

// Grants returns the premium history of a user, newest first
func (ps *PremiumService) Grants(ctx context.Context, userID int64) ([]*RewardGrant, error) {
	return ps.rewardRepo.GetUserGrants(ctx, userID)
}

// IsPremium reports whether the user currently holds active premium
func (ps *PremiumService) IsPremium(ctx context.Context, userID int64) (bool, error) {
	stats, err := ps.userRepo.GetUserStats(ctx, userID)
	if err != nil {
		return false, err
	}
	if stats == nil {
		return false, ErrUserNotFound
	}
	return stats.PremiumActive(ps.now()), nil
}

// StartConversation selects the AI practice language for a premium user
func (ps *PremiumService) StartConversation(ctx context.Context, userID int64, language ConversationLanguage) error {
	if !language.Valid() {
		return ErrInvalidLanguage
	}

	premium, err := ps.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if !premium {
		return ErrPremiumRequired
	}

	if err := ps.sessions.Set(ctx, userID, language); err != nil {
		return fmt.Errorf("failed to store conversation session: %w", err)
	}

	ps.logger.Info("conversation started", "user_id", userID, "language", string(language))
	return nil
}

// ActiveConversation returns the selected practice language, or "" when none is active
func (ps *PremiumService) ActiveConversation(ctx context.Context, userID int64) (ConversationLanguage, error) {
	return ps.sessions.Get(ctx, userID)
}

// EndConversation clears the practice session
func (ps *PremiumService) EndConversation(ctx context.Context, userID int64) error {
	return ps.sessions.Delete(ctx, userID)
}
