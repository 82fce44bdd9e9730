package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultReferralThreshold = 10
	DefaultPremiumDuration   = 30 * 24 * time.Hour
)

// Logger interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// UserRepository interface for user operations.
// Lookups return nil without error when the user does not exist.
type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	CreateUser(ctx context.Context, user *User) (bool, error)
	UpdateUserActivity(ctx context.Context, userID int64, at time.Time) error
	AddRating(ctx context.Context, userID int64, points float64) error
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)

	// IncrementReferralCount adds one referral in a single statement and returns the updated row
	IncrementReferralCount(ctx context.Context, referrerID int64) (*ReferrerSnapshot, error)
	// GrantPremium sets premium unconditionally and records the grant
	GrantPremium(ctx context.Context, grant *RewardGrant) error
	// GrantReferralReward sets premium, resets the referral count and records the grant in one
	// transaction, only if the user holds no active premium at grant.GrantedAt.
	GrantReferralReward(ctx context.Context, grant *RewardGrant) (bool, error)
}

// RewardPolicy holds the referral reward parameters
type RewardPolicy struct {
	Threshold       int
	PremiumDuration time.Duration
}

// DefaultRewardPolicy returns 10 referrals for 30 days
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		Threshold:       DefaultReferralThreshold,
		PremiumDuration: DefaultPremiumDuration,
	}
}

// OutcomeKind is the branch taken after a referral
type OutcomeKind int

const (
	OutcomeProgress OutcomeKind = iota
	OutcomeMilestone
)

func (k OutcomeKind) String() string {
	if k == OutcomeMilestone {
		return "milestone"
	}
	return "progress"
}

// RewardOutcome describes the notification to send after a referral
type RewardOutcome struct {
	Kind      OutcomeKind
	Count     int
	Threshold int
	Remaining int
	ExpiresAt time.Time // set for milestones
}

// EvaluateReferral decides the branch for a referrer whose count was just incremented.
// It has no side effects.
func EvaluateReferral(snapshot ReferrerSnapshot, policy RewardPolicy, now time.Time) RewardOutcome {
	if snapshot.ReferralCount >= policy.Threshold && !snapshot.PremiumActive(now) {
		return RewardOutcome{
			Kind:      OutcomeMilestone,
			Count:     snapshot.ReferralCount,
			Threshold: policy.Threshold,
			ExpiresAt: now.Add(policy.PremiumDuration),
		}
	}
	return progressOutcome(snapshot.ReferralCount, policy.Threshold)
}

func progressOutcome(count, threshold int) RewardOutcome {
	remaining := threshold - count
	if remaining < 0 {
		remaining = 0
	}
	return RewardOutcome{
		Kind:      OutcomeProgress,
		Count:     count,
		Threshold: threshold,
		Remaining: remaining,
	}
}

// ReferralNotifier delivers referral outcomes to the referrer
type ReferralNotifier interface {
	SendReferralNotification(ctx context.Context, referrerID int64, newUserName string, outcome RewardOutcome) error
}

// ReferralRewardService turns "new user joined via referral" into counter and premium updates
type ReferralRewardService struct {
	userRepo UserRepository
	notifier ReferralNotifier
	policy   RewardPolicy
	now      func() time.Time
	logger   Logger
}

// NewReferralRewardService creates a new ReferralRewardService
func NewReferralRewardService(
	userRepo UserRepository,
	notifier ReferralNotifier,
	policy RewardPolicy,
	logger Logger,
) *ReferralRewardService {
	return &ReferralRewardService{
		userRepo: userRepo,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
		logger:   logger,
	}
}

// Policy returns the configured reward policy
func (s *ReferralRewardService) Policy() RewardPolicy {
	return s.policy
}

// OnNewReferredUser processes one successful referral. It never returns an error: a missing
// referrer aborts with a warning and delivery failures are logged. The returned outcome is nil
// when processing was aborted.
func (s *ReferralRewardService) OnNewReferredUser(ctx context.Context, referrerID, newUserID int64, newUserName string) *RewardOutcome {
	s.logger.Info("processing referral", "referrer_id", referrerID, "new_user_id", newUserID)

	snapshot, err := s.userRepo.IncrementReferralCount(ctx, referrerID)
	if err != nil {
		s.logger.Error("failed to increment referral count", "referrer_id", referrerID, "error", err)
		return nil
	}
	if snapshot == nil {
		s.logger.Warn("referrer not found while processing referral", "referrer_id", referrerID, "new_user_id", newUserID)
		return nil
	}

	now := s.now()
	outcome := EvaluateReferral(*snapshot, s.policy, now)

	if outcome.Kind == OutcomeMilestone {
		grant := &RewardGrant{
			ID:        uuid.NewString(),
			UserID:    referrerID,
			Source:    GrantSourceReferral,
			GrantedAt: now,
			ExpiresAt: outcome.ExpiresAt,
		}

		granted, err := s.userRepo.GrantReferralReward(ctx, grant)
		switch {
		case err != nil:
			s.logger.Error("failed to grant referral premium", "referrer_id", referrerID, "error", err)
			outcome = progressOutcome(snapshot.ReferralCount, s.policy.Threshold)
		case !granted:
			// another referral event granted first and reset the counter
			s.logger.Info("referral premium already granted concurrently", "referrer_id", referrerID)
			outcome = progressOutcome(s.currentCount(ctx, referrerID, snapshot.ReferralCount), s.policy.Threshold)
		default:
			s.logger.Info("referral premium granted",
				"referrer_id", referrerID,
				"grant_id", grant.ID,
				"expires_at", grant.ExpiresAt.Format(time.RFC3339),
			)
		}
	}

	s.logger.Info("referral counted",
		"referrer_id", referrerID,
		"count", outcome.Count,
		"outcome", outcome.Kind.String(),
	)

	if err := s.notifier.SendReferralNotification(ctx, referrerID, newUserName, outcome); err != nil {
		s.logger.Warn("failed to deliver referral notification", "referrer_id", referrerID, "outcome", outcome.Kind.String(), "error", err)
	}

	return &outcome
}

// currentCount re-reads the stored referral count, falling back to the count seen at increment time
func (s *ReferralRewardService) currentCount(ctx context.Context, referrerID int64, fallback int) int {
	stats, err := s.userRepo.GetUserStats(ctx, referrerID)
	if err != nil || stats == nil {
		s.logger.Warn("failed to re-read referral count", "referrer_id", referrerID, "error", err)
		return fallback
	}
	return stats.ReferralCount
}
