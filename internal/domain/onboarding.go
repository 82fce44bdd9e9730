package domain

import (
	"context"
	"fmt"
	"time"
)

// ReferralRepository interface for referral log operations
type ReferralRepository interface {
	// AddReferral stores the referral once per referred user; false means it already existed
	AddReferral(ctx context.Context, referral *Referral) (bool, error)
	GetRecentReferrals(ctx context.Context, referrerID int64, limit int) ([]*ReferralEntry, error)
	CountReferrals(ctx context.Context, referrerID int64) (int, error)
}

// StartRequest carries the sender of a /start command
type StartRequest struct {
	UserID     int64
	Username   string
	FirstName  string
	LastName   string
	StartParam string // text after "/start ", may be empty
}

// StartResult reports what RegisterStart did
type StartResult struct {
	User       *User
	Created    bool
	ReferrerID *int64
	Outcome    *RewardOutcome
}

// OnboardingService registers users on first contact and attributes referrals
type OnboardingService struct {
	userRepo      UserRepository
	referralRepo  ReferralRepository
	rewardService *ReferralRewardService
	rating        *RatingService
	deepLinks     *DeepLinkService
	now           func() time.Time
	logger        Logger
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(
	userRepo UserRepository,
	referralRepo ReferralRepository,
	rewardService *ReferralRewardService,
	rating *RatingService,
	deepLinks *DeepLinkService,
	logger Logger,
) *OnboardingService {
	return &OnboardingService{
		userRepo:      userRepo,
		referralRepo:  referralRepo,
		rewardService: rewardService,
		rating:        rating,
		deepLinks:     deepLinks,
		now:           time.Now,
		logger:        logger,
	}
}

// RegisterStart handles the persistence side of /start. Referral attribution happens only when
// the user record is created by this call; later /start commands never add a referral.
func (s *OnboardingService) RegisterStart(ctx context.Context, req StartRequest) (*StartResult, error) {
	if req.UserID == 0 {
		return nil, ErrInvalidUserID
	}

	existing, err := s.userRepo.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	result := &StartResult{User: existing}
	now := s.now()

	if existing == nil {
		referrerID := s.resolveReferrer(ctx, req)

		user := &User{
			ID:           req.UserID,
			Username:     req.Username,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			ReferredBy:   referrerID,
			CreatedAt:    now,
			LastActiveAt: now,
		}

		created, err := s.userRepo.CreateUser(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if created {
			s.logger.Info("user registered", "user_id", req.UserID, "referred", referrerID != nil)
			result.User = user
			result.Created = true
			if referrerID != nil {
				result.ReferrerID = referrerID
				result.Outcome = s.attributeReferral(ctx, *referrerID, user)
			}
		} else {
			// created concurrently by another update
			result.User, err = s.userRepo.GetUser(ctx, req.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload user: %w", err)
			}
		}
	} else if req.StartParam != "" {
		s.logger.Debug("start parameter ignored for existing user", "user_id", req.UserID, "param", req.StartParam)
	}

	if err := s.userRepo.UpdateUserActivity(ctx, req.UserID, now); err != nil {
		s.logger.Error("failed to update user activity", "user_id", req.UserID, "error", err)
	}
	if err := s.rating.Record(ctx, req.UserID, ActivitySessionStart); err != nil {
		s.logger.Error("failed to record session rating", "user_id", req.UserID, "error", err)
	}

	return result, nil
}

// resolveReferrer returns the referrer ID for a valid ref_<id> parameter naming an existing user
func (s *OnboardingService) resolveReferrer(ctx context.Context, req StartRequest) *int64 {
	if req.StartParam == "" {
		return nil
	}

	referrerID, err := s.deepLinks.ParseReferrerIDFromStart(req.StartParam)
	if err != nil {
		s.logger.Debug("start parameter is not a referral code", "user_id", req.UserID, "param", req.StartParam, "error", err)
		return nil
	}

	if referrerID == req.UserID {
		s.logger.Debug("self-referral ignored", "user_id", req.UserID)
		return nil
	}

	referrer, err := s.userRepo.GetUser(ctx, referrerID)
	if err != nil {
		s.logger.Error("failed to look up referrer", "referrer_id", referrerID, "error", err)
		return nil
	}
	if referrer == nil {
		s.logger.Info("referrer not found", "referrer_id", referrerID, "user_id", req.UserID)
		return nil
	}

	return &referrerID
}

func (s *OnboardingService) attributeReferral(ctx context.Context, referrerID int64, user *User) *RewardOutcome {
	referral := &Referral{
		ReferrerID: referrerID,
		ReferredID: user.ID,
		CreatedAt:  user.CreatedAt,
	}

	added, err := s.referralRepo.AddReferral(ctx, referral)
	if err != nil {
		s.logger.Error("failed to record referral", "referrer_id", referrerID, "user_id", user.ID, "error", err)
		return nil
	}
	if !added {
		s.logger.Warn("referral already recorded", "referrer_id", referrerID, "user_id", user.ID)
		return nil
	}

	return s.rewardService.OnNewReferredUser(ctx, referrerID, user.ID, user.FirstName)
}
