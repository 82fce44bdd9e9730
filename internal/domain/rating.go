package domain

import (
	"context"
	"fmt"
)

// Activity is a user action that earns rating points
type Activity string

const (
	ActivitySessionStart  Activity = "session_start"
	ActivityTestCompleted Activity = "test_completed"
	ActivityAIMessage     Activity = "ai_message"
	ActivityQuizCompleted Activity = "quiz_completed"
)

// activityPoints maps each activity to its rating reward
var activityPoints = map[Activity]float64{
	ActivitySessionStart:  2,
	ActivityTestCompleted: 5,
	ActivityAIMessage:     1.5,
	ActivityQuizCompleted: 3,
}

// PointsFor returns the rating reward of an activity
func PointsFor(activity Activity) (float64, error) {
	points, ok := activityPoints[activity]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownActivity, activity)
	}
	return points, nil
}

// RatingService adds rating points for user activity
type RatingService struct {
	userRepo UserRepository
	logger   Logger
}

// NewRatingService creates a new RatingService
func NewRatingService(userRepo UserRepository, logger Logger) *RatingService {
	return &RatingService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Record adds the points of activity to the user's rating
func (rs *RatingService) Record(ctx context.Context, userID int64, activity Activity) error {
	points, err := PointsFor(activity)
	if err != nil {
		return err
	}

	if err := rs.userRepo.AddRating(ctx, userID, points); err != nil {
		return fmt.Errorf("failed to add rating: %w", err)
	}

	rs.logger.Debug("rating updated", "user_id", userID, "activity", string(activity), "points", points)
	return nil
}
