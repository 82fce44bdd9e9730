package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
)

// RewardRepository reads the premium grant history
type RewardRepository struct {
	queue *DBQueue
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(queue *DBQueue) *RewardRepository {
	return &RewardRepository{queue: queue}
}

// GetUserGrants returns all grants of a user, newest first
func (r *RewardRepository) GetUserGrants(ctx context.Context, userID int64) ([]*domain.RewardGrant, error) {
	var grants []*domain.RewardGrant

	err := r.queue.Execute(func(db *sql.DB) error {
		grants = nil

		rows, err := db.QueryContext(ctx,
			`SELECT id, user_id, source, granted_at, expires_at
			 FROM reward_grants WHERE user_id = ?
			 ORDER BY granted_at DESC, rowid DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var grant domain.RewardGrant
			var source string
			var grantedAt, expiresAt int64
			if err := rows.Scan(&grant.ID, &grant.UserID, &source, &grantedAt, &expiresAt); err != nil {
				return err
			}
			grant.Source = domain.GrantSource(source)
			grant.GrantedAt = time.Unix(grantedAt, 0)
			grant.ExpiresAt = time.Unix(expiresAt, 0)
			grants = append(grants, &grant)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return grants, nil
}
