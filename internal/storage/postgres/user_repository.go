package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by ID, or nil if the user does not exist
func (r *UserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	var expiresAt, referredBy sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, first_name, last_name, rating, total_sessions, words_learned,
		        is_premium, premium_expires_at, referral_count, referred_by, created_at, last_active_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Rating,
		&user.TotalSessions, &user.WordsLearned, &user.IsPremium, &expiresAt,
		&user.ReferralCount, &referredBy, &user.CreatedAt, &user.LastActiveAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.PremiumExpiresAt = fromUnix(expiresAt)
	if referredBy.Valid {
		id := referredBy.Int64
		user.ReferredBy = &id
	}
	return &user, nil
}

// CreateUser inserts a user unless one with the same ID exists
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, err
	}

	var referredBy interface{}
	if user.ReferredBy != nil {
		referredBy = *user.ReferredBy
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, first_name, last_name, is_premium, premium_expires_at,
		                    referral_count, referred_by, created_at, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id) DO NOTHING`,
		user.ID, user.Username, user.FirstName, user.LastName, user.IsPremium,
		toUnix(user.PremiumExpiresAt), user.ReferralCount, referredBy,
		user.CreatedAt, user.LastActiveAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// UpdateUserActivity stores the last activity time and counts a session
func (r *UserRepository) UpdateUserActivity(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_active_at = $1, total_sessions = total_sessions + 1 WHERE user_id = $2`,
		at, userID,
	)
	return err
}

// AddRating adds points to the user's rating in place
func (r *UserRepository) AddRating(ctx context.Context, userID int64, points float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET rating = rating + $1 WHERE user_id = $2`,
		points, userID,
	)
	return err
}

// GetUserStats retrieves the profile summary, or nil if the user does not exist
func (r *UserRepository) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var stats domain.UserStats
	var expiresAt sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT rating, total_sessions, words_learned, is_premium, referral_count, premium_expires_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(&stats.Rating, &stats.TotalSessions, &stats.WordsLearned, &stats.IsPremium, &stats.ReferralCount, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stats.PremiumExpiresAt = fromUnix(expiresAt)
	return &stats, nil
}

// IncrementReferralCount adds one to the referral count and returns the updated row
func (r *UserRepository) IncrementReferralCount(ctx context.Context, referrerID int64) (*domain.ReferrerSnapshot, error) {
	var snapshot domain.ReferrerSnapshot
	var expiresAt sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET referral_count = referral_count + 1
		 WHERE user_id = $1
		 RETURNING user_id, first_name, referral_count, is_premium, premium_expires_at`,
		referrerID,
	).Scan(&snapshot.UserID, &snapshot.FirstName, &snapshot.ReferralCount, &snapshot.IsPremium, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot.PremiumExpiresAt = fromUnix(expiresAt)
	return &snapshot, nil
}

// GrantPremium sets premium until grant.ExpiresAt and records the grant
func (r *UserRepository) GrantPremium(ctx context.Context, grant *domain.RewardGrant) error {
	if err := grant.Validate(); err != nil {
		return err
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET is_premium = TRUE, premium_expires_at = $1 WHERE user_id = $2`,
			grant.ExpiresAt.Unix(), grant.UserID,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrUserNotFound
		}

		return insertGrant(ctx, tx, grant)
	})
}

// GrantReferralReward grants premium and resets the count when no premium is active
func (r *UserRepository) GrantReferralReward(ctx context.Context, grant *domain.RewardGrant) (bool, error) {
	if err := grant.Validate(); err != nil {
		return false, err
	}

	var granted bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET is_premium = TRUE, premium_expires_at = $1, referral_count = 0
			 WHERE user_id = $2
			   AND (is_premium = FALSE OR (premium_expires_at IS NOT NULL AND premium_expires_at <= $3))`,
			grant.ExpiresAt.Unix(), grant.UserID, grant.GrantedAt.Unix(),
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		if err := insertGrant(ctx, tx, grant); err != nil {
			return err
		}
		granted = true
		return nil
	})

	return granted, err
}

func insertGrant(ctx context.Context, tx *sql.Tx, grant *domain.RewardGrant) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO reward_grants (id, user_id, source, granted_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		grant.ID, grant.UserID, string(grant.Source), grant.GrantedAt.Unix(), grant.ExpiresAt.Unix(),
	)
	return err
}

// RewardRepository reads the premium grant history
type RewardRepository struct {
	db *sql.DB
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(db *sql.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// GetUserGrants returns all grants of a user, newest first
func (r *RewardRepository) GetUserGrants(ctx context.Context, userID int64) ([]*domain.RewardGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source, granted_at, expires_at
		 FROM reward_grants WHERE user_id = $1
		 ORDER BY granted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var grants []*domain.RewardGrant
	for rows.Next() {
		var grant domain.RewardGrant
		var source string
		var grantedAt, expiresAt int64
		if err := rows.Scan(&grant.ID, &grant.UserID, &source, &grantedAt, &expiresAt); err != nil {
			return nil, err
		}
		grant.Source = domain.GrantSource(source)
		grant.GrantedAt = time.Unix(grantedAt, 0)
		grant.ExpiresAt = time.Unix(expiresAt, 0)
		grants = append(grants, &grant)
	}

	return grants, rows.Err()
}
