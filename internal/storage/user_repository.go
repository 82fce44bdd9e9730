package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
)

// UserRepository handles user data operations
type UserRepository struct {
	queue *DBQueue
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(queue *DBQueue) *UserRepository {
	return &UserRepository{queue: queue}
}

// GetUser retrieves a user by ID, or nil if the user does not exist
func (r *UserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	var expiresAt, referredBy sql.NullInt64

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT user_id, username, first_name, last_name, rating, total_sessions, words_learned,
			        is_premium, premium_expires_at, referral_count, referred_by, created_at, last_active_at
			 FROM users WHERE user_id = ?`,
			userID,
		).Scan(
			&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Rating,
			&user.TotalSessions, &user.WordsLearned, &user.IsPremium, &expiresAt,
			&user.ReferralCount, &referredBy, &user.CreatedAt, &user.LastActiveAt,
		)
	})

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

// CreateUser inserts a user unless one with the same ID exists.
// It reports whether a row was inserted.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, err
	}

	var created bool
	err := r.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx,
			`INSERT INTO users (user_id, username, first_name, last_name, is_premium, premium_expires_at,
			                    referral_count, referred_by, created_at, last_active_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id) DO NOTHING`,
			user.ID, user.Username, user.FirstName, user.LastName, user.IsPremium,
			toUnix(user.PremiumExpiresAt), user.ReferralCount, nullableID(user.ReferredBy),
			user.CreatedAt, user.LastActiveAt,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		created = rows == 1
		return nil
	})

	return created, err
}

// UpdateUserActivity stores the last activity time and counts a session
func (r *UserRepository) UpdateUserActivity(ctx context.Context, userID int64, at time.Time) error {
	return r.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`UPDATE users SET last_active_at = ?, total_sessions = total_sessions + 1 WHERE user_id = ?`,
			at, userID,
		)
		return err
	})
}

// AddRating adds points to the user's rating in place
func (r *UserRepository) AddRating(ctx context.Context, userID int64, points float64) error {
	return r.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`UPDATE users SET rating = rating + ? WHERE user_id = ?`,
			points, userID,
		)
		return err
	})
}

// GetUserStats retrieves the profile summary, or nil if the user does not exist
func (r *UserRepository) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var stats domain.UserStats
	var expiresAt sql.NullInt64

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT rating, total_sessions, words_learned, is_premium, referral_count, premium_expires_at
			 FROM users WHERE user_id = ?`,
			userID,
		).Scan(
			&stats.Rating, &stats.TotalSessions, &stats.WordsLearned,
			&stats.IsPremium, &stats.ReferralCount, &expiresAt,
		)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stats.PremiumExpiresAt = fromUnix(expiresAt)
	return &stats, nil
}

// IncrementReferralCount adds one to the referral count and returns the updated row in the same
// statement. It returns nil when the referrer does not exist.
func (r *UserRepository) IncrementReferralCount(ctx context.Context, referrerID int64) (*domain.ReferrerSnapshot, error) {
	var snapshot domain.ReferrerSnapshot
	var expiresAt sql.NullInt64

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`UPDATE users SET referral_count = referral_count + 1
			 WHERE user_id = ?
			 RETURNING user_id, first_name, referral_count, is_premium, premium_expires_at`,
			referrerID,
		).Scan(&snapshot.UserID, &snapshot.FirstName, &snapshot.ReferralCount, &snapshot.IsPremium, &expiresAt)
	})

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

	return r.queue.ExecuteTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET is_premium = 1, premium_expires_at = ? WHERE user_id = ?`,
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

// GrantReferralReward grants premium, resets the referral count and records the grant, but only
// when the user has no active premium at grant.GrantedAt
func (r *UserRepository) GrantReferralReward(ctx context.Context, grant *domain.RewardGrant) (bool, error) {
	if err := grant.Validate(); err != nil {
		return false, err
	}

	var granted bool
	err := r.queue.ExecuteTx(ctx, func(tx *sql.Tx) error {
		granted = false

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET is_premium = 1, premium_expires_at = ?, referral_count = 0
			 WHERE user_id = ?
			   AND (is_premium = 0 OR (premium_expires_at IS NOT NULL AND premium_expires_at <= ?))`,
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
		`INSERT INTO reward_grants (id, user_id, source, granted_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		grant.ID, grant.UserID, string(grant.Source), grant.GrantedAt.Unix(), grant.ExpiresAt.Unix(),
	)
	return err
}

func toUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
