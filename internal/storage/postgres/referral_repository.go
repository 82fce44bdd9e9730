package postgres

import (
	"context"
	"database/sql"

	"github.com/ad/langbot-referrals/internal/domain"
)

// ReferralRepository handles the referral log
type ReferralRepository struct {
	db *sql.DB
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(db *sql.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// AddReferral records a referral; a second referral for the same referred user is ignored
func (r *ReferralRepository) AddReferral(ctx context.Context, referral *domain.Referral) (bool, error) {
	if err := referral.Validate(); err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO referrals (referrer_id, referred_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (referred_id) DO NOTHING`,
		referral.ReferrerID, referral.ReferredID, referral.CreatedAt,
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

// GetRecentReferrals returns the latest referrals of a referrer, newest first
func (r *ReferralRepository) GetRecentReferrals(ctx context.Context, referrerID int64, limit int) ([]*domain.ReferralEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.referred_id, COALESCE(u.first_name, ''), r.created_at
		 FROM referrals r
		 LEFT JOIN users u ON u.user_id = r.referred_id
		 WHERE r.referrer_id = $1
		 ORDER BY r.id DESC
		 LIMIT $2`,
		referrerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.ReferralEntry
	for rows.Next() {
		var entry domain.ReferralEntry
		if err := rows.Scan(&entry.ReferredID, &entry.FirstName, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// CountReferrals returns the lifetime number of referrals of a referrer
func (r *ReferralRepository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`,
		referrerID,
	).Scan(&count)
	return count, err
}
