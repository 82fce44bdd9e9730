package storage

import (
	"context"
	"database/sql"

	"github.com/ad/langbot-referrals/internal/domain"
)

// ReferralRepository handles the referral log
type ReferralRepository struct {
	queue *DBQueue
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(queue *DBQueue) *ReferralRepository {
	return &ReferralRepository{queue: queue}
}

// AddReferral records a referral; a second referral for the same referred user is ignored
func (r *ReferralRepository) AddReferral(ctx context.Context, referral *domain.Referral) (bool, error) {
	if err := referral.Validate(); err != nil {
		return false, err
	}

	var added bool
	err := r.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx,
			`INSERT INTO referrals (referrer_id, referred_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT(referred_id) DO NOTHING`,
			referral.ReferrerID, referral.ReferredID, referral.CreatedAt,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		added = rows == 1
		return nil
	})

	return added, err
}

// GetRecentReferrals returns the latest referrals of a referrer, newest first
func (r *ReferralRepository) GetRecentReferrals(ctx context.Context, referrerID int64, limit int) ([]*domain.ReferralEntry, error) {
	var entries []*domain.ReferralEntry

	err := r.queue.Execute(func(db *sql.DB) error {
		entries = nil

		rows, err := db.QueryContext(ctx,
			`SELECT r.referred_id, COALESCE(u.first_name, ''), r.created_at
			 FROM referrals r
			 LEFT JOIN users u ON u.user_id = r.referred_id
			 WHERE r.referrer_id = ?
			 ORDER BY r.id DESC
			 LIMIT ?`,
			referrerID, limit,
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var entry domain.ReferralEntry
			if err := rows.Scan(&entry.ReferredID, &entry.FirstName, &entry.CreatedAt); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// CountReferrals returns the lifetime number of referrals of a referrer
func (r *ReferralRepository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM referrals WHERE referrer_id = ?`,
			referrerID,
		).Scan(&count)
	})
	return count, err
}
