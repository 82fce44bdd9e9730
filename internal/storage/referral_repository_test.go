package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAddReferralOncePerReferredUser(t *testing.T) {
	_, queue := setupTestDB(t)
	users := NewUserRepository(queue)
	repo := NewReferralRepository(queue)
	ctx := context.Background()

	createTestUser(t, users, 1, "A")
	createTestUser(t, users, 2, "B")
	createTestUser(t, users, 3, "C")

	added, err := repo.AddReferral(ctx, &domain.Referral{ReferrerID: 1, ReferredID: 3, CreatedAt: time.Now()})
	if err != nil || !added {
		t.Fatalf("Expected first referral to be added, got added=%v err=%v", added, err)
	}

	added, err = repo.AddReferral(ctx, &domain.Referral{ReferrerID: 2, ReferredID: 3, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("AddReferral failed: %v", err)
	}
	if added {
		t.Error("Expected second referral for the same user to be ignored")
	}

	count, _ := repo.CountReferrals(ctx, 2)
	if count != 0 {
		t.Errorf("Expected 0 referrals for second referrer, got %d", count)
	}
}

func TestAddReferralRejectsSelfReferral(t *testing.T) {
	_, queue := setupTestDB(t)
	repo := NewReferralRepository(queue)

	_, err := repo.AddReferral(context.Background(), &domain.Referral{ReferrerID: 5, ReferredID: 5, CreatedAt: time.Now()})
	if !errors.Is(err, domain.ErrSelfReferral) {
		t.Errorf("Expected ErrSelfReferral, got %v", err)
	}
}

// TestRecentReferralsNewestFirst checks ordering, limit and lifetime count
func TestRecentReferralsNewestFirst(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("recent referrals are newest first and limited", prop.ForAll(
		func(n int, limit int) bool {
			_, queue := setupTestDB(t)
			users := NewUserRepository(queue)
			repo := NewReferralRepository(queue)
			ctx := context.Background()

			createTestUser(t, users, 1, "Referrer")
			base := time.Now().Truncate(time.Second)
			for i := 0; i < n; i++ {
				referredID := int64(100 + i)
				createTestUser(t, users, referredID, "Friend")
				if _, err := repo.AddReferral(ctx, &domain.Referral{ReferrerID: 1, ReferredID: referredID, CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
					t.Logf("AddReferral failed: %v", err)
					return false
				}
			}

			entries, err := repo.GetRecentReferrals(ctx, 1, limit)
			if err != nil {
				return false
			}

			expected := n
			if limit < n {
				expected = limit
			}
			if len(entries) != expected {
				t.Logf("Expected %d entries, got %d", expected, len(entries))
				return false
			}
			for i, entry := range entries {
				if entry.ReferredID != int64(100+n-1-i) {
					return false
				}
				if entry.FirstName != "Friend" {
					return false
				}
			}

			count, err := repo.CountReferrals(ctx, 1)
			return err == nil && count == n
		},
		gen.IntRange(0, 15),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
