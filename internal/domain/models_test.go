package domain

import (
	"errors"
	"testing"
	"time"
)

func TestUserValidation(t *testing.T) {
	self := int64(5)
	other := int64(6)

	tests := []struct {
		name        string
		user        User
		expectedErr error
	}{
		{"valid user", User{ID: 5}, nil},
		{"valid referred user", User{ID: 5, ReferredBy: &other}, nil},
		{"missing ID", User{}, ErrInvalidUserID},
		{"negative referral count", User{ID: 5, ReferralCount: -1}, ErrNegativeReferrals},
		{"self referral", User{ID: 5, ReferredBy: &self}, ErrSelfReferral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestHasActivePremium(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		isPremium bool
		expiresAt *time.Time
		want      bool
	}{
		{"not premium", false, nil, false},
		{"flag without expiry", true, nil, true},
		{"unexpired", true, &future, true},
		{"expired", true, &past, false},
		{"expires exactly now", true, &now, false},
		{"stale expiry without flag", false, &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{ID: 1, IsPremium: tt.isPremium, PremiumExpiresAt: tt.expiresAt}
			if got := user.HasActivePremium(now); got != tt.want {
				t.Errorf("User.HasActivePremium = %v, want %v", got, tt.want)
			}

			snapshot := ReferrerSnapshot{IsPremium: tt.isPremium, PremiumExpiresAt: tt.expiresAt}
			if got := snapshot.PremiumActive(now); got != tt.want {
				t.Errorf("ReferrerSnapshot.PremiumActive = %v, want %v", got, tt.want)
			}

			stats := UserStats{IsPremium: tt.isPremium, PremiumExpiresAt: tt.expiresAt}
			if got := stats.PremiumActive(now); got != tt.want {
				t.Errorf("UserStats.PremiumActive = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{FirstName: "Aziz", Username: "aziz"}, "Aziz"},
		{User{Username: "aziz"}, "@aziz"},
		{User{}, ""},
	}

	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestReferralValidation(t *testing.T) {
	tests := []struct {
		name        string
		referral    Referral
		expectedErr error
	}{
		{"valid", Referral{ReferrerID: 1, ReferredID: 2}, nil},
		{"missing referrer", Referral{ReferredID: 2}, ErrInvalidReferral},
		{"missing referred", Referral{ReferrerID: 1}, ErrInvalidReferral},
		{"self", Referral{ReferrerID: 3, ReferredID: 3}, ErrSelfReferral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.referral.Validate(); !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestRewardGrantValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		grant       RewardGrant
		expectedErr error
	}{
		{"valid referral", RewardGrant{UserID: 1, Source: GrantSourceReferral, GrantedAt: now, ExpiresAt: now.Add(time.Hour)}, nil},
		{"valid admin", RewardGrant{UserID: 1, Source: GrantSourceAdmin, GrantedAt: now, ExpiresAt: now.Add(time.Hour)}, nil},
		{"missing user", RewardGrant{Source: GrantSourceAdmin, GrantedAt: now, ExpiresAt: now.Add(time.Hour)}, ErrInvalidUserID},
		{"unknown source", RewardGrant{UserID: 1, Source: "gift", GrantedAt: now, ExpiresAt: now.Add(time.Hour)}, ErrInvalidSource},
		{"empty period", RewardGrant{UserID: 1, Source: GrantSourceAdmin, GrantedAt: now, ExpiresAt: now}, ErrInvalidGrant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.grant.Validate(); !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestConversationLanguageValid(t *testing.T) {
	for _, lang := range []ConversationLanguage{LanguageKorean, LanguageJapanese} {
		if !lang.Valid() {
			t.Errorf("Expected %s to be valid", lang)
		}
	}
	for _, lang := range []ConversationLanguage{"", "en", "KO"} {
		if lang.Valid() {
			t.Errorf("Expected %q to be invalid", lang)
		}
	}
}
