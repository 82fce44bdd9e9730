package domain

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrInvalidUserID     = errors.New("user ID must be set")
	ErrInvalidReferral   = errors.New("referral must link two users")
	ErrSelfReferral      = errors.New("user cannot refer themselves")
	ErrInvalidGrant      = errors.New("premium grant must expire after it is granted")
	ErrInvalidSource     = errors.New("invalid grant source")
	ErrUnknownActivity   = errors.New("unknown rating activity")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidLanguage   = errors.New("invalid conversation language")
	ErrNegativeReferrals = errors.New("referral count cannot be negative")
)

// User is a bot user record
type User struct {
	ID               int64
	Username         string
	FirstName        string
	LastName         string
	Rating           float64
	TotalSessions    int
	WordsLearned     int
	IsPremium        bool
	PremiumExpiresAt *time.Time
	ReferralCount    int
	ReferredBy       *int64 // fixed at creation
	CreatedAt        time.Time
	LastActiveAt     time.Time
}

// Validate validates the user data
func (u *User) Validate() error {
	if u.ID == 0 {
		return ErrInvalidUserID
	}
	if u.ReferralCount < 0 {
		return ErrNegativeReferrals
	}
	if u.ReferredBy != nil && *u.ReferredBy == u.ID {
		return ErrSelfReferral
	}
	return nil
}

// HasActivePremium reports whether premium is flagged and not yet expired at now.
// A flagged premium without an expiry never lapses.
func (u *User) HasActivePremium(now time.Time) bool {
	return premiumActive(u.IsPremium, u.PremiumExpiresAt, now)
}

// DisplayName returns the first name, falling back to @username
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return ""
}

func premiumActive(flag bool, expiresAt *time.Time, now time.Time) bool {
	if !flag {
		return false
	}
	return expiresAt == nil || expiresAt.After(now)
}

// Referral is an append-only record of one user inviting another
type Referral struct {
	ReferrerID int64
	ReferredID int64
	CreatedAt  time.Time
}

// Validate validates the referral data
func (r *Referral) Validate() error {
	if r.ReferrerID == 0 || r.ReferredID == 0 {
		return ErrInvalidReferral
	}
	if r.ReferrerID == r.ReferredID {
		return ErrSelfReferral
	}
	return nil
}

// ReferralEntry is a referral joined with the referred user's name
type ReferralEntry struct {
	ReferredID int64
	FirstName  string
	CreatedAt  time.Time
}

// ReferrerSnapshot is the referrer state returned by an atomic increment
type ReferrerSnapshot struct {
	UserID           int64
	FirstName        string
	ReferralCount    int
	IsPremium        bool
	PremiumExpiresAt *time.Time
}

// PremiumActive reports whether the referrer holds unexpired premium at now
func (s *ReferrerSnapshot) PremiumActive(now time.Time) bool {
	return premiumActive(s.IsPremium, s.PremiumExpiresAt, now)
}

// UserStats is the profile summary shown on menus
type UserStats struct {
	Rating           float64
	TotalSessions    int
	WordsLearned     int
	IsPremium        bool
	ReferralCount    int
	PremiumExpiresAt *time.Time
}

// PremiumActive reports whether premium is flagged and unexpired at now
func (s *UserStats) PremiumActive(now time.Time) bool {
	return premiumActive(s.IsPremium, s.PremiumExpiresAt, now)
}

// GrantSource tells how a premium period was obtained
type GrantSource string

const (
	GrantSourceReferral GrantSource = "referral"
	GrantSourceAdmin    GrantSource = "admin"
)

// RewardGrant is an audit record of a premium period
type RewardGrant struct {
	ID        string // UUID
	UserID    int64
	Source    GrantSource
	GrantedAt time.Time
	ExpiresAt time.Time
}

// Validate validates the grant data
func (g *RewardGrant) Validate() error {
	if g.UserID == 0 {
		return ErrInvalidUserID
	}
	if g.Source != GrantSourceReferral && g.Source != GrantSourceAdmin {
		return ErrInvalidSource
	}
	if !g.ExpiresAt.After(g.GrantedAt) {
		return ErrInvalidGrant
	}
	return nil
}

// ConversationLanguage is the target language of an AI practice session
type ConversationLanguage string

const (
	LanguageKorean   ConversationLanguage = "ko"
	LanguageJapanese ConversationLanguage = "ja"
)

// Valid reports whether the language is supported
func (l ConversationLanguage) Valid() bool {
	return l == LanguageKorean || l == LanguageJapanese
}
