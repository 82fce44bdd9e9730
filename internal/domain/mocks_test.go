package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MockUserRepo is an in-memory UserRepository with the same conditional grant rules as storage
type MockUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*User
	grants []*RewardGrant

	incrementErr error
	grantErr     error
	denyGrant    bool
	statsErr     error
	activityErr  error

	// beforeGrant runs under the lock ahead of the conditional grant
	beforeGrant func(u *User)
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[int64]*User)}
}

func (m *MockUserRepo) put(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
}

func (m *MockUserRepo) GetUser(ctx context.Context, userID int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user *User) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.ID]; exists {
		return false, nil
	}
	u := *user
	m.users[user.ID] = &u
	return true, nil
}

func (m *MockUserRepo) UpdateUserActivity(ctx context.Context, userID int64, at time.Time) error {
	if m.activityErr != nil {
		return m.activityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LastActiveAt = at
		u.TotalSessions++
	}
	return nil
}

func (m *MockUserRepo) AddRating(ctx context.Context, userID int64, points float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Rating += points
	}
	return nil
}

func (m *MockUserRepo) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &UserStats{
		Rating:           u.Rating,
		TotalSessions:    u.TotalSessions,
		WordsLearned:     u.WordsLearned,
		IsPremium:        u.IsPremium,
		ReferralCount:    u.ReferralCount,
		PremiumExpiresAt: u.PremiumExpiresAt,
	}, nil
}

func (m *MockUserRepo) IncrementReferralCount(ctx context.Context, referrerID int64) (*ReferrerSnapshot, error) {
	if m.incrementErr != nil {
		return nil, m.incrementErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[referrerID]
	if !ok {
		return nil, nil
	}
	u.ReferralCount++
	return &ReferrerSnapshot{
		UserID:           u.ID,
		FirstName:        u.FirstName,
		ReferralCount:    u.ReferralCount,
		IsPremium:        u.IsPremium,
		PremiumExpiresAt: u.PremiumExpiresAt,
	}, nil
}

func (m *MockUserRepo) GrantPremium(ctx context.Context, grant *RewardGrant) error {
	if err := grant.Validate(); err != nil {
		return err
	}
	if m.grantErr != nil {
		return m.grantErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[grant.UserID]
	if !ok {
		return ErrUserNotFound
	}
	expires := grant.ExpiresAt
	u.IsPremium = true
	u.PremiumExpiresAt = &expires
	m.grants = append(m.grants, grant)
	return nil
}

func (m *MockUserRepo) GrantReferralReward(ctx context.Context, grant *RewardGrant) (bool, error) {
	if err := grant.Validate(); err != nil {
		return false, err
	}
	if m.grantErr != nil {
		return false, m.grantErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[grant.UserID]
	if ok && m.beforeGrant != nil {
		m.beforeGrant(u)
	}
	if !ok || m.denyGrant || u.HasActivePremium(grant.GrantedAt) {
		return false, nil
	}
	expires := grant.ExpiresAt
	u.IsPremium = true
	u.PremiumExpiresAt = &expires
	u.ReferralCount = 0
	m.grants = append(m.grants, grant)
	return true, nil
}

func (m *MockUserRepo) GetUserGrants(ctx context.Context, userID int64) ([]*RewardGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var grants []*RewardGrant
	for _, g := range m.grants {
		if g.UserID == userID {
			grants = append(grants, g)
		}
	}
	sort.SliceStable(grants, func(i, j int) bool { return grants[i].GrantedAt.After(grants[j].GrantedAt) })
	return grants, nil
}

func (m *MockUserRepo) grantCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grants)
}

// MockReferralRepo keeps referrals in insertion order
type MockReferralRepo struct {
	mu        sync.Mutex
	referrals []*Referral
	addErr    error
}

func (m *MockReferralRepo) AddReferral(ctx context.Context, referral *Referral) (bool, error) {
	if err := referral.Validate(); err != nil {
		return false, err
	}
	if m.addErr != nil {
		return false, m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.referrals {
		if r.ReferredID == referral.ReferredID {
			return false, nil
		}
	}
	copied := *referral
	m.referrals = append(m.referrals, &copied)
	return true, nil
}

func (m *MockReferralRepo) GetRecentReferrals(ctx context.Context, referrerID int64, limit int) ([]*ReferralEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*ReferralEntry
	for i := len(m.referrals) - 1; i >= 0 && len(entries) < limit; i-- {
		r := m.referrals[i]
		if r.ReferrerID == referrerID {
			entries = append(entries, &ReferralEntry{ReferredID: r.ReferredID, CreatedAt: r.CreatedAt})
		}
	}
	return entries, nil
}

func (m *MockReferralRepo) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID {
			count++
		}
	}
	return count, nil
}

// MockSessionStore keeps conversation sessions in memory
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[int64]ConversationLanguage
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[int64]ConversationLanguage)}
}

func (m *MockSessionStore) Get(ctx context.Context, userID int64) (ConversationLanguage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID], nil
}

func (m *MockSessionStore) Set(ctx context.Context, userID int64, language ConversationLanguage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = language
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// MockNotifier records referral and premium notifications
type MockNotifier struct {
	mu       sync.Mutex
	referral []MockReferralNotification
	premium  []time.Time
	err      error
}

type MockReferralNotification struct {
	ReferrerID  int64
	NewUserName string
	Outcome     RewardOutcome
}

func (m *MockNotifier) SendReferralNotification(ctx context.Context, referrerID int64, newUserName string, outcome RewardOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referral = append(m.referral, MockReferralNotification{ReferrerID: referrerID, NewUserName: newUserName, Outcome: outcome})
	return m.err
}

func (m *MockNotifier) SendPremiumGrantedNotification(ctx context.Context, userID int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.premium = append(m.premium, expiresAt)
	return m.err
}

// MockNotificationBot records sent messages
type MockNotificationBot struct {
	sent []*bot.SendMessageParams
	err  error
}

func (m *MockNotificationBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.sent = append(m.sent, params)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Message{ID: len(m.sent)}, nil
}

// MockLogger records log entries by level
type MockLogger struct {
	mu      sync.Mutex
	entries []string
}

func (m *MockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, level+": "+msg)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.record("INFO", msg) }
func (m *MockLogger) Error(msg string, args ...interface{}) { m.record("ERROR", msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG", msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.record("WARN", msg) }

func (m *MockLogger) has(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e == level+": "+msg {
			return true
		}
	}
	return false
}

// MockLocalizer renders "Key" or "Key:f1|f2|..." so tests can assert on the parameters
type MockLocalizer struct{}

func (m *MockLocalizer) GetLocale() string { return "en" }

func (m *MockLocalizer) MustLocalize(id string) string { return id }

func (m *MockLocalizer) MustLocalizeWithTemplate(id string, fields ...string) string {
	return fmt.Sprintf("%s:%s", id, strings.Join(fields, "|"))
}
