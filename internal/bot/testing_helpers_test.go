package bot

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/ad/langbot-referrals/internal/config"
	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/locale"
	"github.com/ad/langbot-referrals/internal/logger"
	"github.com/ad/langbot-referrals/internal/storage"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	testAdminID   = int64(1)
	testPremium30 = 30 * 24 * time.Hour
)

type testEnv struct {
	handler   *BotHandler
	sender    *mockSender
	log       *mockLogger
	users     *storage.UserRepository
	referrals *storage.ReferralRepository
	sessions  *storage.ConversationStorage
	cfg       *config.Config
	localizer locale.Localizer
}

func testConfig() *config.Config {
	return &config.Config{
		AdminUserIDs:      []int64{testAdminID},
		Timezone:          time.UTC,
		Language:          locale.En,
		ReferralThreshold: 10,
		PremiumDuration:   testPremium30,
		PremiumPrice:      50000,
		Payment: config.PaymentDetails{
			CardNumber:  "8600 1234 5678 9012",
			CardHolder:  "A. Karimov",
			ClickNumber: "+998901234567",
		},
		AdminContact: "langbot_admin",
	}
}

// setupHandler wires a handler to an in-memory database and the English translations
func setupHandler(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	queue := storage.NewDBQueue(db)
	t.Cleanup(func() {
		queue.Close()
		_ = db.Close()
	})

	if err := storage.InitSchema(queue); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := storage.RunMigrations(queue); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	localizer, err := locale.NewLocalizer(context.Background(), locale.NewLocale(locale.En))
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	cfg := testConfig()
	sender := &mockSender{}
	log := &mockLogger{}

	users := storage.NewUserRepository(queue)
	referrals := storage.NewReferralRepository(queue)
	rewards := storage.NewRewardRepository(queue)
	sessions := storage.NewConversationStorage(queue, logger.NewWithWriter(logger.ERROR, io.Discard))

	policy := domain.RewardPolicy{Threshold: cfg.ReferralThreshold, PremiumDuration: cfg.PremiumDuration}
	deepLinks := domain.NewDeepLinkService("LangBot")
	notifications := domain.NewNotificationService(sender, localizer, cfg.Timezone, log)
	rewardService := domain.NewReferralRewardService(users, notifications, policy, log)
	ratingService := domain.NewRatingService(users, log)
	onboarding := domain.NewOnboardingService(users, referrals, rewardService, ratingService, deepLinks, log)
	premium := domain.NewPremiumService(users, rewards, sessions, notifications, log)

	handler := NewBotHandler(sender, onboarding, premium, users, referrals, deepLinks, policy, cfg, localizer, log)

	return &testEnv{
		handler:   handler,
		sender:    sender,
		log:       log,
		users:     users,
		referrals: referrals,
		sessions:  sessions,
		cfg:       cfg,
		localizer: localizer,
	}
}

func messageUpdate(userID int64, firstName, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: userID, FirstName: firstName},
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

func callbackUpdate(userID int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-" + data,
			From: models.User{ID: userID, FirstName: "Tester", Username: "tester"},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 50, Chat: models.Chat{ID: userID}},
			},
		},
	}
}

// start registers a user through /start
func (e *testEnv) start(t *testing.T, userID int64, firstName, text string) {
	t.Helper()
	e.handler.HandleStart(context.Background(), nil, messageUpdate(userID, firstName, text))
}

func (e *testEnv) press(userID int64, data string) {
	e.handler.HandleCallback(context.Background(), nil, callbackUpdate(userID, data))
}

func (e *testEnv) user(t *testing.T, userID int64) *domain.User {
	t.Helper()
	user, err := e.users.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to get user %d: %v", userID, err)
	}
	return user
}

func (e *testEnv) grantPremium(t *testing.T, userID int64) {
	t.Helper()
	grant := &domain.RewardGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Source:    domain.GrantSourceAdmin,
		GrantedAt: time.Now(),
		ExpiresAt: time.Now().Add(testPremium30),
	}
	if err := e.users.GrantPremium(context.Background(), grant); err != nil {
		t.Fatalf("Failed to grant premium: %v", err)
	}
}
