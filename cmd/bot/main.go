package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/langbot-referrals/internal/bot"
	"github.com/ad/langbot-referrals/internal/config"
	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/locale"
	"github.com/ad/langbot-referrals/internal/logger"
	"github.com/ad/langbot-referrals/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
)

const staleSessionAge = 24 * time.Hour

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logLevel)
	log.Info("Starting language bot", "log_level", cfg.LogLevel, "language", cfg.Language)

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := openStores(ctx, cfg, log)
	if errors.Is(err, storage.ErrInstanceLocked) {
		log.Error("Another bot instance is running", "path", cfg.DatabasePath)
		os.Exit(1)
	}
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer db.close()

	log.Info("Repositories created")

	// Cleanup stale conversation sessions on startup
	if err := db.cleanupSessions(ctx, staleSessionAge); err != nil {
		log.Error("Failed to cleanup stale conversation sessions", "error", err)
		// Don't exit, just log the error
	}

	localizer, err := locale.NewLocalizer(ctx, locale.NewLocale(cfg.Language))
	if err != nil {
		log.Error("Failed to create localizer", "error", err)
		os.Exit(1)
	}

	botLog := log.Named("telegram")
	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			botLog.Debug("unhandled update", "update_id", update.ID)
		}),
		tgbot.WithErrorsHandler(func(err error) {
			botLog.Error("telegram API error", "error", err)
		}),
	}

	b, err := tgbot.New(cfg.TelegramToken, opts...)
	if err != nil {
		log.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	log.Info("Telegram bot created")

	// Get bot info for deep-link service
	botInfo, err := b.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		os.Exit(1)
	}
	log.Info("Bot info retrieved", "username", botInfo.Username)

	deepLinkService := domain.NewDeepLinkService(botInfo.Username)

	policy := domain.RewardPolicy{
		Threshold:       cfg.ReferralThreshold,
		PremiumDuration: cfg.PremiumDuration,
	}

	domainLog := log.Named("domain")
	notificationService := domain.NewNotificationService(b, localizer, cfg.Timezone, domainLog)
	rewardService := domain.NewReferralRewardService(db.users, notificationService, policy, log.Named("referrals"))
	ratingService := domain.NewRatingService(db.users, domainLog)
	onboardingService := domain.NewOnboardingService(db.users, db.referrals, rewardService, ratingService, deepLinkService, log.Named("onboarding"))
	premiumService := domain.NewPremiumService(db.users, db.rewards, db.sessions, notificationService, log.Named("premium"))

	log.Info("Domain services created", "referral_threshold", policy.Threshold, "premium_duration", policy.PremiumDuration.String())

	// Create bot handler
	handler := bot.NewBotHandler(
		b,
		onboardingService,
		premiumService,
		db.users,
		db.referrals,
		deepLinkService,
		policy,
		cfg,
		localizer,
		log.Named("handler"),
	)

	// Register command handlers
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, handler.HandleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/grant_premium", tgbot.MatchTypePrefix, handler.HandleGrantPremium)

	// Register callback query handler
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, handler.HandleCallback)

	log.Info("Command handlers registered")

	// Start bot polling in a goroutine
	go func() {
		log.Info("Starting bot polling")
		b.Start(ctx)
	}()

	log.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("Shutdown signal received, stopping bot...")
	log.Info("Bot stopped successfully")
}
