package domain

import (
	"context"
	"html"
	"strconv"
	"time"

	"github.com/ad/langbot-referrals/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const dateLayout = "2006-01-02"

// BotInterface defines the interface for bot operations needed by NotificationService
type BotInterface interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// NotificationService sends direct messages about referrals and premium.
// Delivery is best-effort: callers log the returned error and carry on.
type NotificationService struct {
	bot       BotInterface
	localizer locale.Localizer
	location  *time.Location
	logger    Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(b BotInterface, localizer locale.Localizer, location *time.Location, logger Logger) *NotificationService {
	if location == nil {
		location = time.UTC
	}
	return &NotificationService{
		bot:       b,
		localizer: localizer,
		location:  location,
		logger:    logger,
	}
}

// RenderReferralNotification builds the text for a referral outcome
func (ns *NotificationService) RenderReferralNotification(newUserName string, outcome RewardOutcome) string {
	name := html.EscapeString(newUserName)
	if name == "" {
		name = ns.localizer.MustLocalize(locale.AnonymousName)
	}

	if outcome.Kind == OutcomeMilestone {
		return ns.localizer.MustLocalizeWithTemplate(locale.ReferralMilestoneNotification,
			name,
			strconv.Itoa(outcome.Threshold),
			outcome.ExpiresAt.In(ns.location).Format(dateLayout),
		)
	}

	return ns.localizer.MustLocalizeWithTemplate(locale.ReferralProgressNotification,
		name,
		strconv.Itoa(outcome.Count),
		strconv.Itoa(outcome.Threshold),
		strconv.Itoa(outcome.Remaining),
	)
}

// SendReferralNotification sends a milestone or progress message to the referrer
func (ns *NotificationService) SendReferralNotification(ctx context.Context, referrerID int64, newUserName string, outcome RewardOutcome) error {
	_, err := ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    referrerID,
		Text:      ns.RenderReferralNotification(newUserName, outcome),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return err
	}

	ns.logger.Debug("referral notification sent", "referrer_id", referrerID, "outcome", outcome.Kind.String())
	return nil
}

// SendPremiumGrantedNotification tells a user that an admin activated premium for them
func (ns *NotificationService) SendPremiumGrantedNotification(ctx context.Context, userID int64, expiresAt time.Time) error {
	_, err := ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text: ns.localizer.MustLocalizeWithTemplate(locale.PremiumGrantedNotification,
			expiresAt.In(ns.location).Format(dateLayout),
		),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return err
	}

	ns.logger.Debug("premium notification sent", "user_id", userID)
	return nil
}
