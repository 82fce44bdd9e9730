package bot

import (
	"context"
	"errors"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/ad/langbot-referrals/internal/config"
	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the part of the Telegram API the handler uses
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// screen is a message body with its inline keyboard
type screen struct {
	text     string
	keyboard *models.InlineKeyboardMarkup
}

// callbackResult tells HandleCallback what to render and how to answer the query
type callbackResult struct {
	screen    *screen
	alert     string
	showAlert bool
}

type callbackFunc func(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error)

// BotHandler handles all Telegram bot interactions
type BotHandler struct {
	sender          Sender
	onboarding      *domain.OnboardingService
	premium         *domain.PremiumService
	userRepo        domain.UserRepository
	referralRepo    domain.ReferralRepository
	deepLinkService *domain.DeepLinkService
	policy          domain.RewardPolicy
	config          *config.Config
	localizer       locale.Localizer
	logger          domain.Logger
	callbacks       map[string]callbackFunc
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	sender Sender,
	onboarding *domain.OnboardingService,
	premium *domain.PremiumService,
	userRepo domain.UserRepository,
	referralRepo domain.ReferralRepository,
	deepLinkService *domain.DeepLinkService,
	policy domain.RewardPolicy,
	cfg *config.Config,
	localizer locale.Localizer,
	logger domain.Logger,
) *BotHandler {
	h := &BotHandler{
		sender:          sender,
		onboarding:      onboarding,
		premium:         premium,
		userRepo:        userRepo,
		referralRepo:    referralRepo,
		deepLinkService: deepLinkService,
		policy:          policy,
		config:          cfg,
		localizer:       localizer,
		logger:          logger,
	}

	h.callbacks = map[string]callbackFunc{
		"main_menu":             h.mainMenuCallback,
		"premium":               h.premiumCallback,
		"referral_program":      h.referralProgramCallback,
		"copy_referral_link":    h.copyReferralLinkCallback,
		"referral_stats":        h.referralStatsCallback,
		"my_rewards":            h.myRewardsCallback,
		"referral_info":         h.referralInfoCallback,
		"premium_purchase":      h.premiumPurchaseCallback,
		"copy_card_info":        h.copyCardCallback,
		"copy_click_number":     h.copyClickCallback,
		"copy_humo_number":      h.copyHumoCallback,
		"send_payment_proof":    h.paymentProofCallback,
		"rating":                h.ratingCallback,
		"conversation":          h.conversationCallback,
		"ai_conversation":       h.conversationCallback,
		"korean_conversation":   h.startConversationCallback(domain.LanguageKorean),
		"japanese_conversation": h.startConversationCallback(domain.LanguageJapanese),
		"conversation_tips":     h.conversationTipsCallback,
		"conversation_end":      h.endConversationCallback,
		"admin_panel":           h.adminPanelCallback,
	}

	return h
}

// isAdmin checks if a user ID is in the admin list
func (h *BotHandler) isAdmin(userID int64) bool {
	return h.config.IsAdmin(userID)
}

// requireAdmin checks that the message sender is an admin and replies otherwise
func (h *BotHandler) requireAdmin(ctx context.Context, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}

	userID := update.Message.From.ID
	if h.isAdmin(userID) {
		return true
	}

	h.logger.Warn("unauthorized admin command attempt", "user_id", userID)
	h.sendText(ctx, update.Message.Chat.ID, h.localizer.MustLocalize(locale.AdminOnlyAlert), nil)
	return false
}

// logAdminAction logs an admin action to the logger
func (h *BotHandler) logAdminAction(adminID int64, action string, targetUserID int64, details string) {
	h.logger.Info("admin action",
		"admin_user_id", adminID,
		"action", action,
		"target_user_id", targetUserID,
		"details", details,
		"timestamp", time.Now(),
	)
}

func (h *BotHandler) sendText(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	if _, err := h.sender.SendMessage(ctx, params); err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// HandleStart handles the /start command with an optional ref_<id> parameter
func (h *BotHandler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	var startParam string
	if parts := strings.Fields(update.Message.Text); len(parts) > 1 {
		startParam = parts[1]
	}

	result, err := h.onboarding.RegisterStart(ctx, domain.StartRequest{
		UserID:     from.ID,
		Username:   from.Username,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
		StartParam: startParam,
	})
	if err != nil {
		h.logger.Error("failed to register user", "user_id", from.ID, "error", err)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	if result.Created {
		h.logger.Info("new user started bot", "user_id", from.ID, "referred", result.ReferrerID != nil)
	}

	s := h.mainMenuScreen(from.ID, from.FirstName)
	h.sendText(ctx, chatID, s.text, s.keyboard)
}

// HandleGrantPremium handles /grant_premium <user_id> [days] sent by an admin after payment
func (h *BotHandler) HandleGrantPremium(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, update) {
		return
	}

	adminID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.GrantPremiumUsage), nil)
		return
	}

	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.GrantPremiumInvalidUser), nil)
		return
	}

	duration := h.policy.PremiumDuration
	if len(parts) > 2 {
		days, err := strconv.Atoi(parts[2])
		if err != nil || days <= 0 {
			h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.GrantPremiumInvalidDays), nil)
			return
		}
		duration = time.Duration(days) * 24 * time.Hour
	}

	grant, err := h.premium.GrantManual(ctx, userID, duration)
	if errors.Is(err, domain.ErrUserNotFound) {
		h.sendText(ctx, chatID, h.localizer.MustLocalizeWithTemplate(locale.GrantPremiumUserNotFound, strconv.FormatInt(userID, 10)), nil)
		return
	}
	if err != nil {
		h.logger.Error("failed to grant premium", "admin_user_id", adminID, "user_id", userID, "error", err)
		h.sendText(ctx, chatID, h.localizer.MustLocalize(locale.GrantPremiumFailed), nil)
		return
	}

	h.logAdminAction(adminID, "grant_premium", userID, "expires_at="+grant.ExpiresAt.Format(time.RFC3339))

	h.sendText(ctx, chatID, h.localizer.MustLocalizeWithTemplate(locale.GrantPremiumSuccess,
		strconv.FormatInt(userID, 10),
		h.formatDate(grant.ExpiresAt),
	), nil)
}

// HandleCallback routes inline keyboard presses through the callback table.
// Every query is answered, unknown data silently.
func (h *BotHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	userID := callback.From.ID

	handle, ok := h.callbacks[callback.Data]
	if !ok {
		h.logger.Debug("unknown callback data", "user_id", userID, "data", callback.Data)
		h.answerCallback(ctx, callback, "", false)
		return
	}

	result, err := handle(ctx, callback)
	if errors.Is(err, domain.ErrUserNotFound) {
		h.answerCallback(ctx, callback, h.localizer.MustLocalize(locale.ErrorUserNotFound), true)
		return
	}
	if err != nil {
		h.logger.Error("callback handling failed", "user_id", userID, "data", callback.Data, "error", err)
		h.answerCallback(ctx, callback, h.localizer.MustLocalize(locale.ErrorGeneric), true)
		return
	}

	if result.screen != nil {
		h.showScreen(ctx, callback, result.screen)
	}

	h.answerCallback(ctx, callback, result.alert, result.showAlert)
}

func (h *BotHandler) answerCallback(ctx context.Context, callback *models.CallbackQuery, text string, showAlert bool) {
	_, err := h.sender.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
		Text:            text,
		ShowAlert:       showAlert,
	})
	if err != nil {
		h.logger.Warn("failed to answer callback query", "user_id", callback.From.ID, "error", err)
	}
}

// showScreen replaces the message carrying the keyboard, or sends a new one when that message
// is no longer accessible
func (h *BotHandler) showScreen(ctx context.Context, callback *models.CallbackQuery, s *screen) {
	if callback.Message.Message == nil {
		h.sendText(ctx, callback.From.ID, s.text, s.keyboard)
		return
	}

	msg := callback.Message.Message
	editMessage(ctx, h.sender, h.logger, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        s.text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: s.keyboard,
	})
}

// displayName returns the escaped first name or the localized fallback
func (h *BotHandler) displayName(firstName string) string {
	if firstName == "" {
		return h.localizer.MustLocalize(locale.DefaultUserName)
	}
	return html.EscapeString(firstName)
}
