package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"
	"github.com/ad/langbot-referrals/internal/locale"

	"github.com/go-telegram/bot/models"
)

const recentReferralsLimit = 5

// loadUser returns the stored user or domain.ErrUserNotFound for users who never sent /start
func (h *BotHandler) loadUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := h.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (h *BotHandler) mainMenuScreen(userID int64, firstName string) *screen {
	return &screen{
		text:     h.localizer.MustLocalizeWithTemplate(locale.WelcomeMessage, h.displayName(firstName)),
		keyboard: h.mainMenuKeyboard(h.isAdmin(userID)),
	}
}

func (h *BotHandler) mainMenuCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	return &callbackResult{screen: h.mainMenuScreen(callback.From.ID, callback.From.FirstName)}, nil
}

func (h *BotHandler) premiumCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	user, err := h.loadUser(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}

	if user.HasActivePremium(time.Now()) {
		expiry := h.localizer.MustLocalize(locale.PremiumNoExpiry)
		if user.PremiumExpiresAt != nil {
			expiry = h.formatDate(*user.PremiumExpiresAt)
		}
		return &callbackResult{screen: &screen{
			text:     h.localizer.MustLocalizeWithTemplate(locale.PremiumActiveText, expiry),
			keyboard: h.premiumActiveKeyboard(),
		}}, nil
	}

	threshold := h.policy.Threshold
	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.PremiumOfferText,
			formatAmount(h.config.PremiumPrice),
			strconv.Itoa(user.ReferralCount),
			strconv.Itoa(threshold),
			strconv.Itoa(remainingReferrals(user.ReferralCount, threshold)),
		),
		keyboard: h.premiumOfferKeyboard(),
	}}, nil
}

func (h *BotHandler) referralProgramCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	user, err := h.loadUser(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}

	threshold := h.policy.Threshold
	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.ReferralProgramText,
			strconv.Itoa(user.ReferralCount),
			strconv.Itoa(threshold),
			strconv.Itoa(remainingReferrals(user.ReferralCount, threshold)),
			progressBar(user.ReferralCount, threshold),
			h.deepLinkService.GenerateReferralLink(user.ID),
			strconv.Itoa(durationDays(h.policy.PremiumDuration)),
			formatAmount(h.config.PremiumPrice),
		),
		keyboard: h.referralProgramKeyboard(),
	}}, nil
}

func (h *BotHandler) copyReferralLinkCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	return &callbackResult{
		screen: &screen{
			text: h.localizer.MustLocalizeWithTemplate(locale.ReferralLinkText,
				h.deepLinkService.GenerateReferralLink(callback.From.ID),
				strconv.Itoa(h.policy.Threshold),
				strconv.Itoa(durationDays(h.policy.PremiumDuration)),
			),
			keyboard: h.referralLinkKeyboard(),
		},
		alert: h.localizer.MustLocalize(locale.ReferralLinkReadyAlert),
	}, nil
}

func (h *BotHandler) referralStatsCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	user, err := h.loadUser(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}

	total, err := h.referralRepo.CountReferrals(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	recent, err := h.referralRepo.GetRecentReferrals(ctx, user.ID, recentReferralsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent referrals: %w", err)
	}

	threshold := h.policy.Threshold
	remaining := remainingReferrals(user.ReferralCount, threshold)

	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.ReferralStatsText,
			strconv.Itoa(user.ReferralCount),
			strconv.Itoa(threshold),
			strconv.Itoa(remaining),
			progressBar(user.ReferralCount, threshold),
			strconv.Itoa(total),
			formatAmount(h.config.PremiumPrice),
			h.recentReferralsList(recent),
			strconv.Itoa(durationDays(h.policy.PremiumDuration)),
		),
		keyboard: h.referralStatsKeyboard(),
	}}, nil
}

func (h *BotHandler) recentReferralsList(entries []*domain.ReferralEntry) string {
	if len(entries) == 0 {
		return h.localizer.MustLocalize(locale.ReferralStatsEmpty)
	}

	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		name := html.EscapeString(entry.FirstName)
		if name == "" {
			name = h.localizer.MustLocalize(locale.AnonymousName)
		}

		date := h.localizer.MustLocalize(locale.UnknownDate)
		if !entry.CreatedAt.IsZero() {
			date = h.formatDate(entry.CreatedAt)
		}

		lines = append(lines, h.localizer.MustLocalizeWithTemplate(locale.ReferralStatsEntry,
			strconv.Itoa(i+1),
			name,
			date,
		))
	}
	return strings.Join(lines, "\n")
}

func (h *BotHandler) myRewardsCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	user, err := h.loadUser(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}

	grants, err := h.premium.Grants(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get premium grants: %w", err)
	}

	referralGrants := 0
	for _, g := range grants {
		if g.Source == domain.GrantSourceReferral {
			referralGrants++
		}
	}

	days := strconv.Itoa(durationDays(h.policy.PremiumDuration))

	summary := h.localizer.MustLocalize(locale.MyRewardsNone)
	if referralGrants > 0 {
		summary = h.localizer.MustLocalizeWithTemplate(locale.MyRewardsSummary,
			strconv.Itoa(referralGrants),
			formatAmount(int64(referralGrants)*h.config.PremiumPrice),
			days,
		)
	}

	status := h.localizer.MustLocalize(locale.PremiumStatusOff)
	expiryLine := ""
	if user.HasActivePremium(time.Now()) {
		status = h.localizer.MustLocalize(locale.PremiumStatusOn)
		if user.PremiumExpiresAt != nil {
			expiryLine = h.localizer.MustLocalizeWithTemplate(locale.MyRewardsExpiryLine, h.formatDate(*user.PremiumExpiresAt))
		}
	}

	threshold := h.policy.Threshold
	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.MyRewardsText,
			strconv.Itoa(user.ReferralCount),
			strconv.Itoa(threshold),
			status,
			expiryLine,
			summary,
			strconv.Itoa(remainingReferrals(user.ReferralCount, threshold)),
			strconv.Itoa(progressPercent(user.ReferralCount, threshold)),
			days,
			formatAmount(h.config.PremiumPrice),
		),
		keyboard: h.myRewardsKeyboard(),
	}}, nil
}

func (h *BotHandler) referralInfoCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	user, err := h.loadUser(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}

	threshold := h.policy.Threshold
	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.ReferralInfoText,
			formatAmount(h.config.PremiumPrice),
			strconv.Itoa(threshold),
			strconv.Itoa(user.ReferralCount),
			strconv.Itoa(remainingReferrals(user.ReferralCount, threshold)),
		),
		keyboard: h.referralInfoKeyboard(),
	}}, nil
}

// paymentDetail returns the configured value or the localized placeholder
func (h *BotHandler) paymentDetail(value string) string {
	if value == "" {
		return h.localizer.MustLocalize(locale.PaymentDetailMissing)
	}
	return html.EscapeString(value)
}

func (h *BotHandler) premiumPurchaseCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	days := durationDays(h.policy.PremiumDuration)
	perDay := h.config.PremiumPrice
	if days > 0 {
		perDay = h.config.PremiumPrice / int64(days)
	}

	payment := h.config.Payment
	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.PremiumPurchaseText,
			formatAmount(h.config.PremiumPrice),
			formatAmount(perDay),
			strconv.Itoa(days),
			h.paymentDetail(payment.CardNumber),
			h.paymentDetail(payment.CardHolder),
			h.paymentDetail(payment.ClickNumber),
			h.paymentDetail(payment.HumoNumber),
			h.paymentDetail(h.config.AdminContact),
		),
		keyboard: h.purchaseKeyboard(),
	}}, nil
}

func (h *BotHandler) copyCardCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	payment := h.config.Payment
	if payment.CardNumber == "" {
		return &callbackResult{alert: h.localizer.MustLocalize(locale.PaymentDetailMissing), showAlert: true}, nil
	}
	return &callbackResult{
		alert:     h.localizer.MustLocalizeWithTemplate(locale.CopyCardAlert, payment.CardNumber, payment.CardHolder),
		showAlert: true,
	}, nil
}

func (h *BotHandler) copyClickCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	number := h.config.Payment.ClickNumber
	if number == "" {
		return &callbackResult{alert: h.localizer.MustLocalize(locale.PaymentDetailMissing), showAlert: true}, nil
	}
	return &callbackResult{alert: h.localizer.MustLocalizeWithTemplate(locale.CopyClickAlert, number), showAlert: true}, nil
}

func (h *BotHandler) copyHumoCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	number := h.config.Payment.HumoNumber
	if number == "" {
		return &callbackResult{alert: h.localizer.MustLocalize(locale.PaymentDetailMissing), showAlert: true}, nil
	}
	return &callbackResult{alert: h.localizer.MustLocalizeWithTemplate(locale.CopyHumoAlert, number), showAlert: true}, nil
}

func (h *BotHandler) paymentProofCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	username := callback.From.Username
	if username == "" {
		username = h.localizer.MustLocalize(locale.DefaultUserName)
	}

	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.PaymentProofText,
			h.paymentDetail(h.config.AdminContact),
			strconv.FormatInt(callback.From.ID, 10),
			html.EscapeString(username),
		),
		keyboard: h.paymentProofKeyboard(),
	}}, nil
}

func (h *BotHandler) ratingCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	stats, err := h.userRepo.GetUserStats(ctx, callback.From.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats == nil {
		return nil, domain.ErrUserNotFound
	}

	threshold := h.policy.Threshold
	status := h.localizer.MustLocalize(locale.UserStatusStandard)
	nextGoal := h.localizer.MustLocalizeWithTemplate(locale.RatingNextGoalReferrals,
		strconv.Itoa(remainingReferrals(stats.ReferralCount, threshold)),
	)
	if stats.PremiumActive(time.Now()) {
		status = h.localizer.MustLocalize(locale.UserStatusPremium)
		nextGoal = h.localizer.MustLocalize(locale.RatingNextGoalPremium)
	}

	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.RatingText,
			strconv.FormatFloat(stats.Rating, 'f', 1, 64),
			strconv.Itoa(stats.TotalSessions),
			strconv.Itoa(stats.WordsLearned),
			status,
			strconv.Itoa(stats.ReferralCount),
			strconv.Itoa(threshold),
			nextGoal,
		),
		keyboard: h.ratingKeyboard(),
	}}, nil
}

// upsellResult is shown instead of premium-only screens
func (h *BotHandler) upsellResult() *callbackResult {
	return &callbackResult{
		screen: &screen{
			text: h.localizer.MustLocalizeWithTemplate(locale.ConversationUpsellText,
				formatAmount(h.config.PremiumPrice),
				strconv.Itoa(h.policy.Threshold),
			),
			keyboard: h.upsellKeyboard(),
		},
		alert:     h.localizer.MustLocalize(locale.PremiumRequired),
		showAlert: true,
	}
}

func (h *BotHandler) languageName(language domain.ConversationLanguage) string {
	if language == domain.LanguageJapanese {
		return h.localizer.MustLocalize(locale.LanguageJapaneseName)
	}
	return h.localizer.MustLocalize(locale.LanguageKoreanName)
}

func (h *BotHandler) conversationMenu(ctx context.Context, userID int64) (*screen, error) {
	active, err := h.premium.ActiveConversation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation session: %w", err)
	}

	activeLine := h.localizer.MustLocalize(locale.ConversationNoneLine)
	if active != "" {
		activeLine = h.localizer.MustLocalizeWithTemplate(locale.ConversationActiveLine, h.languageName(active))
	}

	return &screen{
		text:     h.localizer.MustLocalizeWithTemplate(locale.ConversationMenuText, activeLine),
		keyboard: h.conversationMenuKeyboard(active != ""),
	}, nil
}

func (h *BotHandler) conversationCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	premium, err := h.premium.IsPremium(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return h.upsellResult(), nil
	}

	menu, err := h.conversationMenu(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}
	return &callbackResult{screen: menu}, nil
}

func (h *BotHandler) startConversationCallback(language domain.ConversationLanguage) callbackFunc {
	textKey, alertKey := locale.KoreanConversationText, locale.KoreanActivatedAlert
	if language == domain.LanguageJapanese {
		textKey, alertKey = locale.JapaneseConversationText, locale.JapaneseActivatedAlert
	}

	return func(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
		err := h.premium.StartConversation(ctx, callback.From.ID, language)
		if errors.Is(err, domain.ErrPremiumRequired) {
			return h.upsellResult(), nil
		}
		if err != nil {
			return nil, err
		}

		return &callbackResult{
			screen: &screen{
				text:     h.localizer.MustLocalize(textKey),
				keyboard: h.activeConversationKeyboard(),
			},
			alert: h.localizer.MustLocalize(alertKey),
		}, nil
	}
}

func (h *BotHandler) conversationTipsCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	return &callbackResult{screen: &screen{
		text:     h.localizer.MustLocalize(locale.ConversationTipsText),
		keyboard: h.backToConversationKeyboard(),
	}}, nil
}

func (h *BotHandler) endConversationCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	if err := h.premium.EndConversation(ctx, callback.From.ID); err != nil {
		return nil, fmt.Errorf("failed to end conversation: %w", err)
	}

	menu, err := h.conversationMenu(ctx, callback.From.ID)
	if err != nil {
		return nil, err
	}
	return &callbackResult{
		screen: menu,
		alert:  h.localizer.MustLocalize(locale.ConversationEndedAlert),
	}, nil
}

func (h *BotHandler) adminPanelCallback(ctx context.Context, callback *models.CallbackQuery) (*callbackResult, error) {
	if !h.isAdmin(callback.From.ID) {
		h.logger.Warn("unauthorized admin panel attempt", "user_id", callback.From.ID)
		return &callbackResult{alert: h.localizer.MustLocalize(locale.AdminOnlyAlert), showAlert: true}, nil
	}

	return &callbackResult{screen: &screen{
		text: h.localizer.MustLocalizeWithTemplate(locale.AdminPanelText,
			strconv.FormatInt(callback.From.ID, 10),
			strconv.Itoa(durationDays(h.policy.PremiumDuration)),
		),
		keyboard: rows(h.mainMenuButton()),
	}}, nil
}
