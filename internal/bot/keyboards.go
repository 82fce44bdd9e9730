package bot

import (
	"github.com/ad/langbot-referrals/internal/locale"

	"github.com/go-telegram/bot/models"
)

func (h *BotHandler) button(key, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         h.localizer.MustLocalize(key),
		CallbackData: data,
	}
}

func rows(buttons ...models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		keyboard = append(keyboard, []models.InlineKeyboardButton{b})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func (h *BotHandler) mainMenuButton() models.InlineKeyboardButton {
	return h.button(locale.ButtonMainMenu, "main_menu")
}

func (h *BotHandler) mainMenuKeyboard(isAdmin bool) *models.InlineKeyboardMarkup {
	keyboard := [][]models.InlineKeyboardButton{
		{h.button(locale.ButtonPremium, "premium"), h.button(locale.ButtonReferralProgram, "referral_program")},
		{h.button(locale.ButtonRating, "rating"), h.button(locale.ButtonAIConversation, "conversation")},
	}
	if isAdmin {
		keyboard = append(keyboard, []models.InlineKeyboardButton{h.button(locale.ButtonAdminPanel, "admin_panel")})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func (h *BotHandler) premiumOfferKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonBuyPremium, "premium_purchase"),
		h.button(locale.ButtonCollectReferrals, "referral_program"),
		h.button(locale.ButtonReferralInfo, "referral_info"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) premiumActiveKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonAIConversation, "conversation"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) referralProgramKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonCopyLink, "copy_referral_link"),
		h.button(locale.ButtonReferralStats, "referral_stats"),
		h.button(locale.ButtonMyRewards, "my_rewards"),
		h.button(locale.ButtonReferralInfo, "referral_info"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) referralLinkKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonReferralStats, "referral_stats"),
		h.button(locale.ButtonReferralMenu, "referral_program"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) referralStatsKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonCopyLink, "copy_referral_link"),
		h.button(locale.ButtonMyRewards, "my_rewards"),
		h.button(locale.ButtonReferralMenu, "referral_program"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) myRewardsKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonCopyLink, "copy_referral_link"),
		h.button(locale.ButtonReferralStats, "referral_stats"),
		h.button(locale.ButtonReferralMenu, "referral_program"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) referralInfoKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonCopyLink, "copy_referral_link"),
		h.button(locale.ButtonReferralMenu, "referral_program"),
		h.mainMenuButton(),
	)
}

// contactAdminButton links to the admin chat; ok is false when no contact is configured
func (h *BotHandler) contactAdminButton() (models.InlineKeyboardButton, bool) {
	if h.config.AdminContact == "" {
		return models.InlineKeyboardButton{}, false
	}
	return models.InlineKeyboardButton{
		Text: h.localizer.MustLocalize(locale.ButtonContactAdmin),
		URL:  "https://t.me/" + h.config.AdminContact,
	}, true
}

func (h *BotHandler) purchaseKeyboard() *models.InlineKeyboardMarkup {
	buttons := []models.InlineKeyboardButton{
		h.button(locale.ButtonCopyCard, "copy_card_info"),
		h.button(locale.ButtonClickNumber, "copy_click_number"),
		h.button(locale.ButtonHumoNumber, "copy_humo_number"),
		h.button(locale.ButtonSendPaymentProof, "send_payment_proof"),
	}
	if contact, ok := h.contactAdminButton(); ok {
		buttons = append(buttons, contact)
	}
	buttons = append(buttons, h.button(locale.ButtonBack, "premium"))
	return rows(buttons...)
}

func (h *BotHandler) paymentProofKeyboard() *models.InlineKeyboardMarkup {
	var buttons []models.InlineKeyboardButton
	if contact, ok := h.contactAdminButton(); ok {
		buttons = append(buttons, contact)
	}
	buttons = append(buttons, h.button(locale.ButtonBack, "premium_purchase"), h.mainMenuButton())
	return rows(buttons...)
}

func (h *BotHandler) ratingKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonReferralProgram, "referral_program"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) upsellKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonBuyPremium, "premium_purchase"),
		h.button(locale.ButtonCollectReferrals, "referral_program"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) conversationMenuKeyboard(active bool) *models.InlineKeyboardMarkup {
	buttons := []models.InlineKeyboardButton{
		h.button(locale.ButtonKoreanAI, "korean_conversation"),
		h.button(locale.ButtonJapaneseAI, "japanese_conversation"),
		h.button(locale.ButtonConversationTips, "conversation_tips"),
	}
	if active {
		buttons = append(buttons, h.button(locale.ButtonEndConversation, "conversation_end"))
	}
	buttons = append(buttons, h.mainMenuButton())
	return rows(buttons...)
}

func (h *BotHandler) activeConversationKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonEndConversation, "conversation_end"),
		h.button(locale.ButtonAIMenu, "conversation"),
		h.mainMenuButton(),
	)
}

func (h *BotHandler) backToConversationKeyboard() *models.InlineKeyboardMarkup {
	return rows(
		h.button(locale.ButtonAIMenu, "conversation"),
		h.mainMenuButton(),
	)
}
