package locale

// Message key constants for localization
// All user-facing messages should use these constants to ensure consistency

const (
	// ============================================================================
	// COMMON
	// ============================================================================

	AnonymousName      = "AnonymousName"
	DefaultUserName    = "DefaultUserName"
	ErrorGeneric       = "ErrorGeneric"
	ErrorUserNotFound  = "ErrorUserNotFound"
	AdminOnlyAlert     = "AdminOnlyAlert"
	PremiumNoExpiry    = "PremiumNoExpiry"
	UnknownDate        = "UnknownDate"
	WelcomeMessage     = "WelcomeMessage"
	PremiumRequired    = "PremiumRequired"
	PremiumStatusOn    = "PremiumStatusOn"
	PremiumStatusOff   = "PremiumStatusOff"
	UserStatusPremium  = "UserStatusPremium"
	UserStatusStandard = "UserStatusStandard"

	// ============================================================================
	// BUTTONS
	// ============================================================================

	ButtonPremium          = "ButtonPremium"
	ButtonReferralProgram  = "ButtonReferralProgram"
	ButtonRating           = "ButtonRating"
	ButtonAIConversation   = "ButtonAIConversation"
	ButtonAdminPanel       = "ButtonAdminPanel"
	ButtonBack             = "ButtonBack"
	ButtonMainMenu         = "ButtonMainMenu"
	ButtonBuyPremium       = "ButtonBuyPremium"
	ButtonReferralInfo     = "ButtonReferralInfo"
	ButtonCopyLink         = "ButtonCopyLink"
	ButtonReferralStats    = "ButtonReferralStats"
	ButtonMyRewards        = "ButtonMyRewards"
	ButtonReferralMenu     = "ButtonReferralMenu"
	ButtonCollectReferrals = "ButtonCollectReferrals"
	ButtonCopyCard         = "ButtonCopyCard"
	ButtonClickNumber      = "ButtonClickNumber"
	ButtonHumoNumber       = "ButtonHumoNumber"
	ButtonSendPaymentProof = "ButtonSendPaymentProof"
	ButtonContactAdmin     = "ButtonContactAdmin"
	ButtonKoreanAI         = "ButtonKoreanAI"
	ButtonJapaneseAI       = "ButtonJapaneseAI"
	ButtonConversationTips = "ButtonConversationTips"
	ButtonAIMenu           = "ButtonAIMenu"
	ButtonEndConversation  = "ButtonEndConversation"

	// ============================================================================
	// PREMIUM
	// ============================================================================

	PremiumActiveText          = "PremiumActiveText"
	PremiumOfferText           = "PremiumOfferText"
	PremiumPurchaseText        = "PremiumPurchaseText"
	CopyCardAlert              = "CopyCardAlert"
	CopyClickAlert             = "CopyClickAlert"
	CopyHumoAlert              = "CopyHumoAlert"
	PaymentDetailMissing       = "PaymentDetailMissing"
	PaymentProofText           = "PaymentProofText"
	PremiumGrantedNotification = "PremiumGrantedNotification"

	// ============================================================================
	// REFERRALS
	// ============================================================================

	ReferralProgramText           = "ReferralProgramText"
	ReferralLinkText              = "ReferralLinkText"
	ReferralLinkReadyAlert        = "ReferralLinkReadyAlert"
	ReferralStatsText             = "ReferralStatsText"
	ReferralStatsEntry            = "ReferralStatsEntry"
	ReferralStatsEmpty            = "ReferralStatsEmpty"
	ReferralInfoText              = "ReferralInfoText"
	MyRewardsText                 = "MyRewardsText"
	MyRewardsExpiryLine           = "MyRewardsExpiryLine"
	MyRewardsSummary              = "MyRewardsSummary"
	MyRewardsNone                 = "MyRewardsNone"
	ReferralMilestoneNotification = "ReferralMilestoneNotification"
	ReferralProgressNotification  = "ReferralProgressNotification"

	// ============================================================================
	// RATING
	// ============================================================================

	RatingText              = "RatingText"
	RatingNextGoalPremium   = "RatingNextGoalPremium"
	RatingNextGoalReferrals = "RatingNextGoalReferrals"

	// ============================================================================
	// AI CONVERSATION
	// ============================================================================

	ConversationUpsellText   = "ConversationUpsellText"
	ConversationMenuText     = "ConversationMenuText"
	ConversationActiveLine   = "ConversationActiveLine"
	ConversationNoneLine     = "ConversationNoneLine"
	LanguageKoreanName       = "LanguageKoreanName"
	LanguageJapaneseName     = "LanguageJapaneseName"
	KoreanConversationText   = "KoreanConversationText"
	JapaneseConversationText = "JapaneseConversationText"
	KoreanActivatedAlert     = "KoreanActivatedAlert"
	JapaneseActivatedAlert   = "JapaneseActivatedAlert"
	ConversationTipsText     = "ConversationTipsText"
	ConversationEndedAlert   = "ConversationEndedAlert"

	// ============================================================================
	// ADMIN
	// ============================================================================

	AdminPanelText           = "AdminPanelText"
	GrantPremiumUsage        = "GrantPremiumUsage"
	GrantPremiumInvalidUser  = "GrantPremiumInvalidUser"
	GrantPremiumInvalidDays  = "GrantPremiumInvalidDays"
	GrantPremiumUserNotFound = "GrantPremiumUserNotFound"
	GrantPremiumSuccess      = "GrantPremiumSuccess"
	GrantPremiumFailed       = "GrantPremiumFailed"
)
