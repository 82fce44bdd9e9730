package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const referralPrefix = "ref_"

// DeepLinkService handles generation and parsing of Telegram deep-link URLs for referral invitations
type DeepLinkService struct {
	botUsername string
}

// NewDeepLinkService creates a new DeepLinkService with the specified bot username
func NewDeepLinkService(botUsername string) *DeepLinkService {
	return &DeepLinkService{
		botUsername: strings.TrimPrefix(botUsername, "@"),
	}
}

// BotUsername returns the bot username used in generated links
func (s *DeepLinkService) BotUsername() string {
	return s.botUsername
}

// GenerateReferralLink generates the personal invite link of a user
// Format: https://t.me/{bot_username}?start=ref_{userID}
func (s *DeepLinkService) GenerateReferralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", s.botUsername, referralPrefix, userID)
}

// ParseReferrerIDFromStart parses a referrer ID from a /start command parameter
// Expected format: "ref_{userID}"
func (s *DeepLinkService) ParseReferrerIDFromStart(startParam string) (int64, error) {
	if !strings.HasPrefix(startParam, referralPrefix) {
		return 0, fmt.Errorf("invalid start parameter format: expected 'ref_<id>', got '%s'", startParam)
	}

	idStr := strings.TrimPrefix(startParam, referralPrefix)
	if idStr == "" {
		return 0, fmt.Errorf("invalid start parameter: missing referrer ID")
	}

	referrerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid referrer ID in start parameter: %w", err)
	}
	if referrerID <= 0 {
		return 0, fmt.Errorf("invalid referrer ID in start parameter: %d", referrerID)
	}

	return referrerID, nil
}
