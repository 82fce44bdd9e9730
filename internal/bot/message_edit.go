package bot

import (
	"context"
	"strings"
	"time"

	"github.com/ad/langbot-referrals/internal/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageEditor is an interface for editing messages (for testing)
type MessageEditor interface {
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
}

var rateLimitRetryDelay = time.Second

// editMessage replaces the text of a menu message. It handles various error conditions gracefully:
// - "message is not modified" errors mean the screen is already shown and are ignored
// - Rate limit errors trigger one retry after rateLimitRetryDelay
// - Other errors are logged and ignored
//
// It never returns an error so that the callback query is still answered.
func editMessage(ctx context.Context, b MessageEditor, logger domain.Logger, params *bot.EditMessageTextParams) {
	_, err := b.EditMessageText(ctx, params)
	if err == nil {
		return
	}

	if isMessageNotModifiedError(err) {
		logger.Debug("message already shows this screen", "chat_id", params.ChatID, "message_id", params.MessageID)
		return
	}

	if isRateLimitError(err) {
		logger.Info("rate limit hit, retrying edit", "chat_id", params.ChatID, "message_id", params.MessageID)

		select {
		case <-ctx.Done():
			return
		case <-time.After(rateLimitRetryDelay):
		}

		_, retryErr := b.EditMessageText(ctx, params)
		if retryErr == nil || isMessageNotModifiedError(retryErr) {
			return
		}

		logger.Warn("message edit failed after retry",
			"chat_id", params.ChatID,
			"message_id", params.MessageID,
			"error", retryErr.Error())
		return
	}

	logger.Warn("message edit failed",
		"chat_id", params.ChatID,
		"message_id", params.MessageID,
		"error", err.Error())
}

// isRateLimitError checks if the error is a rate limit error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "retry after")
}

// isMessageNotModifiedError checks if Telegram rejected an edit with identical content
func isMessageNotModifiedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "message is not modified")
}
