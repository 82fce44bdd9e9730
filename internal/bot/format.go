package bot

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

var amountPrinter = message.NewPrinter(language.English)

// progressBar renders one block per referral up to the threshold
func progressBar(count, threshold int) string {
	filled := count
	if filled > threshold {
		filled = threshold
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", threshold-filled)
}

// remainingReferrals never goes below zero
func remainingReferrals(count, threshold int) int {
	if count >= threshold {
		return 0
	}
	return threshold - count
}

// progressPercent is the share of the threshold reached, capped at 100
func progressPercent(count, threshold int) int {
	if threshold <= 0 {
		return 0
	}
	if count >= threshold {
		return 100
	}
	return count * 100 / threshold
}

// formatAmount groups thousands: 50000 -> "50,000"
func formatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

func durationDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

func (h *BotHandler) formatDate(t time.Time) string {
	location := h.config.Timezone
	if location == nil {
		location = time.UTC
	}
	return t.In(location).Format(dateLayout)
}
