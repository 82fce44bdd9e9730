package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDatabasePath      = "./data/bot.db"
	defaultLogLevel          = "INFO"
	defaultLanguage          = "uz"
	defaultReferralThreshold = 10
	defaultPremiumDuration   = 30 * 24 * time.Hour
	defaultPremiumPrice      = 50000
)

// PaymentDetails holds the manual payment requisites shown on the purchase screen
type PaymentDetails struct {
	CardNumber  string
	CardHolder  string
	ClickNumber string
	HumoNumber  string
}

// Config holds application configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  []int64
	DatabasePath  string
	DatabaseURL   string // Postgres DSN; when set it takes precedence over DatabasePath
	LogLevel      string
	Timezone      *time.Location
	Language      string

	ReferralThreshold int           // referrals needed for a free premium period
	PremiumDuration   time.Duration // length of a granted premium period
	PremiumPrice      int64         // monthly price, display only

	Payment      PaymentDetails
	AdminContact string // telegram username without @
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}
	cfg.TelegramToken = token

	adminIDsStr := os.Getenv("ADMIN_USER_IDS")
	if adminIDsStr == "" {
		return nil, fmt.Errorf("ADMIN_USER_IDS environment variable is required")
	}
	adminIDs, err := parseAdminIDs(adminIDsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_USER_IDS: %w", err)
	}
	cfg.AdminUserIDs = adminIDs

	cfg.DatabasePath = cfg.LookupEnvOrString("DATABASE_PATH", defaultDatabasePath)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}
	cfg.DatabaseURL = cfg.LookupEnvOrString("DATABASE_URL", "")

	cfg.LogLevel = cfg.LookupEnvOrString("LOG_LEVEL", defaultLogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	timezoneStr := cfg.LookupEnvOrString("TIMEZONE", "UTC")
	timezone, err := time.LoadLocation(timezoneStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE '%s': %w", timezoneStr, err)
	}
	cfg.Timezone = timezone

	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.LookupEnvOrString("LANGUAGE", defaultLanguage)))
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Language != "uz" && cfg.Language != "en" {
		return nil, fmt.Errorf("invalid LANGUAGE '%s': must be 'uz' or 'en'", cfg.Language)
	}

	cfg.ReferralThreshold = defaultReferralThreshold
	if s := os.Getenv("REFERRAL_THRESHOLD"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid REFERRAL_THRESHOLD '%s': must be a valid integer", s)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid REFERRAL_THRESHOLD '%d': must be positive", n)
		}
		cfg.ReferralThreshold = n
	}

	cfg.PremiumDuration = defaultPremiumDuration
	if s := os.Getenv("PREMIUM_DURATION"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PREMIUM_DURATION '%s': %w", s, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid PREMIUM_DURATION '%s': must be positive", s)
		}
		cfg.PremiumDuration = d
	}

	cfg.PremiumPrice = cfg.LookupEnvOrInt64("PREMIUM_PRICE", defaultPremiumPrice)

	cfg.Payment = PaymentDetails{
		CardNumber:  cfg.LookupEnvOrString("PAYMENT_CARD_NUMBER", ""),
		CardHolder:  cfg.LookupEnvOrString("PAYMENT_CARD_HOLDER", ""),
		ClickNumber: cfg.LookupEnvOrString("PAYMENT_CLICK_NUMBER", ""),
		HumoNumber:  cfg.LookupEnvOrString("PAYMENT_HUMO_NUMBER", ""),
	}
	cfg.AdminContact = strings.TrimPrefix(cfg.LookupEnvOrString("ADMIN_CONTACT", ""), "@")

	return cfg, nil
}

// IsAdmin reports whether userID is listed in ADMIN_USER_IDS
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseAdminIDs parses comma-separated admin user IDs
func parseAdminIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID '%s': %w", part, err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one admin ID is required")
	}

	return ids, nil
}
