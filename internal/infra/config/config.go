package config

import (
	"fmt"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	Environment     string
	RedisAddr       string        // Empty disables the snapshot cache
	SnapshotTTL     time.Duration // Lifetime of cached remote snapshots
	TelegramToken   string        // Empty disables the bot
	AdminTelegramID int64
	DigestChats     map[string]int64 // classID -> Telegram chat ID
	CronSpecDigest  string
	GeminiModel     string
}

// BotEnabled reports whether a Telegram token is configured.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SNAPSHOT_TTL", "10m")
	v.SetDefault("CRON_SPEC_DAILY_DIGEST", "0 7 * * 1-6") // 07:00 Monday to Saturday
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	return v
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return load(newViper())
}

func load(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = v.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = v.GetString("HTTP_ADDR")
	cfg.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))
	cfg.Environment = strings.ToLower(v.GetString("ENVIRONMENT"))
	cfg.RedisAddr = v.GetString("REDIS_ADDR")
	cfg.CronSpecDigest = v.GetString("CRON_SPEC_DAILY_DIGEST")
	cfg.GeminiModel = v.GetString("GEMINI_MODEL")

	cfg.SnapshotTTL, err = time.ParseDuration(v.GetString("SNAPSHOT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
	}

	cfg.TelegramToken = v.GetString("TELEGRAM_TOKEN")
	if cfg.BotEnabled() {
		adminIDStr := v.GetString("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.DigestChats, err = parseDigestChats(v.GetString("DIGEST_CHATS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_CHATS: %w", err)
	}

	return cfg, nil
}

// parseDigestChats reads "classA:-1001234,classB:5678".
func parseDigestChats(raw string) (map[string]int64, error) {
	chats := make(map[string]int64)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		classID, chatIDStr, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(classID) == "" {
			return nil, fmt.Errorf("entry %q is not classID:chatID", entry)
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(chatIDStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		chats[strings.TrimSpace(classID)] = chatID
	}
	return chats, nil
}
