package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"vidbot/internal/models"
)

// Storage backends
const (
	BackendMongo      = "mongo"
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string  `validate:"required"`
	AdminIDs      []int64 `validate:"dive,gt=0"`

	// Channel ids feeding categories 1..4, in order
	CategoryChannels []int64 `validate:"len=4,dive,ne=0"`
	LogChannelID     int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string `validate:"required_if=WebhookMode true"`
	Port        string `validate:"required,numeric"`

	// MiniAppDevAuth lets the Mini App API trust ?user_id= without initData.
	// Local development only; refused together with webhook mode.
	MiniAppDevAuth bool `validate:"excluded_if=WebhookMode true"`

	StorageBackend string `validate:"oneof=mongo clickhouse memory"`

	// MongoDB configuration
	MongoURI string `validate:"required_if=StorageBackend mongo"`
	DBName   string `validate:"required_if=StorageBackend mongo"`

	// ClickHouse configuration
	ClickHouseHost     string `validate:"required_if=StorageBackend clickhouse"`
	ClickHousePort     int    `validate:"gt=0"`
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// Defaults for the runtime settings an admin can change from the chat
	AutoDeleteVideos  bool
	AutoDeleteMinutes int `validate:"min=1,max=1440"`

	// Broadcast messages per second
	BroadcastRate float64 `validate:"gt=0,lte=30"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Port:               getEnv("PORT", "8080"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", BackendMongo)),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017/"),
		DBName:             getEnv("DB_NAME", "telegram_video_bot"),
		ClickHouseHost:     os.Getenv("CLICKHOUSE_HOST"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "default"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	// Telegram Bot Token (required); BOT_TOKEN is accepted for older deployments
	config.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", os.Getenv("BOT_TOKEN"))

	var err error
	if config.AdminIDs, err = parseIDs("ADMIN_IDS"); err != nil {
		return nil, err
	}

	for i := 1; i <= models.CategoryCount; i++ {
		key := fmt.Sprintf("CATEGORY_%d_CHANNEL", i)
		id, err := getInt64(key, 0)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, fmt.Errorf("%s is required", key)
		}
		config.CategoryChannels = append(config.CategoryChannels, id)
	}

	if config.LogChannelID, err = getInt64("LOG_CHANNEL_ID", 0); err != nil {
		return nil, err
	}

	if config.WebhookMode, err = getBool("WEBHOOK_MODE", false); err != nil {
		return nil, err
	}
	config.WebhookURL = os.Getenv("WEBHOOK_URL")

	if config.MiniAppDevAuth, err = getBool("MINIAPP_INSECURE_DEV_AUTH", false); err != nil {
		return nil, err
	}

	// USE_MOCK_DB predates STORAGE_BACKEND and still wins
	useMock, err := getBool("USE_MOCK_DB", false)
	if err != nil {
		return nil, err
	}
	if useMock {
		config.StorageBackend = BackendMemory
	}

	if config.ClickHousePort, err = getInt("CLICKHOUSE_PORT", 9000); err != nil {
		return nil, err
	}
	if config.ClickHouseUseTLS, err = getBool("CLICKHOUSE_USE_TLS", false); err != nil {
		return nil, err
	}

	if config.AutoDeleteVideos, err = getBool("AUTO_DELETE_VIDEOS", true); err != nil {
		return nil, err
	}
	if config.AutoDeleteMinutes, err = getInt("AUTO_DELETE_MINUTES", 10); err != nil {
		return nil, err
	}

	rate := getEnv("BROADCAST_RATE", "10")
	if config.BroadcastRate, err = strconv.ParseFloat(rate, 64); err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_RATE: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ChannelCategories maps each configured channel id to its category
func (c *Config) ChannelCategories() map[int64]int {
	channels := make(map[int64]int, len(c.CategoryChannels))
	for i, id := range c.CategoryChannels {
		channels[id] = i + 1
	}
	return channels
}

// parseIDs reads a comma-separated list of Telegram ids
func parseIDs(key string) ([]int64, error) {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in %s: %s", key, idStr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
