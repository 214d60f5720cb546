package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("CATEGORY_1_CHANNEL", "-1001")
	t.Setenv("CATEGORY_2_CHANNEL", "-1002")
	t.Setenv("CATEGORY_3_CHANNEL", "-1003")
	t.Setenv("CATEGORY_4_CHANNEL", "-1004")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Empty(t, cfg.AdminIDs)
	assert.Equal(t, BackendMongo, cfg.StorageBackend)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "telegram_video_bot", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.AutoDeleteVideos)
	assert.Equal(t, 10, cfg.AutoDeleteMinutes)
	assert.Equal(t, 10.0, cfg.BroadcastRate)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.False(t, cfg.WebhookMode)
	assert.False(t, cfg.MiniAppDevAuth, "dev auth must be opt-in")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv_MiniAppDevAuth(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MINIAPP_INSECURE_DEV_AUTH", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.MiniAppDevAuth)

	// Never together with a public webhook
	t.Setenv("WEBHOOK_MODE", "true")
	t.Setenv("WEBHOOK_URL", "https://example.com")
	_, err = LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_IDS", "11, 22,33")
	t.Setenv("LOG_CHANNEL_ID", "-1009")
	t.Setenv("WEBHOOK_MODE", "true")
	t.Setenv("WEBHOOK_URL", "https://example.com")
	t.Setenv("AUTO_DELETE_VIDEOS", "false")
	t.Setenv("AUTO_DELETE_MINUTES", "3")
	t.Setenv("STORAGE_BACKEND", "ClickHouse")
	t.Setenv("CLICKHOUSE_HOST", "ch")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 22, 33}, cfg.AdminIDs)
	assert.Equal(t, int64(-1009), cfg.LogChannelID)
	assert.True(t, cfg.WebhookMode)
	assert.False(t, cfg.AutoDeleteVideos)
	assert.Equal(t, 3, cfg.AutoDeleteMinutes)
	assert.Equal(t, BackendClickHouse, cfg.StorageBackend)
}

func TestLoadFromEnv_LegacyTokenAndMock(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "legacy")
	t.Setenv("USE_MOCK_DB", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.TelegramToken)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"missing token", "TELEGRAM_BOT_TOKEN", ""},
		{"missing channel", "CATEGORY_3_CHANNEL", ""},
		{"bad channel", "CATEGORY_1_CHANNEL", "abc"},
		{"bad admin id", "ADMIN_IDS", "1,x"},
		{"webhook without url", "WEBHOOK_MODE", "true"},
		{"bad bool", "AUTO_DELETE_VIDEOS", "sometimes"},
		{"minutes out of range", "AUTO_DELETE_MINUTES", "0"},
		{"unknown backend", "STORAGE_BACKEND", "sqlite"},
		{"clickhouse without host", "STORAGE_BACKEND", "clickhouse"},
		{"bad rate", "BROADCAST_RATE", "-1"},
		{"bad log level", "LOG_LEVEL", "verbose"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestChannelCategories(t *testing.T) {
	cfg := &Config{CategoryChannels: []int64{-1, -2, -3, -4}}
	assert.Equal(t, map[int64]int{-1: 1, -2: 2, -3: 3, -4: 4}, cfg.ChannelCategories())
}
