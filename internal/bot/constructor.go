package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vidbot/internal/browse"
)

// Options carries the settings the bot needs from the configuration
type Options struct {
	AdminIDs          []int64
	LogChannelID      int64
	AutoDeleteVideos  bool
	AutoDeleteMinutes int
	BroadcastRate     float64
}

// NewBot creates a new Telegram bot
func NewBot(token string, svc *browse.Service, jobs jobScheduler, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return newBot(api, token, svc, jobs, opts, logger), nil
}

func newBot(api telegramAPI, token string, svc *browse.Service, jobs jobScheduler, opts Options, logger *zap.Logger) *Bot {
	admins := make(map[int64]bool)
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}

	perSecond := opts.BroadcastRate
	if perSecond <= 0 {
		perSecond = 10
	}

	return &Bot{
		api:                      api,
		token:                    token,
		svc:                      svc,
		jobs:                     jobs,
		admins:                   admins,
		logChannel:               opts.LogChannelID,
		limiter:                  rate.NewLimiter(rate.Limit(perSecond), 1),
		states:                   make(map[int64]*ConversationState),
		logger:                   logger,
		autoDeleteDefault:        opts.AutoDeleteVideos,
		autoDeleteMinutesDefault: opts.AutoDeleteMinutes,
	}
}

// IsAdmin reports whether userID may run admin commands
func (b *Bot) IsAdmin(userID int64) bool {
	return b.admins[userID]
}
