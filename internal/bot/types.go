package bot

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vidbot/internal/browse"
)

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
}

// jobScheduler runs delayed one-shot jobs keyed by name
type jobScheduler interface {
	Schedule(key string, after time.Duration, fn func()) error
	Cancel(key string) bool
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api        telegramAPI
	token      string
	svc        *browse.Service
	jobs       jobScheduler
	admins     map[int64]bool
	logChannel int64
	limiter    *rate.Limiter
	states     map[int64]*ConversationState
	statesMu   sync.RWMutex
	logger     *zap.Logger
	httpServer *HTTPServer

	// Fallbacks for the runtime settings when nothing is stored yet
	autoDeleteDefault        bool
	autoDeleteMinutesDefault int
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}
