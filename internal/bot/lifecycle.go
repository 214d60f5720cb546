package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start starts the bot in polling mode
func (b *Bot) Start() error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "channel_post"}

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")
	b.announceStart("polling")

	// Handle updates (blocks until Stop)
	b.handleUpdates(updates)
	return nil
}

// StartWebhook sets up the bot to receive updates via webhook
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + "/telegram-webhook")
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	webhookConfig.MaxConnections = 40
	webhookConfig.AllowedUpdates = []string{"message", "callback_query", "channel_post"}

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}

	b.logger.Info("Bot configured for webhook mode")
	b.announceStart("webhook")
	return nil
}

// Stop ends polling; pending webhook deliveries are left to the HTTP server
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.logger.Info("Bot stopped")
}

// HandleWebhookUpdate processes a single update from webhook or polling
func (b *Bot) HandleWebhookUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		if len(update.Message.NewChatMembers) > 0 {
			b.handleNewMembers(update.Message)
			return
		}
		if update.Message.From == nil {
			return
		}
		b.handleMessage(update.Message)

	case update.CallbackQuery != nil:
		if update.CallbackQuery.From == nil {
			return
		}
		b.handleCallbackQuery(update.CallbackQuery)

	case update.ChannelPost != nil:
		b.handleChannelPost(update.ChannelPost)
	}
}

// handleUpdates processes incoming updates from polling mode
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.HandleWebhookUpdate(update)
	}
}

func (b *Bot) announceStart(mode string) {
	b.logToChannel(fmt.Sprintf("🔄 Bot restarted\n⚙️ Mode: %s\n📅 Date: %s",
		mode, time.Now().Format(logTimeLayout)))
}
