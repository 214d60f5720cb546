package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
)

func deletionKey(chatID int64, messageID int) string {
	return fmt.Sprintf("delete:%d:%d", chatID, messageID)
}

// autoDeleteDelay reports whether sent media should be removed, and when.
// Settings are read on every call so admin changes apply to the next message.
func (b *Bot) autoDeleteDelay(ctx context.Context) (time.Duration, bool) {
	if !b.svc.BoolSetting(ctx, browse.SettingAutoDelete, b.autoDeleteDefault) {
		return 0, false
	}
	minutes := b.svc.IntSetting(ctx, browse.SettingAutoDeleteMinutes, b.autoDeleteMinutesDefault)
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute, true
}

// scheduleDeletion arranges for msg to be deleted once the auto-delete
// delay has passed
func (b *Bot) scheduleDeletion(ctx context.Context, msg tgbotapi.Message) {
	if b.jobs == nil || msg.Chat == nil {
		return
	}
	delay, ok := b.autoDeleteDelay(ctx)
	if !ok {
		return
	}

	chatID, messageID := msg.Chat.ID, msg.MessageID
	err := b.jobs.Schedule(deletionKey(chatID, messageID), delay, func() {
		if err := b.request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			// Usually the user deleted it first
			b.logger.Debug("Auto-delete failed",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", messageID),
			)
		}
	})
	if err != nil {
		b.logger.Error("Failed to schedule auto-delete", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) cancelDeletion(chatID int64, messageID int) {
	if b.jobs == nil {
		return
	}
	b.jobs.Cancel(deletionKey(chatID, messageID))
}

// scheduleNotice sends text to chatID after the auto-delete delay. A newer
// notice for the same chat replaces a pending one.
func (b *Bot) scheduleNotice(ctx context.Context, chatID int64, text string) {
	if b.jobs == nil {
		return
	}
	delay, ok := b.autoDeleteDelay(ctx)
	if !ok {
		return
	}

	err := b.jobs.Schedule(fmt.Sprintf("notice:%d", chatID), delay, func() {
		b.sendText(chatID, text)
	})
	if err != nil {
		b.logger.Error("Failed to schedule notice", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
