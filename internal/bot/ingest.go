package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
)

// handleChannelPost indexes videos posted to the monitored channels
func (b *Bot) handleChannelPost(post *tgbotapi.Message) {
	if post.Video == nil || post.Chat == nil {
		return
	}
	ctx := context.Background()

	video, added, err := b.svc.IngestVideo(ctx, browse.IngestRequest{
		ChannelID: post.Chat.ID,
		FileID:    post.Video.FileID,
		FileName:  post.Video.FileName,
		FileSize:  int64(post.Video.FileSize),
	})
	if errors.Is(err, browse.ErrNotFound) {
		// Not a monitored channel
		return
	}
	if err != nil {
		b.logger.Error("Failed to index video",
			zap.Error(err),
			zap.Int64("channel_id", post.Chat.ID),
			zap.String("file_id", post.Video.FileID),
		)
		return
	}
	if !added {
		return
	}

	b.logToChannel(fmt.Sprintf("📹 New video indexed:\n📂 Category: %d\n📝 Name: %s\n💾 Size: %.1f MB\n📅 Date: %s",
		video.Category,
		video.FileName,
		float64(video.FileSize)/1024/1024,
		time.Now().Format(logTimeLayout),
	))
}

// handleNewMembers logs people joining a chat the bot is in
func (b *Bot) handleNewMembers(message *tgbotapi.Message) {
	for _, member := range message.NewChatMembers {
		if member.IsBot {
			continue
		}
		b.logger.Info("New chat member",
			zap.Int64("user_id", member.ID),
			zap.Int64("chat_id", message.Chat.ID),
		)
		b.logNewMember(member)
	}
}
