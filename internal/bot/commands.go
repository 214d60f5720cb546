package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
	"vidbot/internal/models"
)

// handleStart registers the user on first contact and shows the main menu
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	from := message.From

	_, created, err := b.svc.EnsureUser(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		b.logger.Error("Failed to register user", zap.Error(err), zap.Int64("user_id", from.ID))
		b.sendText(message.Chat.ID, userMessage(err))
		return
	}
	if created {
		b.logNewMember(*from)
	}

	text := fmt.Sprintf("🎬 Welcome to Video Bot, %s!\n\nChoose an option below to get started:", from.FirstName)
	b.sendTextWithMarkup(message.Chat.ID, text, mainKeyboard())
}

// handleMyBookmarks sends every bookmarked video, newest first
func (b *Bot) handleMyBookmarks(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	bookmarks, err := b.svc.ListBookmarks(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("Failed to list bookmarks", zap.Error(err), zap.Int64("user_id", message.From.ID))
		b.sendText(chatID, userMessage(err))
		return
	}
	if len(bookmarks) == 0 {
		b.sendText(chatID, "📭 You have no bookmarks.")
		return
	}

	protect := b.svc.BoolSetting(ctx, browse.SettingForwardProtection, false)
	for _, bookmark := range bookmarks {
		sent, err := b.sendVideo(chatID, bookmark.FileID, bookmarkCaption(bookmark), nil, protect)
		if err != nil {
			b.logger.Error("Failed to send bookmarked video",
				zap.Error(err),
				zap.String("video_id", bookmark.VideoID),
			)
			continue
		}
		b.scheduleDeletion(ctx, sent)
	}

	b.scheduleNotice(ctx, chatID, "🗑️ Bookmark messages have been automatically deleted.")
}

func bookmarkCaption(bookmark models.Bookmark) string {
	return fmt.Sprintf("🔖 %s\n📂 Category: %d\n🆔 Video ID: %s\n📅 Bookmarked: %s",
		cleanFileName(bookmark.FileName),
		bookmark.Category,
		browse.ShortID(bookmark.VideoID),
		bookmark.CreatedAt.Format("2006-01-02 15:04"),
	)
}

// handleRemoveBookmark deletes a bookmark by its full or short video id
func (b *Bot) handleRemoveBookmark(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	arg := strings.TrimSpace(message.CommandArguments())
	if arg == "" {
		b.sendText(chatID, "Usage: /removebookmark <video_id>")
		return
	}

	bookmarks, err := b.svc.ListBookmarks(ctx, message.From.ID)
	if err != nil {
		b.sendText(chatID, userMessage(err))
		return
	}

	videoID, ok := matchBookmark(bookmarks, arg)
	if !ok {
		b.sendText(chatID, "❌ Bookmark not found.")
		return
	}

	if err := b.svc.RemoveBookmark(ctx, message.From.ID, videoID); err != nil {
		if errors.Is(err, browse.ErrNotFound) {
			b.sendText(chatID, "❌ Bookmark not found.")
			return
		}
		b.sendText(chatID, userMessage(err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("✅ Bookmark %s removed.", browse.ShortID(videoID)))
}

// matchBookmark finds the bookmark whose video id equals arg or ends with it
func matchBookmark(bookmarks []models.Bookmark, arg string) (string, bool) {
	for _, bm := range bookmarks {
		if bm.VideoID == arg {
			return bm.VideoID, true
		}
	}
	for _, bm := range bookmarks {
		if browse.ShortID(bm.VideoID) == arg {
			return bm.VideoID, true
		}
	}
	return "", false
}

// handleSetPremium grants premium: /setpremium <user_id> <days>
func (b *Bot) handleSetPremium(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())
	if len(args) < 2 {
		b.sendText(chatID, "Usage: /setpremium <user_id> <days>\nExample: /setpremium 123456789 30")
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendText(chatID, "❌ Invalid arguments. Use: /setpremium <user_id> <days>")
		return
	}
	days, err := strconv.Atoi(args[1])
	if err != nil {
		b.sendText(chatID, "❌ Invalid arguments. Use: /setpremium <user_id> <days>")
		return
	}

	expires, err := b.svc.GrantPremium(ctx, userID, days)
	switch {
	case errors.Is(err, browse.ErrNotFound):
		b.sendText(chatID, "❌ User not found.")
		return
	case errors.Is(err, browse.ErrInvalidArgument):
		b.sendText(chatID, fmt.Sprintf("❌ Days must be between 1 and %d.", browse.MaxPremiumDays))
		return
	case err != nil:
		b.sendText(chatID, userMessage(err))
		return
	}

	b.sendText(chatID, fmt.Sprintf("✅ Premium set for user %d for %d days.\nExpires: %s",
		userID, days, expires.Format(logTimeLayout)))
}

// handleRemovePremium revokes premium: /removepremium <user_id>
func (b *Bot) handleRemovePremium(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())
	if len(args) < 1 {
		b.sendText(chatID, "Usage: /removepremium <user_id>")
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendText(chatID, "❌ Invalid user ID.")
		return
	}

	err = b.svc.RevokePremium(ctx, userID)
	switch {
	case errors.Is(err, browse.ErrNotFound):
		b.sendText(chatID, "❌ User not found.")
	case err != nil:
		b.sendText(chatID, userMessage(err))
	default:
		b.sendText(chatID, fmt.Sprintf("✅ Premium removed from user %d", userID))
	}
}

// handleStats shows user and catalog counters
func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := b.svc.Stats(ctx)
	if err != nil {
		b.logger.Error("Failed to get stats", zap.Error(err))
		b.sendText(message.Chat.ID, "❌ Error getting statistics.")
		return
	}
	b.sendText(message.Chat.ID, statsText(stats))
}

func statsText(stats models.Stats) string {
	var text strings.Builder
	text.WriteString("📊 Bot Statistics\n\n")
	text.WriteString(fmt.Sprintf("👥 Total Users: %d\n", stats.TotalUsers))
	text.WriteString(fmt.Sprintf("💎 Premium Users: %d\n\n", stats.PremiumUsers))
	text.WriteString("🎬 Videos by Category:\n")
	for cat := 1; cat <= models.CategoryCount; cat++ {
		text.WriteString(fmt.Sprintf("📂 Category %d: %d videos\n", cat, stats.VideosPerCategory[cat]))
	}
	return text.String()
}

func (b *Bot) handleToggleForward(ctx context.Context, message *tgbotapi.Message) {
	enabled, err := b.svc.ToggleSetting(ctx, browse.SettingForwardProtection, false)
	if err != nil {
		b.sendText(message.Chat.ID, userMessage(err))
		return
	}

	if enabled {
		b.sendText(message.Chat.ID, "✅ Forwarding Protection: 🔒 ENABLED\n\nVideos can no longer be forwarded by users.")
	} else {
		b.sendText(message.Chat.ID, "✅ Forwarding Protection: 🔓 DISABLED\n\nVideos can now be forwarded by users.")
	}
}

func (b *Bot) handleToggleAutoDelete(ctx context.Context, message *tgbotapi.Message) {
	enabled, err := b.svc.ToggleSetting(ctx, browse.SettingAutoDelete, b.autoDeleteDefault)
	if err != nil {
		b.sendText(message.Chat.ID, userMessage(err))
		return
	}

	if enabled {
		minutes := b.svc.IntSetting(ctx, browse.SettingAutoDeleteMinutes, b.autoDeleteMinutesDefault)
		b.sendText(message.Chat.ID, fmt.Sprintf("✅ Auto Delete: ENABLED\n\nVideos will be deleted after %d minutes.", minutes))
	} else {
		b.sendText(message.Chat.ID, "✅ Auto Delete: DISABLED\n\nVideos will stay in the chat.")
	}
}

// handleSetAutoDelete changes the delay: /setautodelete <minutes>
func (b *Bot) handleSetAutoDelete(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	minutes, err := strconv.Atoi(strings.TrimSpace(message.CommandArguments()))
	if err != nil {
		b.sendText(chatID, "Usage: /setautodelete <minutes>\nExample: /setautodelete 10")
		return
	}

	if err := b.svc.SetAutoDeleteMinutes(ctx, minutes); err != nil {
		if errors.Is(err, browse.ErrInvalidArgument) {
			b.sendText(chatID, "❌ Minutes must be between 1 and 1440.")
			return
		}
		b.sendText(chatID, userMessage(err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("✅ Auto delete time set to %d minutes.", minutes))
}

func (b *Bot) handleSettings(ctx context.Context, message *tgbotapi.Message) {
	settings := b.svc.CurrentSettings(ctx, browse.Settings{
		AutoDelete:        b.autoDeleteDefault,
		AutoDeleteMinutes: b.autoDeleteMinutesDefault,
	})

	text := fmt.Sprintf(`⚙️ Bot Settings

🔒 Forward Protection: %s
🗑️ Auto Delete: %s
⏰ Auto Delete Time: %d minutes

Admin Commands:
/toggleforward - Toggle forwarding protection
/toggleautodelete - Toggle auto delete
/setautodelete <minutes> - Set auto delete time
/setpremium <user_id> <days> - Set premium
/removepremium <user_id> - Remove premium
/stats - View statistics
/broadcast <message> - Send broadcast`,
		enabledLabel(settings.ForwardProtection), enabledLabel(settings.AutoDelete), settings.AutoDeleteMinutes)

	b.sendText(message.Chat.ID, text)
}

func enabledLabel(on bool) string {
	if on {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}

// logNewMember announces a first-time user in the log channel
func (b *Bot) logNewMember(user tgbotapi.User) {
	username := user.UserName
	if username == "" {
		username = "None"
	}
	b.logToChannel(fmt.Sprintf("🆕 New member joined:\n👤 Name: %s\n🆔 ID: %d\n📝 Username: @%s\n📅 Date: %s",
		user.FirstName, user.ID, username, time.Now().Format(logTimeLayout)))
}
