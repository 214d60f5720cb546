package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
	"vidbot/internal/models"
)

// handleGetVideo sends the user's current video as a new message
func (b *Bot) handleGetVideo(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	b.deliverCurrent(ctx, query)
	return callbackAnswer{}
}

// deliverCurrent sends the current video in place of the menu the button was
// pressed on. On failure the menu is turned into the error with a way back.
func (b *Bot) deliverCurrent(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	view, err := b.svc.ResolveCurrentVideo(ctx, userID)
	if err != nil {
		b.logger.Warn("Failed to resolve current video", zap.Error(err), zap.Int64("user_id", userID))
		b.editText(chatID, query.Message.MessageID, b.browseError(ctx, userID, err), backKeyboard())
		return
	}

	keyboard := videoKeyboard(view.IsPremium)
	protect := b.svc.BoolSetting(ctx, browse.SettingForwardProtection, false)
	sent, err := b.sendVideo(chatID, view.Video.FileID, videoCaption(view), &keyboard, protect)
	if err != nil {
		b.logger.Error("Failed to send video",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("video_id", view.Video.ID),
		)
		b.editText(chatID, query.Message.MessageID, "❌ Error loading video. Please try again.", retryKeyboard())
		return
	}

	b.deleteMessage(chatID, query.Message.MessageID)
	b.scheduleDeletion(ctx, sent)
}

// browseError renders a browsing failure; an empty category names itself
func (b *Bot) browseError(ctx context.Context, userID int64, err error) string {
	if !errors.Is(err, browse.ErrNoVideosInCategory) {
		return userMessage(err)
	}
	user, uerr := b.svc.GetUser(ctx, userID)
	if uerr != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("📭 No videos available in category %s", categoryLabel(user.CurrentCategory))
}

// handleStatus replaces the menu with the user's status card
func (b *Bot) handleStatus(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	chatID := query.Message.Chat.ID

	user, premium, err := b.svc.Status(ctx, query.From.ID)
	if err != nil {
		b.editText(chatID, query.Message.MessageID, userMessage(err), backKeyboard())
		return callbackAnswer{}
	}

	b.editText(chatID, query.Message.MessageID, statusText(user, premium), backKeyboard())
	return callbackAnswer{}
}

func statusText(user models.UserState, premium bool) string {
	var text strings.Builder
	text.WriteString("🌟 My Status\n\n")
	text.WriteString(fmt.Sprintf("🎬 Watched Videos: %d\n", user.WatchedCount))
	text.WriteString(fmt.Sprintf("📂 Current Category: %s\n", categoryLabel(user.CurrentCategory)))

	if premium {
		text.WriteString("🔑 Access Status: ✅ Premium\n")
	} else {
		text.WriteString("🔑 Access Status: 🔓 Free\n")
	}

	if premium && user.PremiumExpires != nil {
		text.WriteString(fmt.Sprintf("⏳ Access Expires: %s\n", user.PremiumExpires.Format("2006-01-02 15:04")))
	} else {
		text.WriteString("⏳ Access Expires: No active premium\n")
	}

	if premium {
		text.WriteString("📥 Downloads: ✅ Available\n")
	} else {
		text.WriteString("📥 Downloads: ❌ Premium only\n")
	}
	text.WriteString("🔗 Link Access: ✅ Available")
	return text.String()
}

// handleMainMenu sends the main menu and removes the message it came from
func (b *Bot) handleMainMenu(query *tgbotapi.CallbackQuery) callbackAnswer {
	chatID := query.Message.Chat.ID
	b.sendTextWithMarkup(chatID, "🎬 Choose an option:", mainKeyboard())
	b.deleteMessage(chatID, query.Message.MessageID)
	return callbackAnswer{}
}

// handleNavigate moves to the next or previous video by editing the video
// message in place
func (b *Bot) handleNavigate(ctx context.Context, query *tgbotapi.CallbackQuery, direction browse.Direction) callbackAnswer {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	view, err := b.svc.Advance(ctx, userID, direction)
	switch {
	case errors.Is(err, browse.ErrNoVideosInCategory), errors.Is(err, browse.ErrNotFound):
		return toast(userMessage(err))
	case errors.Is(err, browse.ErrNoValidVideos):
		b.sendTextWithMarkup(chatID, userMessage(err), backKeyboard())
		return callbackAnswer{}
	case err != nil:
		b.logger.Error("Failed to advance", zap.Error(err), zap.Int64("user_id", userID))
		return toast(userMessage(err))
	}

	media := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(view.Video.FileID))
	media.Caption = videoCaption(view)
	keyboard := videoKeyboard(view.IsPremium)

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   query.Message.MessageID,
			ReplyMarkup: &keyboard,
		},
		Media: media,
	}
	if err := b.request(edit); err != nil {
		b.logger.Error("Failed to edit video message",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("video_id", view.Video.ID),
		)
		b.sendTextWithMarkup(chatID, "❌ Error loading video. Please try again.", retryKeyboard())
	}
	return callbackAnswer{}
}

func (b *Bot) handleChangeCategory(query *tgbotapi.CallbackQuery) callbackAnswer {
	chatID := query.Message.Chat.ID
	b.sendTextWithMarkup(chatID, "📂 Choose a category:", categoryKeyboard())
	b.deleteMessage(chatID, query.Message.MessageID)
	return callbackAnswer{}
}

// handleCategorySelection switches category and shows its first video
func (b *Bot) handleCategorySelection(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	category := browse.ParseCategory(strings.TrimPrefix(query.Data, cbCategoryPrefix))

	if _, err := b.svc.SwitchCategory(ctx, query.From.ID, category); err != nil {
		return toast(userMessage(err))
	}

	b.deliverCurrent(ctx, query)
	return callbackAnswer{}
}

func (b *Bot) handleBookmark(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	view, err := b.svc.BookmarkCurrent(ctx, query.From.ID)
	if err != nil {
		if errors.Is(err, browse.ErrUnavailable) {
			b.logger.Error("Failed to bookmark video", zap.Error(err), zap.Int64("user_id", query.From.ID))
		}
		return toast(userMessage(err))
	}

	b.logger.Debug("Video bookmarked",
		zap.Int64("user_id", query.From.ID),
		zap.String("video_id", view.Video.ID),
	)
	return toast("✅ Video bookmarked successfully!")
}

// handleVote records a like or dislike and refreshes the caption percentage
func (b *Bot) handleVote(ctx context.Context, query *tgbotapi.CallbackQuery, liked bool) callbackAnswer {
	view, err := b.svc.VoteCurrent(ctx, query.From.ID, liked)
	if err != nil {
		return toast(userMessage(err))
	}

	edit := tgbotapi.NewEditMessageCaption(query.Message.Chat.ID, query.Message.MessageID, videoCaption(view))
	keyboard := videoKeyboard(view.IsPremium)
	edit.ReplyMarkup = &keyboard
	if err := b.request(edit); err != nil {
		// Telegram rejects an edit that changes nothing
		b.logger.Debug("Failed to update caption after vote", zap.Error(err))
	}

	if liked {
		return toast("👍 Liked!")
	}
	return toast("👎 Disliked!")
}

// handleDownload sends an unprotected copy of the current video to a
// premium user
func (b *Bot) handleDownload(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	_, premium, err := b.svc.Status(ctx, query.From.ID)
	if err != nil {
		return toast(userMessage(err))
	}
	if !premium {
		return alert("🔒 Premium subscription required for downloads!")
	}

	view, err := b.svc.ResolveCurrentVideo(ctx, query.From.ID)
	if err != nil {
		return toast(userMessage(err))
	}

	sent, err := b.sendVideo(query.Message.Chat.ID, view.Video.FileID, cleanFileName(view.Video.FileName), nil, false)
	if err != nil {
		b.logger.Error("Failed to send download copy", zap.Error(err), zap.String("video_id", view.Video.ID))
		return toast("❌ Error loading video. Please try again.")
	}
	b.scheduleDeletion(ctx, sent)
	return toast("⬇️ Download ready")
}
