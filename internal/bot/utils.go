package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
)

const logTimeLayout = "2006-01-02 15:04:05"

// sendMessage sends a chattable and logs failures
func (b *Bot) sendMessage(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.api == nil {
		return tgbotapi.Message{}, nil // For testing
	}

	msg, err := b.api.Send(c)
	if err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
	return msg, err
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendTextWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.sendMessage(msg)
}

// request performs a call whose result is not a message: edits, deletions,
// callback answers
func (b *Bot) request(c tgbotapi.Chattable) error {
	if b.api == nil {
		return nil
	}
	_, err := b.api.Request(c)
	return err
}

func (b *Bot) answerCallback(queryID, text string, alert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	if alert {
		callback = tgbotapi.NewCallbackWithAlert(queryID, text)
	}
	if err := b.request(callback); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if err := b.request(edit); err != nil {
		b.logger.Warn("Failed to edit message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// editPlain replaces a message's text and drops its keyboard
func (b *Bot) editPlain(chatID int64, messageID int, text string) {
	if err := b.request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Warn("Failed to edit message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// deleteMessage removes a message and drops any pending deletion for it
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	b.cancelDeletion(chatID, messageID)
	if err := b.request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("Failed to delete message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
		)
	}
}

// sendVideo posts a video by file id. The request is built by hand because
// protect_content is not exposed on the library's VideoConfig.
func (b *Bot) sendVideo(chatID int64, fileID, caption string, markup *tgbotapi.InlineKeyboardMarkup, protect bool) (tgbotapi.Message, error) {
	if b.api == nil {
		return tgbotapi.Message{}, nil
	}

	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("video", fileID)
	params.AddNonEmpty("caption", caption)
	params.AddBool("protect_content", protect)
	if markup != nil {
		if err := params.AddInterface("reply_markup", markup); err != nil {
			return tgbotapi.Message{}, err
		}
	}

	resp, err := b.api.MakeRequest("sendVideo", params)
	if err != nil {
		return tgbotapi.Message{}, err
	}

	var msg tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("failed to decode sent video: %w", err)
	}
	return msg, nil
}

// logToChannel posts an event to the log channel, if one is configured
func (b *Bot) logToChannel(text string) {
	if b.logChannel == 0 {
		return
	}
	if _, err := b.sendMessage(tgbotapi.NewMessage(b.logChannel, text)); err != nil {
		b.logger.Warn("Failed to write to log channel", zap.Error(err))
	}
}

// userMessage renders an operation error for the chat
func userMessage(err error) string {
	switch {
	case errors.Is(err, browse.ErrNotFound):
		return "❌ User data not found. Please use /start command."
	case errors.Is(err, browse.ErrNoVideosInCategory):
		return "📭 No videos available."
	case errors.Is(err, browse.ErrNoValidVideos):
		return "❌ No valid videos available in this category."
	case errors.Is(err, browse.ErrLimitExceeded):
		return fmt.Sprintf("❌ You can only bookmark %d videos at a time.", browse.MaxBookmarks)
	case errors.Is(err, browse.ErrAlreadyBookmarked):
		return "📖 Video already bookmarked."
	case errors.Is(err, browse.ErrInvalidArgument):
		return "❌ Invalid arguments."
	case errors.Is(err, browse.ErrUnavailable):
		return "❌ Service temporarily unavailable. Please try again later."
	default:
		return "❌ Something went wrong. Please try again."
	}
}

// cleanFileName strips the characters Telegram clients render as markup
func cleanFileName(name string) string {
	if name == "" {
		return "Unknown"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.NewReplacer("*", "", "[", "", "]", "").Replace(name)
}
