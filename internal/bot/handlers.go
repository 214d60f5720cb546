package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vidbot/internal/browse"
)

// adminCommands may only be run by configured admins
var adminCommands = map[string]bool{
	"setpremium":       true,
	"removepremium":    true,
	"stats":            true,
	"broadcast":        true,
	"toggleforward":    true,
	"toggleautodelete": true,
	"setautodelete":    true,
	"settings":         true,
}

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	if state, ok := b.getState(userID); ok {
		if state.Step == -1 || message.IsCommand() {
			// Any command interrupts an ongoing conversation
			b.clearState(userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	command := message.Command()
	if adminCommands[command] && !b.IsAdmin(userID) {
		b.logger.Warn("Unauthorized admin command attempt",
			zap.Int64("user_id", userID),
			zap.String("username", message.From.UserName),
			zap.String("command", command),
		)
		b.sendText(message.Chat.ID, "❌ You don't have permission to use this command.")
		return
	}

	switch command {
	case "start":
		b.handleStart(ctx, message)
	case "mybookmarks":
		b.handleMyBookmarks(ctx, message)
	case "removebookmark":
		b.handleRemoveBookmark(ctx, message)
	case "setpremium":
		b.handleSetPremium(ctx, message)
	case "removepremium":
		b.handleRemovePremium(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "broadcast":
		b.handleBroadcastStart(message)
	case "toggleforward":
		b.handleToggleForward(ctx, message)
	case "toggleautodelete":
		b.handleToggleAutoDelete(ctx, message)
	case "setautodelete":
		b.handleSetAutoDelete(ctx, message)
	case "settings":
		b.handleSettings(ctx, message)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// callbackAnswer is the toast (or alert) shown after a button press
type callbackAnswer struct {
	text  string
	alert bool
}

func toast(text string) callbackAnswer { return callbackAnswer{text: text} }
func alert(text string) callbackAnswer { return callbackAnswer{text: text, alert: true} }

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	var answer callbackAnswer

	// Recover from panics; the query is answered either way so the
	// client stops showing a spinner
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("callback_data", query.Data),
			)
			answer = toast(userMessage(nil))
		}
		b.answerCallback(query.ID, answer.text, answer.alert)
	}()

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	ctx := context.Background()
	data := query.Data

	switch {
	case data == cbGetVideo:
		answer = b.handleGetVideo(ctx, query)
	case data == cbStatus:
		answer = b.handleStatus(ctx, query)
	case data == cbMainMenu:
		answer = b.handleMainMenu(query)
	case data == cbNextVideo:
		answer = b.handleNavigate(ctx, query, browse.Next)
	case data == cbPrevVideo:
		answer = b.handleNavigate(ctx, query, browse.Previous)
	case data == cbChangeCategory:
		answer = b.handleChangeCategory(query)
	case strings.HasPrefix(data, cbCategoryPrefix):
		answer = b.handleCategorySelection(ctx, query)
	case data == cbBookmark:
		answer = b.handleBookmark(ctx, query)
	case data == cbLike:
		answer = b.handleVote(ctx, query, true)
	case data == cbDislike:
		answer = b.handleVote(ctx, query, false)
	case data == cbDownload:
		answer = b.handleDownload(ctx, query)
	case data == cbPremiumRequired:
		answer = alert("🔒 Premium subscription required for downloads!")
	case data == cbDarkContent:
		answer = alert("💥 Dark content feature coming soon!")
	case strings.HasPrefix(data, cbBroadcastPrefix):
		answer = b.handleBroadcastCallback(ctx, query)
	default:
		b.logger.Debug("Unknown callback", zap.String("callback_data", data))
	}
}

func (b *Bot) getState(userID int64) (*ConversationState, bool) {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	state, ok := b.states[userID]
	return state, ok
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}
