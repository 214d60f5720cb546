package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID

	switch state.Command {
	case "broadcast":
		b.handleBroadcastConversation(message, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		b.clearState(userID)
	}
}

// handleBroadcastStart begins a broadcast. With text it goes straight to
// confirmation; without, the next message becomes the text.
func (b *Bot) handleBroadcastStart(message *tgbotapi.Message) {
	state := &ConversationState{
		Command: "broadcast",
		Step:    1,
		Data:    make(map[string]interface{}),
	}
	b.setState(message.From.ID, state)

	if text := strings.TrimSpace(message.CommandArguments()); text != "" {
		b.askBroadcastConfirmation(message.Chat.ID, text, state)
		return
	}
	b.sendText(message.Chat.ID, "📢 Send the message to broadcast to all users:")
}

// handleBroadcastConversation handles the broadcast multi-step process
func (b *Bot) handleBroadcastConversation(message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for broadcast text
		text := strings.TrimSpace(message.Text)
		if text == "" {
			b.sendText(message.Chat.ID, "❌ The broadcast message cannot be empty.")
			return
		}
		b.askBroadcastConfirmation(message.Chat.ID, text, state)

	case 2: // Waiting for the confirm button
		b.sendText(message.Chat.ID, "Please press ✅ Send or ❌ Cancel.")
	}
}

func (b *Bot) askBroadcastConfirmation(chatID int64, text string, state *ConversationState) {
	state.Data["text"] = text
	state.Step = 2
	b.sendTextWithMarkup(chatID, fmt.Sprintf("📢 Broadcast preview:\n\n%s\n\nSend to all users?", text), broadcastKeyboard())
}

// handleBroadcastCallback processes the confirm and cancel buttons
func (b *Bot) handleBroadcastCallback(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	if !b.IsAdmin(userID) {
		return alert("❌ You don't have permission to use this command.")
	}

	state, ok := b.getState(userID)
	if !ok || state.Command != "broadcast" || state.Step != 2 {
		return toast("❌ No broadcast in progress.")
	}
	b.clearState(userID)

	action := strings.TrimPrefix(query.Data, cbBroadcastPrefix)
	if action != "confirm" {
		b.editPlain(chatID, query.Message.MessageID, "❌ Broadcast cancelled.")
		return toast("Cancelled")
	}

	text, _ := state.Data["text"].(string)
	b.editPlain(chatID, query.Message.MessageID, "📢 Starting broadcast...")

	// Fan-out is paced, so it runs off the update loop
	go func() {
		result, err := b.Broadcast(context.Background(), text)
		if err != nil {
			b.logger.Error("Broadcast failed", zap.Error(err))
			b.sendText(chatID, "❌ Error during broadcast.")
			return
		}
		b.sendText(chatID, broadcastReport(result))
	}()
	return toast("📢 Broadcasting")
}
