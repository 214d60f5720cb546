package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BroadcastResult summarizes a broadcast
type BroadcastResult struct {
	Total  int
	Sent   int
	Failed int
}

// Broadcast sends text to every known user, paced by the bot's rate
// limiter. Individual delivery failures (blocked bot, deleted account) are
// counted, not returned.
func (b *Bot) Broadcast(ctx context.Context, text string) (BroadcastResult, error) {
	ids, err := b.svc.ListUserIDs(ctx)
	if err != nil {
		return BroadcastResult{}, err
	}

	result := BroadcastResult{Total: len(ids)}
	b.logger.Info("Broadcast started", zap.Int("recipients", result.Total))

	for _, id := range ids {
		if err := b.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("broadcast interrupted: %w", err)
		}

		if _, err := b.sendMessage(tgbotapi.NewMessage(id, "📢 Broadcast Message\n\n"+text)); err != nil {
			result.Failed++
			b.logger.Warn("Broadcast delivery failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		result.Sent++
	}

	b.logger.Info("Broadcast completed",
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func broadcastReport(result BroadcastResult) string {
	return fmt.Sprintf("✅ Broadcast completed!\n\n📊 Results:\n✅ Successful: %d\n❌ Failed: %d\n📈 Total: %d",
		result.Sent, result.Failed, result.Total)
}
