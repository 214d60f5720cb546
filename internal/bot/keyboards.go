package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vidbot/internal/browse"
	"vidbot/internal/models"
)

// Callback data
const (
	cbGetVideo        = "get_video"
	cbStatus          = "status"
	cbMainMenu        = "main_menu"
	cbNextVideo       = "next_video"
	cbPrevVideo       = "prev_video"
	cbChangeCategory  = "change_category"
	cbCategoryPrefix  = "cat_"
	cbBookmark        = "bookmark_video"
	cbLike            = "like_video"
	cbDislike         = "dislike_video"
	cbDownload        = "download_video"
	cbPremiumRequired = "premium_required"
	cbDarkContent     = "dark_content"
	cbBroadcastPrefix = "broadcast:"
)

func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎥 Get Video", cbGetVideo),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 My Status", cbStatus),
		),
	)
}

// videoKeyboard is attached to every browsed video. Download is only live
// for premium users.
func videoKeyboard(isPremium bool) tgbotapi.InlineKeyboardMarkup {
	download := tgbotapi.NewInlineKeyboardButtonData("🔒 Download", cbPremiumRequired)
	if isPremium {
		download = tgbotapi.NewInlineKeyboardButtonData("⬇️ Download", cbDownload)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍 Like", cbLike),
			tgbotapi.NewInlineKeyboardButtonData("👎 Dislike", cbDislike),
			download,
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏮️ Previous", cbPrevVideo),
			tgbotapi.NewInlineKeyboardButtonData("Next ▶️", cbNextVideo),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Change Category", cbChangeCategory),
			tgbotapi.NewInlineKeyboardButtonData("🔖 Bookmark", cbBookmark),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💥 For D@rk C00ntent", cbDarkContent),
		),
	)
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var currentRow []tgbotapi.InlineKeyboardButton
	for cat := 1; cat <= models.CategoryCount; cat++ {
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Category %d", cat),
			fmt.Sprintf("%s%d", cbCategoryPrefix, cat),
		))
		if len(currentRow) == 2 || cat == models.CategoryCount {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🎲 Mix", cbCategoryPrefix+"mix")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbGetVideo)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbMainMenu),
		),
	)
}

func retryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Try Again", cbGetVideo),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbMainMenu),
		),
	)
}

func broadcastKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Send", cbBroadcastPrefix+"confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbBroadcastPrefix+"cancel"),
		),
	)
}

func videoCaption(view browse.VideoView) string {
	return fmt.Sprintf("Video ID: %s\n%d%% users liked this", view.ShortID, view.LikePercentage)
}

func categoryLabel(category int) string {
	if category == models.CategoryMixed {
		return "Mix"
	}
	return fmt.Sprintf("%d", category)
}
