package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okunev/financetracker/internal/model"
)

// categoriesKeyboard lays the catalog out two buttons per row. The callback
// carries the category id; the machine re-validates it against its catalog
// snapshot rather than trusting the payload.
func categoriesKeyboard(catalog []model.Category) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, c := range catalog {
		label := c.Name
		if c.Icon != "" {
			label = c.Icon + " " + c.Name
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "category_"+c.ID))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func receiptKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Save Transaction", "receipt_save"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "receipt_cancel"),
		),
	)
}
