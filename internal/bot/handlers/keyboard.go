package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/search"
)

// MakeResultKeyboard builds the inline keyboard for a search result page:
// numbered shortcut buttons in rows of five, each carrying the message id of
// its entry, followed by a navigation row. Navigation callbacks carry the
// target page as "p<n>"; page labels are 1-based while the data is 0-based.
func MakeResultKeyboard(page *search.ResultPage) *models.InlineKeyboardMarkup {
	var keyboard [][]models.InlineKeyboardButton

	for start := 0; start < len(page.Entries); start += 5 {
		end := start + 5
		if end > len(page.Entries) {
			end = len(page.Entries)
		}

		row := make([]models.InlineKeyboardButton, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, models.InlineKeyboardButton{
				Text:         strconv.Itoa(i + 1),
				CallbackData: strconv.FormatInt(page.Entries[i].ID, 10),
			})
		}
		keyboard = append(keyboard, row)
	}

	var nav []models.InlineKeyboardButton
	if page.PageNum > 0 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("⬅ Page %d", page.PageNum),
			CallbackData: fmt.Sprintf("p%d", page.PageNum-1),
		})
	}
	if page.HasNext() {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("Page %d ➡", page.PageNum+2),
			CallbackData: fmt.Sprintf("p%d", page.PageNum+1),
		})
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
