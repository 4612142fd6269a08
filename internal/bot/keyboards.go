package bot

import "github.com/go-telegram/bot/models"

// Callback data.
const (
	cbChangeModel = "change_model"
	cbStats       = "stats"
	cbHelp        = "help"
	cbBackToMenu  = "back_to_menu"
	cbModelPrefix = "model_"
)

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{button("🤖 Change Model", cbChangeModel)},
		{button("📊 Usage Stats", cbStats)},
		{button("ℹ️ Help", cbHelp)},
	}}
}

func modelKeyboard() *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(Catalog))
	for _, m := range Catalog {
		rows = append(rows, []models.InlineKeyboardButton{button(m.Label, cbModelPrefix+m.ID)})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func backKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{button("« Back", cbBackToMenu)},
	}}
}

// askAnotherKeyboard reopens inline mode in the current chat, prefilled
// with the previous query.
func askAnotherKeyboard(query string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "🔄 Ask Another", SwitchInlineQueryCurrentChat: query}},
	}}
}
