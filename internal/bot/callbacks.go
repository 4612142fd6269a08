package bot

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (b *Bot) handleCallback(ctx context.Context, cq *models.CallbackQuery) {
	userID := cq.From.ID

	if !b.policy.IsUserAuthorized(userID) {
		b.deny("callback", userID, 0)
		b.answerCallback(ctx, cq, textUnauthorized, true)
		return
	}

	// Buttons on inline results carry no message to edit.
	msg := cq.Message.Message
	if msg == nil {
		b.answerCallback(ctx, cq, "", false)
		return
	}
	chatID, msgID := msg.Chat.ID, msg.ID

	switch data := cq.Data; {
	case data == cbChangeModel:
		b.edit(ctx, chatID, msgID, modelMenuText(b.prefs.Model(userID), false), modelKeyboard())

	case strings.HasPrefix(data, cbModelPrefix):
		model := strings.TrimPrefix(data, cbModelPrefix)
		if err := b.prefs.SetModel(userID, model); err != nil {
			b.metrics.IncStoreFailures("set_model")
			b.log.Error().Err(err).Int64("user", userID).Str("model", model).Msg("saving model preference failed")
			b.answerCallback(ctx, cq, "❌ Could not change model.", true)
			return
		}
		b.log.Info().Int64("user", userID).Str("model", model).Msg("model preference changed")
		b.answerCallback(ctx, cq, "✅ Model changed to "+model, true)
		b.edit(ctx, chatID, msgID, modelUpdatedText(model), mainMenuKeyboard())
		return

	case data == cbStats:
		summary, ok := b.ledger.Summary(userID)
		if !ok {
			b.answerCallback(ctx, cq, textNoStatsAlert, true)
			return
		}
		b.edit(ctx, chatID, msgID, statsText(summary, false), backKeyboard())

	case data == cbHelp:
		b.edit(ctx, chatID, msgID, quickHelpText, backKeyboard())

	case data == cbBackToMenu:
		b.edit(ctx, chatID, msgID, textMainMenu, mainMenuKeyboard())
	}

	b.answerCallback(ctx, cq, "", false)
}

func (b *Bot) answerCallback(ctx context.Context, cq *models.CallbackQuery, text string, alert bool) {
	params := &tgbot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID, Text: text, ShowAlert: alert}
	if _, err := b.tg.AnswerCallbackQuery(ctx, params); err != nil {
		b.log.Debug().Err(err).Str("callback", cq.ID).Msg("answering callback failed")
	}
}
