package bot

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

func (b *Bot) handleInline(ctx context.Context, q *models.InlineQuery) {
	if q.From == nil {
		return
	}

	if !b.policy.IsUserAuthorized(q.From.ID) {
		b.deny("inline", q.From.ID, 0)
		b.answerInline(ctx, q.ID, nil, &models.InlineQueryResultsButton{
			Text:           textInlineDenied,
			StartParameter: "start",
		})
		return
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		b.answerInline(ctx, q.ID, nil, &models.InlineQueryResultsButton{
			Text:           textInlineEmpty,
			StartParameter: "help",
		})
		return
	}

	a, err := b.complete(ctx, q.From.ID, "inline", promptInline, query, b.opts.InlineMaxTokens)
	if err != nil {
		b.answerInline(ctx, q.ID, &models.InlineQueryResultArticle{
			ID:          uuid.NewString(),
			Title:       "❌ Error",
			Description: inlineDescription(err.Error()),
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: "❌ Error: " + code(err.Error()),
				ParseMode:   models.ParseModeHTML,
			},
		}, nil)
		return
	}

	b.answerInline(ctx, q.ID, &models.InlineQueryResultArticle{
		ID:          uuid.NewString(),
		Title:       "🤖 AI Response (" + a.Model + ")",
		Description: inlineDescription(a.Text),
		InputMessageContent: &models.InputTextMessageContent{
			MessageText: inlineMessageText(a),
			ParseMode:   models.ParseModeHTML,
		},
		ReplyMarkup: askAnotherKeyboard(query),
	}, nil)
}

// answerInline always disables caching: answers depend on who is asking.
func (b *Bot) answerInline(ctx context.Context, queryID string, result *models.InlineQueryResultArticle, button *models.InlineQueryResultsButton) {
	params := &tgbot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       []models.InlineQueryResult{},
		CacheTime:     0,
		IsPersonal:    true,
		Button:        button,
	}
	if result != nil {
		params.Results = append(params.Results, result)
	}
	if _, err := b.tg.AnswerInlineQuery(ctx, params); err != nil {
		b.log.Warn().Err(err).Str("inline_query", queryID).Msg("answering inline query failed")
	}
}
