package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 outgoing messages per second per bot.
const sendsPerSecond = 30

// Sender is the subset of *tgbot.Bot used for outgoing chat traffic.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	AnswerInlineQuery(ctx context.Context, params *tgbot.AnswerInlineQueryParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// Throttled puts every call through one shared send budget and keeps the
// token out of returned errors.
type Throttled struct {
	next    Sender
	token   string
	limiter *rate.Limiter
}

// Throttle wraps next with the Bot API's global send limit.
func Throttle(next Sender, token string) *Throttled {
	return &Throttled{next: next, token: token, limiter: rate.NewLimiter(sendsPerSecond, sendsPerSecond)}
}

func (t *Throttled) SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := t.next.SendMessage(ctx, params)
	return res, Redact(err, t.token)
}

func (t *Throttled) EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := t.next.EditMessageText(ctx, params)
	return res, Redact(err, t.token)
}

func (t *Throttled) SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	res, err := t.next.SendChatAction(ctx, params)
	return res, Redact(err, t.token)
}

func (t *Throttled) AnswerInlineQuery(ctx context.Context, params *tgbot.AnswerInlineQueryParams) (bool, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	res, err := t.next.AnswerInlineQuery(ctx, params)
	return res, Redact(err, t.token)
}

func (t *Throttled) AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	res, err := t.next.AnswerCallbackQuery(ctx, params)
	return res, Redact(err, t.token)
}
