// Package bot routes Telegram updates to the authorization policy, the
// completion backend and the usage ledger, and renders the replies.
package bot

import (
	"context"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/ksteinfeldt/askbot/internal/access"
	"github.com/ksteinfeldt/askbot/internal/backend"
	"github.com/ksteinfeldt/askbot/internal/metrics"
	"github.com/ksteinfeldt/askbot/internal/notify"
	"github.com/ksteinfeldt/askbot/internal/prefs"
	"github.com/ksteinfeldt/askbot/internal/usage"
)

// updateTimeout bounds the handling of a single update, completion included.
const updateTimeout = 3 * time.Minute

// Messenger is the part of the Telegram client the bot talks through.
// *tgbot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	AnswerInlineQuery(ctx context.Context, params *tgbot.AnswerInlineQueryParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// Deps are the collaborators a Bot is built from. Notifier and Metrics are
// optional.
type Deps struct {
	Messenger Messenger
	Completer backend.Completer
	Policy    *access.Policy
	Prefs     *prefs.Registry
	Ledger    *usage.Ledger
	Notifier  *notify.Client
	Metrics   metrics.Recorder
	Log       zerolog.Logger
}

// Options tune replies.
type Options struct {
	// Username is the bot's @username without the @.
	Username        string
	MaxTokens       int
	InlineMaxTokens int
	Temperature     float64
}

// Bot handles updates. It is safe for concurrent use.
type Bot struct {
	tg       Messenger
	llm      backend.Completer
	policy   *access.Policy
	prefs    *prefs.Registry
	ledger   *usage.Ledger
	notifier *notify.Client
	metrics  metrics.Recorder
	log      zerolog.Logger
	opts     Options

	wg sync.WaitGroup
}

// New creates a Bot.
func New(d Deps, opts Options) *Bot {
	if d.Metrics == nil {
		d.Metrics = metrics.Noop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.InlineMaxTokens <= 0 {
		opts.InlineMaxTokens = 500
	}

	return &Bot{
		tg:       d.Messenger,
		llm:      d.Completer,
		policy:   d.Policy,
		prefs:    d.Prefs,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      d.Log,
		opts:     opts,
	}
}

// Dispatch handles u on its own goroutine so a slow completion for one user
// never holds up anyone else.
func (b *Bot) Dispatch(ctx context.Context, u *models.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.log.Error().
					Interface("panic", r).
					Int64("update_id", u.ID).
					Bytes("stack", debug.Stack()).
					Msg("update handler panicked")
			}
		}()
		b.HandleUpdate(ctx, u)
	}()
}

// Wait blocks until every dispatched update has been handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate handles one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, u *models.Update) {
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	b.metrics.IncUpdates(updateKind(u))

	switch {
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	case u.InlineQuery != nil:
		b.handleInline(ctx, u.InlineQuery)
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	default:
		b.log.Debug().Int64("update_id", u.ID).Msg("ignoring unsupported update")
	}
}

// updateKind names the payload of u for metrics.
func updateKind(u *models.Update) string {
	switch {
	case u.Message != nil:
		return "message"
	case u.InlineQuery != nil:
		return "inline_query"
	case u.CallbackQuery != nil:
		return "callback_query"
	default:
		return "other"
	}
}

func isPrivate(c models.Chat) bool {
	return c.Type == models.ChatTypePrivate
}

func (b *Bot) handleMessage(ctx context.Context, m *models.Message) {
	if m.From == nil || m.Text == "" {
		return
	}

	name, args, isCommand := parseCommand(m.Text, b.opts.Username)
	if isCommand && name == "" {
		// Addressed to another bot in the same group.
		return
	}

	switch name {
	case "start":
		b.cmdStart(ctx, m)
	case "ask":
		b.cmdAsk(ctx, m, args)
	case "model":
		b.cmdModel(ctx, m)
	case "stats":
		b.cmdStats(ctx, m)
	case "help":
		b.cmdHelp(ctx, m)
	case "auth", "revoke", "ban", "unban":
		b.cmdUserAdmin(ctx, m, name, args)
	case "authgroup", "revokegroup":
		b.cmdGroupAdmin(ctx, m, name)
	case "broadcast":
		b.cmdBroadcast(ctx, m, args)
	default:
		if isPrivate(m.Chat) {
			b.converse(ctx, m)
		}
	}
}

// parseCommand splits "/name@bot args" into its parts. isCommand is false for
// plain text. A command addressed to a different bot yields an empty name.
func parseCommand(text, username string) (name, args string, isCommand bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		rest = head[i+1:] + " " + rest
		head = head[:i]
	}

	if cmd, target, ok := strings.Cut(head, "@"); ok {
		if username == "" || !strings.EqualFold(target, username) {
			return "", "", true
		}
		head = cmd
	}

	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// reply sends text to the message's chat, logging failures.
func (b *Bot) reply(ctx context.Context, m *models.Message, text string, markup *models.InlineKeyboardMarkup) *models.Message {
	sent, err := b.send(ctx, m.Chat.ID, text, markup)
	if err != nil {
		b.log.Warn().Err(err).Int64("chat", m.Chat.ID).Msg("sending reply failed")
		return nil
	}
	return sent
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &tgbot.SendMessageParams{ChatID: chatID, Text: text, ParseMode: models.ParseModeHTML}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	return b.tg.SendMessage(ctx, params)
}

// edit replaces a message's text, logging failures.
func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) error {
	params := &tgbot.EditMessageTextParams{ChatID: chatID, MessageID: messageID, Text: text, ParseMode: models.ParseModeHTML}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.tg.EditMessageText(ctx, params); err != nil {
		b.log.Warn().Err(err).Int64("chat", chatID).Int("message", messageID).Msg("editing message failed")
		return err
	}
	return nil
}

func (b *Bot) typing(ctx context.Context, chatID int64) {
	params := &tgbot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}
	if _, err := b.tg.SendChatAction(ctx, params); err != nil {
		b.log.Debug().Err(err).Int64("chat", chatID).Msg("chat action failed")
	}
}

// deny records a refusal by the policy.
func (b *Bot) deny(surface string, userID, chatID int64) {
	b.metrics.IncDenied(surface)
	b.log.Info().Str("surface", surface).Int64("user", userID).Int64("chat", chatID).Msg("request denied")
}
