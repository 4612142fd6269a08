package bot

import (
	"context"

	"github.com/go-telegram/bot/models"
)

func (b *Bot) cmdStart(ctx context.Context, m *models.Message) {
	if !b.policy.IsUserAuthorized(m.From.ID) {
		b.deny("start", m.From.ID, m.Chat.ID)
		b.reply(ctx, m, textAccessDenied, nil)
		return
	}
	b.reply(ctx, m, welcomeText(m.From.ID, m.From.FirstName, b.opts.Username), mainMenuKeyboard())
}

func (b *Bot) cmdModel(ctx context.Context, m *models.Message) {
	if !b.policy.IsUserAuthorized(m.From.ID) {
		b.deny("model", m.From.ID, m.Chat.ID)
		b.reply(ctx, m, textUnauthorized, nil)
		return
	}
	b.reply(ctx, m, modelMenuText(b.prefs.Model(m.From.ID), true), modelKeyboard())
}

func (b *Bot) cmdStats(ctx context.Context, m *models.Message) {
	if !b.policy.IsUserAuthorized(m.From.ID) {
		b.deny("stats", m.From.ID, m.Chat.ID)
		b.reply(ctx, m, textUnauthorized, nil)
		return
	}

	summary, ok := b.ledger.Summary(m.From.ID)
	if !ok {
		b.reply(ctx, m, textNoStats, nil)
		return
	}
	b.reply(ctx, m, statsText(summary, true), nil)
}

func (b *Bot) cmdHelp(ctx context.Context, m *models.Message) {
	b.reply(ctx, m, helpText(), nil)
}

// cmdAsk answers a one-shot question. Private chats are gated by the user
// policy, groups by the group allow-list alone.
func (b *Bot) cmdAsk(ctx context.Context, m *models.Message, question string) {
	if isPrivate(m.Chat) {
		if !b.policy.IsUserAuthorized(m.From.ID) {
			b.deny("ask", m.From.ID, m.Chat.ID)
			b.reply(ctx, m, textUserNotAuthorized, nil)
			return
		}
	} else if !b.policy.IsGroupAuthorized(m.Chat.ID) {
		b.deny("ask_group", m.From.ID, m.Chat.ID)
		b.reply(ctx, m, textGroupNotAuthorized, nil)
		return
	}

	if question == "" {
		b.reply(ctx, m, textAskUsage, nil)
		return
	}

	b.typing(ctx, m.Chat.ID)
	placeholder := b.reply(ctx, m, textThinking, nil)
	if placeholder == nil {
		return
	}

	a, err := b.complete(ctx, m.From.ID, "ask", PromptAsk, question, b.opts.MaxTokens)
	if err != nil {
		b.edit(ctx, m.Chat.ID, placeholder.ID, askErrorText(err), nil)
		return
	}
	if b.edit(ctx, m.Chat.ID, placeholder.ID, answerText(a), nil) != nil {
		// Usage is already recorded. Do not leave the placeholder behind.
		b.edit(ctx, m.Chat.ID, placeholder.ID, textDeliveryFailed, nil)
	}
}

// converse answers free text in a private chat.
func (b *Bot) converse(ctx context.Context, m *models.Message) {
	if !b.policy.IsUserAuthorized(m.From.ID) {
		b.deny("conversation", m.From.ID, m.Chat.ID)
		b.reply(ctx, m, textUserNotAuthorized, nil)
		return
	}

	b.typing(ctx, m.Chat.ID)

	a, err := b.complete(ctx, m.From.ID, "conversation", promptConversation, m.Text, b.opts.MaxTokens)
	if err != nil {
		b.reply(ctx, m, conversationErrorText(err), nil)
		return
	}
	b.reply(ctx, m, conversationText(a), nil)
}
