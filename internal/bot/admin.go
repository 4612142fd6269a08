package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/ksteinfeldt/askbot/internal/notify"
)

// ownerOnly reports whether m comes from the owner. Anyone else is ignored
// without a reply.
func (b *Bot) ownerOnly(m *models.Message, command string) bool {
	if err := b.policy.RequireOwner(m.From.ID); err != nil {
		b.deny("admin_"+command, m.From.ID, m.Chat.ID)
		return false
	}
	return true
}

func (b *Bot) cmdUserAdmin(ctx context.Context, m *models.Message, command, args string) {
	if !b.ownerOnly(m, command) {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.reply(ctx, m, usageText(command), nil)
		return
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(ctx, m, usageText(command), nil)
		return
	}

	var (
		apply func(int64) error
		event notify.EventType
	)
	switch command {
	case "auth":
		apply, event = b.policy.AuthorizeUser, notify.EventUserAuthorized
	case "revoke":
		apply, event = b.policy.RevokeUser, notify.EventUserRevoked
	case "ban":
		apply, event = b.policy.BanUser, notify.EventUserBanned
	case "unban":
		apply, event = b.policy.UnbanUser, notify.EventUserUnbanned
	default:
		return
	}

	if err := apply(id); err != nil {
		b.metrics.IncStoreFailures(command)
		b.log.Error().Err(err).Str("command", command).Int64("target", id).Msg("admin change failed")
		b.reply(ctx, m, storeFailedText(err), nil)
		return
	}

	b.log.Info().Str("command", command).Int64("target", id).Msg("admin change applied")
	b.reply(ctx, m, adminDoneText(command, id), nil)
	b.notifier.Notify(event, map[string]string{
		notify.FieldUser:  strconv.FormatInt(id, 10),
		notify.FieldActor: strconv.FormatInt(m.From.ID, 10),
	})
}

func (b *Bot) cmdGroupAdmin(ctx context.Context, m *models.Message, command string) {
	if !b.ownerOnly(m, command) {
		return
	}
	if isPrivate(m.Chat) {
		b.reply(ctx, m, textGroupsOnly, nil)
		return
	}

	apply, event := b.policy.AuthorizeGroup, notify.EventGroupAuthorized
	if command == "revokegroup" {
		apply, event = b.policy.RevokeGroup, notify.EventGroupRevoked
	}

	if err := apply(m.Chat.ID); err != nil {
		b.metrics.IncStoreFailures(command)
		b.log.Error().Err(err).Str("command", command).Int64("group", m.Chat.ID).Msg("admin change failed")
		b.reply(ctx, m, storeFailedText(err), nil)
		return
	}

	b.log.Info().Str("command", command).Int64("group", m.Chat.ID).Msg("admin change applied")
	b.reply(ctx, m, adminDoneText(command, 0), nil)

	group := strconv.FormatInt(m.Chat.ID, 10)
	if m.Chat.Title != "" {
		group = m.Chat.Title + " (" + group + ")"
	}
	b.notifier.Notify(event, map[string]string{
		notify.FieldGroup: group,
		notify.FieldActor: strconv.FormatInt(m.From.ID, 10),
	})
}

// cmdBroadcast sends text to every allow-listed user, one at a time.
func (b *Bot) cmdBroadcast(ctx context.Context, m *models.Message, text string) {
	if !b.ownerOnly(m, "broadcast") {
		return
	}
	if text == "" {
		b.reply(ctx, m, "Usage: <code>/broadcast &lt;message&gt;</code>", nil)
		return
	}

	status := b.reply(ctx, m, textBroadcasting, nil)

	var success, failed int
	body := broadcastText(text)
	for _, id := range b.policy.AuthorizedUsers() {
		if _, err := b.send(ctx, id, body, nil); err != nil {
			b.log.Warn().Err(err).Int64("user", id).Msg("broadcast delivery failed")
			failed++
			continue
		}
		success++
	}

	b.log.Info().Int("success", success).Int("failed", failed).Msg("broadcast complete")
	if status != nil {
		b.edit(ctx, m.Chat.ID, status.ID, broadcastDoneText(success, failed), nil)
	}
	b.notifier.Notify(notify.EventBroadcast, map[string]string{
		notify.FieldActor:   strconv.FormatInt(m.From.ID, 10),
		notify.FieldSuccess: strconv.Itoa(success),
		notify.FieldFailed:  strconv.Itoa(failed),
		notify.FieldMessage: text,
	})
}
