package notify

import (
	"fmt"
	"time"
)

// EventType identifies an owner action worth auditing.
type EventType string

// Event types.
const (
	EventUserAuthorized  EventType = "user_authorized"
	EventUserRevoked     EventType = "user_revoked"
	EventUserBanned      EventType = "user_banned"
	EventUserUnbanned    EventType = "user_unbanned"
	EventGroupAuthorized EventType = "group_authorized"
	EventGroupRevoked    EventType = "group_revoked"
	EventBroadcast       EventType = "broadcast"
)

// Field keys used in notification payloads.
const (
	FieldUser    = "user"
	FieldGroup   = "group"
	FieldActor   = "actor"
	FieldSuccess = "success"
	FieldFailed  = "failed"
	FieldMessage = "message"
)

type eventConfig struct {
	emoji string
	title string
}

var eventConfigs = map[EventType]eventConfig{
	EventUserAuthorized:  {emoji: "✅", title: "User Authorized"},
	EventUserRevoked:     {emoji: "➖", title: "User Revoked"},
	EventUserBanned:      {emoji: "⛔", title: "User Banned"},
	EventUserUnbanned:    {emoji: "♻️", title: "User Unbanned"},
	EventGroupAuthorized: {emoji: "👥", title: "Group Authorized"},
	EventGroupRevoked:    {emoji: "🚫", title: "Group Revoked"},
	EventBroadcast:       {emoji: "📢", title: "Broadcast Sent"},
}

// formatMessage creates a Slack message for the given event.
func formatMessage(event EventType, fields map[string]string, now time.Time) *slackMessage {
	cfg, ok := eventConfigs[event]
	if !ok {
		cfg = eventConfig{emoji: "📢", title: string(event)}
	}

	header := fmt.Sprintf("%s *%s*", cfg.emoji, cfg.title)

	blocks := []slackBlock{
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: header},
		},
	}

	if fieldBlocks := formatFields(fields); len(fieldBlocks) > 0 {
		blocks = append(blocks, slackBlock{
			Type:   "section",
			Fields: fieldBlocks,
		})
	}

	blocks = append(blocks, slackBlock{
		Type: "context",
		Elements: []slackText{
			{Type: "mrkdwn", Text: fmt.Sprintf("_askbot • %s_", now.Format("Jan 2, 15:04 MST"))},
		},
	})

	return &slackMessage{
		Text:   fmt.Sprintf("%s %s", cfg.emoji, cfg.title),
		Blocks: blocks,
	}
}

// fieldOrder fixes the display order of known fields.
var fieldOrder = []struct {
	key   string
	label string
	code  bool
}{
	{FieldUser, "User", true},
	{FieldGroup, "Group", true},
	{FieldActor, "By", true},
	{FieldSuccess, "Delivered", false},
	{FieldFailed, "Failed", false},
	{FieldMessage, "Message", false},
}

func formatFields(fields map[string]string) []slackText {
	var result []slackText
	for _, f := range fieldOrder {
		v := fields[f.key]
		if v == "" {
			continue
		}
		if f.code {
			v = "`" + v + "`"
		} else {
			v = truncate(v, 200)
		}
		result = append(result, slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s:*\n%s", f.label, v)})
	}
	return result
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
