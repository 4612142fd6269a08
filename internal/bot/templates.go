package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ksteinfeldt/askbot/internal/usage"
)

// maxAnswerUnits caps an answer body in UTF-16 code units, the unit Telegram
// measures its 4096 message limit in. The rest is left for the footer.
const maxAnswerUnits = 3800

const rule = "━━━━━━━━━━━━━━━"

var numbers = message.NewPrinter(language.English)

const (
	textAccessDenied       = "❌ <b>Access Denied</b>\n\nYou are not authorized to use this bot.\nPlease contact the bot owner for access."
	textUnauthorized       = "❌ Unauthorized access."
	textUserNotAuthorized  = "❌ You are not authorized to use this bot."
	textGroupNotAuthorized = "❌ This group is not authorized to use this bot."
	textAskUsage           = "❓ Please provide a question.\n\nUsage: <code>/ask your question here</code>"
	textThinking           = "🤔 Thinking..."
	textDeliveryFailed     = "❌ The answer could not be delivered. Please try a shorter question."
	textNoStats            = "📊 No usage statistics available yet."
	textNoStatsAlert       = "No statistics available yet."
	textGroupsOnly         = "❌ This command can only be used in groups."
	textBroadcasting       = "📢 Broadcasting message..."
	textMainMenu           = "🤖 <b>Main Menu</b>\n\nSelect an option:"
	textInlineDenied       = "❌ Unauthorized - Click to authorize"
	textInlineEmpty        = "💭 Type your question..."
)

// clip cuts s to at most n UTF-16 code units without splitting a rune.
func clip(s string, n int) (string, bool) {
	units := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if units+w > n {
			return s[:i], true
		}
		units += w
	}
	return s, false
}

func code(s string) string {
	return "<code>" + html.EscapeString(s) + "</code>"
}

func mention(id int64, name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, id, html.EscapeString(name))
}

func welcomeText(userID int64, firstName, botUsername string) string {
	inline := "@" + botUsername
	if botUsername == "" {
		inline = "@bot"
	}

	var sb strings.Builder
	sb.WriteString("🤖 <b>Welcome to Advanced AI Assistant Bot!</b>\n\n")
	fmt.Fprintf(&sb, "Hello %s! I'm powered by OpenAI's latest models.\n\n", mention(userID, firstName))
	sb.WriteString("<b>Features:</b>\n")
	sb.WriteString("• 💬 Chat with AI in private or groups\n")
	sb.WriteString("• 🔍 Inline mode for quick queries\n")
	sb.WriteString("• 🤖 Multiple AI models to choose from\n")
	sb.WriteString("• 📊 Track your usage statistics\n\n")
	sb.WriteString("<b>Quick Start:</b>\n")
	sb.WriteString("• Use /ask &lt;question&gt; to ask me anything\n")
	sb.WriteString("• Use /model to change AI model\n")
	fmt.Fprintf(&sb, "• Type %s &lt;query&gt; in any chat for inline mode\n\n", html.EscapeString(inline))
	sb.WriteString("Ready to assist you! 🚀")
	return sb.String()
}

func modelMenuText(current string, prompt bool) string {
	text := "<b>🤖 Select Your AI Model</b>\n\nCurrent: " + code(current)
	if prompt {
		text += "\n\nChoose a model below:"
	}
	return text
}

func modelUpdatedText(model string) string {
	return fmt.Sprintf("✅ <b>Model Updated!</b>\n\nYour default model is now: %s\n\n%s",
		code(model), html.EscapeString(ModelLabel(model)))
}

// answerText renders a completion with its model and token footer.
func answerText(a *answer) string {
	body, clipped := clip(a.Text, maxAnswerUnits)
	text := html.EscapeString(body)
	if clipped {
		text += "…"
	}
	return fmt.Sprintf("%s\n\n%s\n🤖 Model: %s\n🎯 Tokens: %s", text, rule, code(a.Model), code(fmt.Sprint(a.Tokens)))
}

// conversationText renders a completion for free-form chat, without footer.
func conversationText(a *answer) string {
	body, clipped := clip(a.Text, maxAnswerUnits)
	if clipped {
		body += "…"
	}
	return html.EscapeString(body)
}

func inlineMessageText(a *answer) string {
	body, clipped := clip(a.Text, maxAnswerUnits)
	text := html.EscapeString(body)
	if clipped {
		text += "…"
	}
	return fmt.Sprintf("%s\n\n%s\n🤖 %s | 🎯 %d tokens", text, rule, html.EscapeString(a.Model), a.Tokens)
}

func inlineDescription(s string) string {
	if short, clipped := clip(s, 100); clipped {
		return short + "..."
	}
	return s
}

func askErrorText(err error) string {
	return fmt.Sprintf("❌ <b>Error occurred:</b>\n%s\n\nPlease try again later or contact support.", code(err.Error()))
}

func conversationErrorText(err error) string {
	return "❌ Sorry, an error occurred: " + code(err.Error())
}

// statsText renders a usage summary. The full form adds tokens per model.
func statsText(s usage.Summary, full bool) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Your Usage Statistics</b>\n\n")
	fmt.Fprintf(&sb, "🔢 Total Requests: %s\n", code(fmt.Sprint(s.TotalRequests)))
	fmt.Fprintf(&sb, "🎯 Total Tokens: %s\n\n", code(numbers.Sprintf("%d", s.TotalTokens)))
	sb.WriteString("<b>By Model:</b>\n")
	for _, m := range s.Models {
		if full {
			fmt.Fprintf(&sb, "• %s: %d requests, %s tokens\n", code(m.Model), m.Requests, numbers.Sprintf("%d", m.Tokens))
		} else {
			fmt.Fprintf(&sb, "• %s: %d requests\n", code(m.Model), m.Requests)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("📚 <b>Bot Commands &amp; Features</b>\n\n")
	sb.WriteString("<b>Basic Commands:</b>\n")
	sb.WriteString("• <code>/start</code> - Start the bot and see main menu\n")
	sb.WriteString("• <code>/ask &lt;question&gt;</code> - Ask AI a question\n")
	sb.WriteString("• <code>/model</code> - Change AI model\n")
	sb.WriteString("• <code>/stats</code> - View your usage statistics\n")
	sb.WriteString("• <code>/help</code> - Show this help message\n\n")
	sb.WriteString("<b>Inline Mode:</b>\n")
	sb.WriteString("Type <code>@botusername your question</code> in any chat to get instant AI responses!\n\n")
	sb.WriteString("<b>Owner Commands:</b>\n")
	sb.WriteString("• <code>/auth &lt;user_id&gt;</code> - Authorize user\n")
	sb.WriteString("• <code>/revoke &lt;user_id&gt;</code> - Revoke user access\n")
	sb.WriteString("• <code>/authgroup</code> - Authorize current group\n")
	sb.WriteString("• <code>/revokegroup</code> - Revoke group access\n")
	sb.WriteString("• <code>/ban &lt;user_id&gt;</code> - Ban user\n")
	sb.WriteString("• <code>/unban &lt;user_id&gt;</code> - Unban user\n")
	sb.WriteString("• <code>/broadcast &lt;message&gt;</code> - Broadcast to all users\n\n")
	sb.WriteString("<b>Available Models:</b>\n")
	for _, m := range Catalog {
		sb.WriteString("• " + html.EscapeString(m.Label) + "\n")
	}
	sb.WriteString("\n🔥 Powered by OpenAI's cutting-edge AI technology!")
	return sb.String()
}

const quickHelpText = "📚 <b>Quick Help</b>\n\n" +
	"• Use /ask to ask questions\n" +
	"• Use /model to change AI model\n" +
	"• Use inline mode for quick queries\n" +
	"• Use /help for detailed instructions"

func usageText(command string) string {
	return fmt.Sprintf("Usage: <code>/%s &lt;user_id&gt;</code>", command)
}

func adminDoneText(command string, id int64) string {
	switch command {
	case "auth":
		return fmt.Sprintf("✅ User <code>%d</code> has been authorized.", id)
	case "revoke":
		return fmt.Sprintf("✅ User <code>%d</code> authorization has been revoked.", id)
	case "ban":
		return fmt.Sprintf("✅ User <code>%d</code> has been banned.", id)
	case "unban":
		return fmt.Sprintf("✅ User <code>%d</code> has been unbanned.", id)
	case "authgroup":
		return "✅ This group has been authorized!"
	case "revokegroup":
		return "✅ This group's authorization has been revoked."
	default:
		return "✅ Done."
	}
}

func storeFailedText(err error) string {
	return "❌ Could not save the change: " + code(err.Error())
}

func broadcastText(msg string) string {
	return "📢 <b>Broadcast Message</b>\n\n" + html.EscapeString(msg)
}

func broadcastDoneText(success, failed int) string {
	return fmt.Sprintf("✅ Broadcast complete!\n\nSuccess: %d\nFailed: %d", success, failed)
}
