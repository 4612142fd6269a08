package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf16"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksteinfeldt/askbot/internal/access"
	"github.com/ksteinfeldt/askbot/internal/backend"
	"github.com/ksteinfeldt/askbot/internal/prefs"
	"github.com/ksteinfeldt/askbot/internal/state"
	"github.com/ksteinfeldt/askbot/internal/usage"
)

const (
	ownerID int64 = 1000
	groupID int64 = -100500
)

type sent struct {
	ChatID    int64
	MessageID int
	Text      string
	Markup    *models.InlineKeyboardMarkup
}

type callbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

// fakeMessenger records everything the bot sends.
type fakeMessenger struct {
	mu         sync.Mutex
	nextID     int
	sent       []sent
	edits      []sent
	inline     []*tgbot.AnswerInlineQueryParams
	callbacks  []callbackAnswer
	failFor    map[int64]bool
	rejectEdit func(text string) bool
}

func markupOf(m models.ReplyMarkup) *models.InlineKeyboardMarkup {
	kb, _ := m.(*models.InlineKeyboardMarkup)
	return kb
}

// utf16Len measures text the way Telegram applies its message limit.
func utf16Len(text string) int {
	return len(utf16.Encode([]rune(text)))
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *tgbot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chatID := p.ChatID.(int64)
	if f.failFor[chatID] {
		return nil, errors.New("forbidden, Forbidden: bot was blocked by the user")
	}
	f.nextID++
	f.sent = append(f.sent, sent{ChatID: chatID, MessageID: f.nextID, Text: p.Text, Markup: markupOf(p.ReplyMarkup)})
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: chatID}, Text: p.Text}, nil
}

func (f *fakeMessenger) EditMessageText(_ context.Context, p *tgbot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if utf16Len(p.Text) > 4096 {
		return nil, errors.New("bad request, Bad Request: MESSAGE_TOO_LONG")
	}
	if f.rejectEdit != nil && f.rejectEdit(p.Text) {
		return nil, errors.New("bad request, Bad Request: can't parse entities")
	}
	chatID := p.ChatID.(int64)
	f.edits = append(f.edits, sent{ChatID: chatID, MessageID: p.MessageID, Text: p.Text, Markup: markupOf(p.ReplyMarkup)})
	return &models.Message{ID: p.MessageID, Chat: models.Chat{ID: chatID}, Text: p.Text}, nil
}

func (f *fakeMessenger) SendChatAction(context.Context, *tgbot.SendChatActionParams) (bool, error) {
	return true, nil
}

func (f *fakeMessenger) AnswerInlineQuery(_ context.Context, p *tgbot.AnswerInlineQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inline = append(f.inline, p)
	return true, nil
}

func (f *fakeMessenger) AnswerCallbackQuery(_ context.Context, p *tgbot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callbackAnswer{ID: p.CallbackQueryID, Text: p.Text, Alert: p.ShowAlert})
	return true, nil
}

func (f *fakeMessenger) lastSent(t *testing.T) sent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "nothing was sent")
	return f.sent[len(f.sent)-1]
}

func (f *fakeMessenger) lastEdit(t *testing.T) sent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.edits, "nothing was edited")
	return f.edits[len(f.edits)-1]
}

func (f *fakeMessenger) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeCompleter returns a canned answer or error.
type fakeCompleter struct {
	mu     sync.Mutex
	reply  string
	tokens int
	err    error
	calls  []backend.InvokeOptions
	during func()
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Invoke(_ context.Context, msgs []backend.Message, opts backend.InvokeOptions) (*backend.InvokeResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	during := f.during
	f.mu.Unlock()

	if during != nil {
		during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &backend.InvokeResult{Content: f.reply, Model: opts.Model, TotalTokens: f.tokens}, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harness struct {
	bot    *Bot
	tg     *fakeMessenger
	llm    *fakeCompleter
	policy *access.Policy
	prefs  *prefs.Registry
	ledger *usage.Ledger
	store  *state.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := state.Open(filepath.Join(t.TempDir(), state.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		tg:     &fakeMessenger{failFor: map[int64]bool{}},
		llm:    &fakeCompleter{reply: "Hello there", tokens: 150},
		policy: access.New(store, ownerID),
		prefs:  prefs.New(store, ""),
		ledger: usage.New(store),
		store:  store,
	}
	h.bot = New(Deps{
		Messenger: h.tg,
		Completer: h.llm,
		Policy:    h.policy,
		Prefs:     h.prefs,
		Ledger:    h.ledger,
		Log:       zerolog.Nop(),
	}, Options{Username: "AskBot", Temperature: 0.7})
	return h
}

func privateMsg(from int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   1,
		From: &models.User{ID: from, FirstName: "Ann"},
		Chat: models.Chat{ID: from, Type: models.ChatTypePrivate},
		Text: text,
	}}
}

func groupMsg(from int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   1,
		From: &models.User{ID: from, FirstName: "Ann"},
		Chat: models.Chat{ID: groupID, Type: models.ChatTypeSupergroup, Title: "Team"},
		Text: text,
	}}
}

func inlineQuery(id string, from int64, query string) *models.Update {
	return &models.Update{InlineQuery: &models.InlineQuery{ID: id, From: &models.User{ID: from}, Query: query}}
}

func callback(id string, from int64, msg *models.Message, data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:      id,
		From:    models.User{ID: from},
		Message: models.MaybeInaccessibleMessage{Message: msg},
		Data:    data,
	}}
}

func article(t *testing.T, p *tgbot.AnswerInlineQueryParams) *models.InlineQueryResultArticle {
	t.Helper()
	require.Len(t, p.Results, 1)
	a, ok := p.Results[0].(*models.InlineQueryResultArticle)
	require.True(t, ok, "result is %T", p.Results[0])
	return a
}

func (h *harness) send(u *models.Update) {
	h.bot.HandleUpdate(context.Background(), u)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text      string
		name      string
		args      string
		isCommand bool
	}{
		{"hello", "", "", false},
		{"/start", "start", "", true},
		{"/ask what is Go?", "ask", "what is Go?", true},
		{"/ask@AskBot  spaced  ", "ask", "spaced", true},
		{"/ask@askbot hi", "ask", "hi", true},
		{"/ask@OtherBot hi", "", "", true},
		{"/ASK hi", "ask", "hi", true},
		{"/ask\nmultiline question", "ask", "multiline question", true},
		{"/auth 42 extra", "auth", "42 extra", true},
		{"/", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args, isCommand := parseCommand(tt.text, "AskBot")
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
			assert.Equal(t, tt.isCommand, isCommand)
		})
	}
}

func TestAskPrivate(t *testing.T) {
	h := newHarness(t)

	h.send(privateMsg(42, "/ask what is a mutex?"))

	placeholder := h.tg.lastSent(t)
	assert.Equal(t, textThinking, placeholder.Text)

	edit := h.tg.lastEdit(t)
	assert.Equal(t, placeholder.MessageID, edit.MessageID)
	assert.Contains(t, edit.Text, "Hello there")
	assert.Contains(t, edit.Text, "<code>gpt-4o-mini</code>")
	assert.Contains(t, edit.Text, "<code>150</code>")

	require.Equal(t, 1, h.llm.callCount())
	assert.Equal(t, 2000, h.llm.calls[0].MaxTokens)
	require.NotNil(t, h.llm.calls[0].Temperature)
	assert.Equal(t, 0.7, *h.llm.calls[0].Temperature)

	rec, ok := h.ledger.Get(42)
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.TotalRequests)
	assert.Equal(t, int64(150), rec.TotalTokens)
}

func TestAskWithoutQuestion(t *testing.T) {
	h := newHarness(t)

	h.send(privateMsg(42, "/ask"))

	assert.Equal(t, textAskUsage, h.tg.lastSent(t).Text)
	assert.Equal(t, 0, h.llm.callCount())
}

func TestFailedCompletionRecordsNothing(t *testing.T) {
	h := newHarness(t)
	h.llm.err = &backend.ProviderError{StatusCode: 404, Type: "invalid_request_error", Message: "The model 'gpt-9' does not exist"}
	require.NoError(t, h.prefs.SetModel(42, "gpt-9"))

	h.send(privateMsg(42, "/ask hi"))

	edit := h.tg.lastEdit(t)
	assert.Contains(t, edit.Text, "The model &#39;gpt-9&#39; does not exist")
	assert.Equal(t, "gpt-9", h.llm.calls[0].Model)

	_, ok := h.ledger.Get(42)
	assert.False(t, ok, "a failed completion must not record usage")
}

func TestAskGroupRequiresGroupAuthorization(t *testing.T) {
	h := newHarness(t)

	h.send(groupMsg(42, "/ask hi"))
	assert.Equal(t, textGroupNotAuthorized, h.tg.lastSent(t).Text)
	assert.Equal(t, 0, h.llm.callCount())

	// A non-owner cannot authorize the group.
	before := h.tg.sentCount()
	h.send(groupMsg(42, "/authgroup"))
	assert.Equal(t, before, h.tg.sentCount(), "non-owner admin commands get no reply")
	assert.False(t, h.policy.IsGroupAuthorized(groupID))

	h.send(groupMsg(ownerID, "/authgroup@AskBot"))
	assert.Equal(t, "✅ This group has been authorized!", h.tg.lastSent(t).Text)
	assert.True(t, h.policy.IsGroupAuthorized(groupID))

	h.send(groupMsg(42, "/ask hi"))
	assert.Equal(t, 1, h.llm.callCount())

	h.send(groupMsg(ownerID, "/revokegroup"))
	assert.False(t, h.policy.IsGroupAuthorized(groupID))
}

func TestGroupAdminOnlyInGroups(t *testing.T) {
	h := newHarness(t)

	h.send(privateMsg(ownerID, "/authgroup"))

	assert.Equal(t, textGroupsOnly, h.tg.lastSent(t).Text)
	assert.Empty(t, h.policy.AuthorizedGroups())
}

func TestBanAndUnban(t *testing.T) {
	h := newHarness(t)

	h.send(privateMsg(ownerID, "/ban 7"))
	assert.Equal(t, "✅ User <code>7</code> has been banned.", h.tg.lastSent(t).Text)

	h.send(privateMsg(7, "/ask hi"))
	assert.Equal(t, textUserNotAuthorized, h.tg.lastSent(t).Text)

	h.send(privateMsg(7, "hello?"))
	assert.Equal(t, textUserNotAuthorized, h.tg.lastSent(t).Text)
	assert.Equal(t, 0, h.llm.callCount())

	h.send(privateMsg(ownerID, "/unban 7"))
	assert.True(t, h.policy.IsUserAuthorized(7))

	h.send(privateMsg(7, "/ask hi"))
	assert.Equal(t, 1, h.llm.callCount())
}

func TestOwnerAuthorizesAndUsesModel(t *testing.T) {
	h := newHarness(t)
	h.llm.tokens = 150

	h.send(privateMsg(ownerID, "/auth 42"))
	assert.Equal(t, []int64{42}, h.policy.AuthorizedUsers())

	h.send(callback("cb1", 42, &models.Message{ID: 9, Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate}}, "model_gpt-4o-mini"))
	h.send(privateMsg(42, "/ask one"))
	h.llm.tokens = 50
	h.send(privateMsg(42, "two"))

	assert.True(t, h.policy.IsUserAuthorized(42))
	assert.Equal(t, "gpt-4o-mini", h.prefs.Model(42))

	rec, ok := h.ledger.Get(42)
	require.True(t, ok)
	assert.Equal(t, int64(2), rec.TotalRequests)
	assert.Equal(t, int64(200), rec.TotalTokens)
	assert.Equal(t, state.ModelUsage{Requests: 2, Tokens: 200}, rec.ByModel["gpt-4o-mini"])
}

func TestAdminUsage(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"/auth", "/auth abc", "/ban 4.2"} {
		h.send(privateMsg(ownerID, text))
		assert.True(t, strings.HasPrefix(h.tg.lastSent(t).Text, "Usage: "), text)
	}
	assert.Empty(t, h.policy.AuthorizedUsers())
	assert.Empty(t, h.policy.BannedUsers())
}

func TestNonOwnerAdminIgnored(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"/ban 43", "/auth 43", "/broadcast hi"} {
		h.send(privateMsg(42, text))
	}

	assert.Equal(t, 0, h.tg.sentCount())
	assert.Equal(t, 0, h.llm.callCount(), "admin commands are not treated as conversation")
	assert.Empty(t, h.policy.BannedUsers())
}

func TestBroadcast(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.policy.AuthorizeUser(11))
	require.NoError(t, h.policy.AuthorizeUser(12))
	h.tg.failFor[12] = true

	h.send(privateMsg(ownerID, "/broadcast maintenance <tonight>"))

	var delivered []sent
	h.tg.mu.Lock()
	for _, s := range h.tg.sent {
		if s.ChatID == 11 {
			delivered = append(delivered, s)
		}
	}
	h.tg.mu.Unlock()

	require.Len(t, delivered, 1)
	assert.Contains(t, delivered[0].Text, "maintenance &lt;tonight&gt;")
	assert.Equal(t, broadcastDoneText(1, 1), h.tg.lastEdit(t).Text)
}

func TestConversationPrivateOnly(t *testing.T) {
	h := newHarness(t)

	h.send(groupMsg(42, "just chatting"))
	assert.Equal(t, 0, h.llm.callCount())
	assert.Equal(t, 0, h.tg.sentCount())

	h.send(privateMsg(42, "tell me <something>"))
	assert.Equal(t, 1, h.llm.callCount())
	assert.Equal(t, "Hello there", h.tg.lastSent(t).Text)
}

func TestStartAndStats(t *testing.T) {
	h := newHarness(t)

	h.send(privateMsg(42, "/start"))
	start := h.tg.lastSent(t)
	assert.Contains(t, start.Text, `<a href="tg://user?id=42">Ann</a>`)
	assert.Contains(t, start.Text, "@AskBot")
	assert.Equal(t, mainMenuKeyboard(), start.Markup)

	h.send(privateMsg(42, "/stats"))
	assert.Equal(t, textNoStats, h.tg.lastSent(t).Text)

	require.NoError(t, h.ledger.Record(42, "gpt-4o", 1234567))
	h.send(privateMsg(42, "/stats"))
	stats := h.tg.lastSent(t).Text
	assert.Contains(t, stats, "<code>1,234,567</code>")
	assert.Contains(t, stats, "<code>gpt-4o</code>: 1 requests, 1,234,567 tokens")

	require.NoError(t, h.policy.BanUser(42))
	h.send(privateMsg(42, "/start"))
	assert.Equal(t, textAccessDenied, h.tg.lastSent(t).Text)
}

func TestInlineQuery(t *testing.T) {
	h := newHarness(t)
	h.llm.reply = strings.Repeat("word ", 40)
	h.llm.tokens = 30

	h.send(inlineQuery("q1", 42, "  "))
	h.send(inlineQuery("q2", 42, "why is the sky blue"))

	require.Len(t, h.tg.inline, 2)

	empty := h.tg.inline[0]
	assert.NotNil(t, empty.Results)
	assert.Empty(t, empty.Results)
	require.NotNil(t, empty.Button)
	assert.Equal(t, textInlineEmpty, empty.Button.Text)
	assert.Equal(t, "help", empty.Button.StartParameter)

	answered := h.tg.inline[1]
	assert.Equal(t, 0, answered.CacheTime)
	assert.True(t, answered.IsPersonal)
	res := article(t, answered)
	assert.Equal(t, "🤖 AI Response (gpt-4o-mini)", res.Title)
	assert.Equal(t, 103, len([]rune(res.Description)))
	assert.True(t, strings.HasSuffix(res.Description, "..."))
	content, ok := res.InputMessageContent.(*models.InputTextMessageContent)
	require.True(t, ok)
	assert.Contains(t, content.MessageText, "🤖 gpt-4o-mini | 🎯 30 tokens")
	assert.Equal(t, askAnotherKeyboard("why is the sky blue"), res.ReplyMarkup)
	assert.Equal(t, 500, h.llm.calls[0].MaxTokens)

	require.NoError(t, h.policy.BanUser(42))
	h.send(inlineQuery("q3", 42, "again"))
	require.NotNil(t, h.tg.inline[2].Button)
	assert.Equal(t, textInlineDenied, h.tg.inline[2].Button.Text)
	assert.Equal(t, 1, h.llm.callCount())
}

func TestInlineQueryError(t *testing.T) {
	h := newHarness(t)
	h.llm.err = errors.New("dial tcp: connection refused")

	h.send(inlineQuery("q", 42, "hi"))

	require.Len(t, h.tg.inline, 1)
	assert.Equal(t, "❌ Error", article(t, h.tg.inline[0]).Title)
	_, ok := h.ledger.Get(42)
	assert.False(t, ok)
}

func TestCallbacks(t *testing.T) {
	h := newHarness(t)
	msg := &models.Message{ID: 5, Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate}}
	press := func(data string) {
		h.send(callback(data, 42, msg, data))
	}

	press(cbChangeModel)
	assert.Equal(t, modelKeyboard(), h.tg.lastEdit(t).Markup)

	press("model_o1-mini")
	assert.Equal(t, "o1-mini", h.prefs.Model(42))
	assert.Equal(t, callbackAnswer{ID: "model_o1-mini", Text: "✅ Model changed to o1-mini", Alert: true}, h.tg.callbacks[len(h.tg.callbacks)-1])
	assert.Contains(t, h.tg.lastEdit(t).Text, "🎓 O1 Mini (Fast Reasoning)")

	edits := len(h.tg.edits)
	press(cbStats)
	assert.Equal(t, edits, len(h.tg.edits), "no stats means an alert, not an edit")
	assert.Equal(t, textNoStatsAlert, h.tg.callbacks[len(h.tg.callbacks)-1].Text)

	require.NoError(t, h.ledger.Record(42, "o1-mini", 10))
	press(cbStats)
	assert.Contains(t, h.tg.lastEdit(t).Text, "<code>o1-mini</code>: 1 requests")
	assert.Equal(t, backKeyboard(), h.tg.lastEdit(t).Markup)

	press(cbBackToMenu)
	assert.Equal(t, textMainMenu, h.tg.lastEdit(t).Text)

	require.NoError(t, h.policy.BanUser(42))
	press(cbHelp)
	assert.Equal(t, callbackAnswer{ID: cbHelp, Text: textUnauthorized, Alert: true}, h.tg.callbacks[len(h.tg.callbacks)-1])
}

func TestCompletionDoesNotHoldStore(t *testing.T) {
	h := newHarness(t)

	// The store must stay writable while a completion is in flight.
	h.llm.during = func() {
		done := make(chan error, 1)
		go func() { done <- h.policy.AuthorizeUser(77) }()
		if err := <-done; err != nil {
			t.Errorf("mutation during completion: %v", err)
		}
	}

	h.send(privateMsg(42, "/ask hi"))
	assert.Equal(t, []int64{77}, h.policy.AuthorizedUsers())
}

func TestDispatchConcurrent(t *testing.T) {
	h := newHarness(t)
	h.llm.tokens = 3

	for i := 0; i < 20; i++ {
		h.bot.Dispatch(context.Background(), privateMsg(int64(100+i%4), fmt.Sprintf("/ask q%d", i)))
	}
	h.bot.Wait()

	var total int64
	for id := int64(100); id < 104; id++ {
		rec, ok := h.ledger.Get(id)
		require.True(t, ok)
		assert.Equal(t, int64(5), rec.TotalRequests)
		total += rec.TotalTokens
	}
	assert.Equal(t, int64(60), total)
}

func TestRecordFailureStillAnswers(t *testing.T) {
	h := newHarness(t)
	h.llm.tokens = -1 // rejected by the ledger

	h.send(privateMsg(42, "/ask hi"))

	assert.Contains(t, h.tg.lastEdit(t).Text, "Hello there")
	_, ok := h.ledger.Get(42)
	assert.False(t, ok)
}

func TestCallbackWithoutMessage(t *testing.T) {
	h := newHarness(t)

	h.send(callback("cb", 42, nil, cbHelp))

	assert.Empty(t, h.tg.edits)
	assert.Equal(t, []callbackAnswer{{ID: "cb"}}, h.tg.callbacks)
}

func TestAskLongAnswerFitsTelegramLimit(t *testing.T) {
	h := newHarness(t)
	// 3000 emoji are 3000 runes but 6000 UTF-16 units.
	h.llm.reply = strings.Repeat("😀", 3000)

	h.send(privateMsg(42, "/ask smile"))

	edit := h.tg.lastEdit(t)
	assert.NotEqual(t, textDeliveryFailed, edit.Text)
	assert.Contains(t, edit.Text, "😀…")
	assert.LessOrEqual(t, utf16Len(edit.Text), 4096)
}

func TestAskRejectedEditFallsBack(t *testing.T) {
	h := newHarness(t)
	h.tg.rejectEdit = func(text string) bool { return strings.Contains(text, "Hello there") }

	h.send(privateMsg(42, "/ask hi"))

	placeholder := h.tg.lastSent(t)
	edit := h.tg.lastEdit(t)
	assert.Equal(t, placeholder.MessageID, edit.MessageID)
	assert.Equal(t, textDeliveryFailed, edit.Text)

	// The completion itself succeeded, so it is still billed.
	rec, ok := h.ledger.Get(42)
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.TotalRequests)
}

func TestZeroTemperaturePassedThrough(t *testing.T) {
	h := newHarness(t)
	h.bot.opts.Temperature = 0

	h.send(privateMsg(42, "/ask be exact"))

	require.Equal(t, 1, h.llm.callCount())
	require.NotNil(t, h.llm.calls[0].Temperature, "zero must reach the backend, not fall back to its default")
	assert.Equal(t, 0.0, *h.llm.calls[0].Temperature)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", updateKind(privateMsg(1, "hi")))
	assert.Equal(t, "inline_query", updateKind(inlineQuery("q", 1, "hi")))
	assert.Equal(t, "callback_query", updateKind(callback("c", 1, nil, cbHelp)))
	assert.Equal(t, "other", updateKind(&models.Update{ID: 3}))
}
