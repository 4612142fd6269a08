package bot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ksteinfeldt/askbot/internal/backend"
	"github.com/ksteinfeldt/askbot/internal/metrics"
)

// System prompts per surface.
const (
	PromptAsk          = "You are a helpful, intelligent AI assistant. Provide clear, accurate, and concise responses."
	promptInline       = "You are a helpful AI assistant. Provide clear and concise responses suitable for inline messaging."
	promptConversation = "You are a friendly and helpful AI assistant. Engage in natural conversation."
)

// answer is a successful completion as shown to the user.
type answer struct {
	Text   string
	Model  string
	Tokens int
}

// complete asks the backend on behalf of userID using their preferred model
// and records usage once the answer is in. No store lock is held while the
// request is in flight. A failed call records nothing.
func (b *Bot) complete(ctx context.Context, userID int64, surface, system, prompt string, maxTokens int) (*answer, error) {
	model := b.prefs.Model(userID)
	log := b.log.With().
		Str("request_id", uuid.NewString()).
		Int64("user", userID).
		Str("model", model).
		Str("surface", surface).
		Logger()

	start := time.Now()
	res, err := b.llm.Invoke(ctx, backend.Prompt(system, prompt), backend.InvokeOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: &b.opts.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if backend.IsProviderError(err) {
			outcome = metrics.OutcomeProviderError
		}
		b.metrics.ObserveCompletion(model, outcome, elapsed)
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("completion failed")
		return nil, err
	}
	b.metrics.ObserveCompletion(model, metrics.OutcomeOK, elapsed)

	if err := b.ledger.Record(userID, model, res.TotalTokens); err != nil {
		// Usage is lost for this request; the answer still goes out.
		b.metrics.IncStoreFailures("record_usage")
		log.Error().Err(err).Int("tokens", res.TotalTokens).Msg("recording usage failed")
	} else {
		b.metrics.AddTokens(model, res.TotalTokens)
	}

	log.Info().
		Int("tokens", res.TotalTokens).
		Str("finish_reason", res.FinishReason).
		Dur("elapsed", elapsed).
		Msg("completion served")

	return &answer{Text: res.Content, Model: model, Tokens: res.TotalTokens}, nil
}
