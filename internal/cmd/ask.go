package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/backend"
	"github.com/ksteinfeldt/askbot/internal/backend/openai"
	"github.com/ksteinfeldt/askbot/internal/bot"
	"github.com/ksteinfeldt/askbot/internal/style"
)

var askCmd = &cobra.Command{
	Use:     "ask <question>",
	GroupID: GroupBot,
	Short:   "Ask a question from the terminal",
	Long: `Ask a question and print the answer, without going through Telegram.

Uses the same prompt and OpenAI settings as the bot's /ask command.
With --user the question is asked on behalf of that Telegram user: their
selected model is used and the tokens are added to their usage
statistics. This needs the state file, so it cannot run next to the bot.

Examples:
  askbot ask "what is a mutex?"
  askbot ask --model gpt-4o "design a REST API for user management"
  askbot ask --user 123456789 "summarize the Go memory model"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askModel     string // --model: override the model
	askUser      int64  // --user: act as this Telegram user
	askMaxTokens int    // --max-tokens: completion budget
)

func init() {
	askCmd.Flags().StringVar(&askModel, "model", "", "Model to use (default: the user's model, or bot.default_model)")
	askCmd.Flags().Int64Var(&askUser, "user", 0, "Telegram user id to attribute usage to")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "Maximum tokens in the answer (default bot.max_tokens)")

	rootCmd.AddCommand(askCmd)
}

// newCompleter builds the OpenAI backend from the loaded config.
func newCompleter() (*openai.Backend, error) {
	if err := cfg.RequireOpenAI(); err != nil {
		return nil, err
	}
	return openai.New(cfg.OpenAI.APIKey,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithRateLimit(cfg.OpenAI.RequestsPerMinute),
		openai.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second}),
	)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("empty question")
	}

	llm, err := newCompleter()
	if err != nil {
		return err
	}

	model := cfg.Bot.DefaultModel
	var c *core
	if askUser != 0 {
		c, err = openCore()
		if err != nil {
			return err
		}
		defer c.Close()

		if !c.policy.IsUserAuthorized(askUser) {
			return fmt.Errorf("user %d is not allowed to use the bot", askUser)
		}
		model = c.prefs.Model(askUser)
	}
	if askModel != "" {
		model = askModel
	}

	maxTokens := cfg.Bot.MaxTokens
	if askMaxTokens > 0 {
		maxTokens = askMaxTokens
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Asking %s (%s)...\n\n", style.ArrowPrefix, model, llm.Name())

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	temperature := cfg.Bot.Temperature
	result, err := llm.Invoke(ctx, backend.Prompt(bot.PromptAsk, question), backend.InvokeOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return fmt.Errorf("invoking API: %w", err)
	}

	fmt.Fprintln(out, renderAnswer(out, result.Content))

	if c != nil {
		if err := c.ledger.Record(askUser, model, result.TotalTokens); err != nil {
			fmt.Fprintf(out, "\n%s usage not recorded: %v\n", style.WarningPrefix, err)
		}
	}

	cost := llm.EstimateCost(result.InputTokens, result.OutputTokens, model)
	fmt.Fprintf(out, "\n%s %d input + %d output tokens, ~$%.4f\n",
		style.Dim.Render("Cost:"),
		result.InputTokens, result.OutputTokens, cost.TotalCost)

	return nil
}
