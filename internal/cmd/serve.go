package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/bot"
	"github.com/ksteinfeldt/askbot/internal/metrics"
	"github.com/ksteinfeldt/askbot/internal/notify"
	"github.com/ksteinfeldt/askbot/internal/telegram"
)

// shutdownGrace is how long in-flight updates may run after a stop signal.
const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: GroupBot,
	Short:   "Run the Telegram bot",
	Long: `Run the bot: long-poll Telegram for updates and answer them.

Requires BOT_TOKEN, OPENAI_API_KEY and OWNER_ID (or the matching config
keys). The state file is locked for as long as the bot runs.

With [metrics] enabled, Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	// Handlers outlive the stop signal by up to shutdownGrace.
	handlerCtx, cancelHandlers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelHandlers()

	var b *bot.Bot
	tg, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		APIURL:      cfg.Telegram.APIURL,
		PollTimeout: time.Duration(cfg.Telegram.PollTimeoutSecs) * time.Second,
		Log:         logger,
	}, func(_ context.Context, u *models.Update) {
		b.Dispatch(handlerCtx, u)
	})
	if err != nil {
		return err
	}
	me, err := tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("checking bot token: %w", err)
	}

	llm, err := newCompleter()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.New(cfg.Metrics.Enabled, reg)
	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srv := startMetricsServer(cfg.Metrics.Listen, reg)
		defer shutdownServer(srv)
	}

	notifier := notify.NewClient(cfg.Slack, logger)
	defer notifier.Wait()

	b = bot.New(bot.Deps{
		Messenger: telegram.Throttle(tg, cfg.Telegram.Token),
		Completer: llm,
		Policy:    c.policy,
		Prefs:     c.prefs,
		Ledger:    c.ledger,
		Notifier:  notifier,
		Metrics:   recorder,
		Log:       logger,
	}, bot.Options{
		Username:        me.Username,
		MaxTokens:       cfg.Bot.MaxTokens,
		InlineMaxTokens: cfg.Bot.InlineMaxTokens,
		Temperature:     cfg.Bot.Temperature,
	})

	logger.Info().
		Str("bot", me.Username).
		Int64("owner", cfg.Bot.OwnerID).
		Str("default_model", c.prefs.Default()).
		Str("state", c.store.Path()).
		Bool("metrics", cfg.Metrics.Enabled).
		Bool("slack", notifier.Enabled()).
		Msg("bot started")

	// Start long-polls until the stop signal.
	tg.Start(ctx)

	logger.Info().Msg("stopping, waiting for in-flight updates")
	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		logger.Warn().Dur("grace", shutdownGrace).Msg("abandoning in-flight updates")
		cancelHandlers()
		<-done
	}

	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("metrics server shutdown")
	}
}
