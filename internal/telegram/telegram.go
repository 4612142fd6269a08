// Package telegram connects askbot to the Bot API through go-telegram/bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// DefaultPollTimeout is how long one getUpdates call waits server side.
const DefaultPollTimeout = 30 * time.Second

// ErrMissingToken indicates the client was created without a bot token.
var ErrMissingToken = errors.New("telegram bot token not set")

// Config describes the Bot API connection.
type Config struct {
	Token string

	// APIURL overrides https://api.telegram.org (tests, local Bot API server).
	APIURL      string
	PollTimeout time.Duration
	Log         zerolog.Logger
}

// Handler receives each incoming update.
type Handler func(ctx context.Context, u *models.Update)

// New creates a Bot API client and checks the token with getMe. Updates
// received after Start are passed to handle; a nil handle drops them.
func New(cfg Config, handle Handler) (*tgbot.Bot, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	log := cfg.Log.With().Str("component", "telegram").Logger()

	opts := []tgbot.Option{
		// Long polls hold the connection open for pollTimeout.
		tgbot.WithHTTPClient(pollTimeout, &http.Client{Timeout: pollTimeout + 30*time.Second}),
		tgbot.WithErrorsHandler(func(err error) {
			log.Warn().Err(Redact(err, cfg.Token)).Msg("telegram request failed")
		}),
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, u *models.Update) {
			if handle != nil {
				handle(ctx, u)
			}
		}),
	}
	if cfg.APIURL != "" {
		opts = append(opts, tgbot.WithServerURL(cfg.APIURL))
	}

	b, err := tgbot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", Redact(err, cfg.Token))
	}
	return b, nil
}

// Redact strips the token from err. Request errors carry the full method
// URL, which embeds it.
func Redact(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
