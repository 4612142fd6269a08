// Package config loads askbot's TOML configuration.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables. A missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gookit/validate"

	"github.com/ksteinfeldt/askbot/internal/notify"
	"github.com/ksteinfeldt/askbot/internal/prefs"
)

// DefaultPath is used when neither --config nor ASKBOT_CONFIG is set.
const DefaultPath = "askbot.toml"

// Errors returned when a credential needed by a command is missing.
var (
	ErrMissingBotToken = errors.New("telegram bot token not set (BOT_TOKEN)")
	ErrMissingAPIKey   = errors.New("OpenAI API key not set (OPENAI_API_KEY)")
	ErrMissingOwner    = errors.New("owner id not set (OWNER_ID)")
)

// Config is the full configuration.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Bot      BotConfig      `toml:"bot"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Slack    notify.Config  `toml:"slack"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// TelegramConfig configures the Bot API connection.
type TelegramConfig struct {
	Token           string `toml:"token"`
	APIURL          string `toml:"api_url" validate:"fullUrl"`
	PollTimeoutSecs int    `toml:"poll_timeout_secs" validate:"required|min:1|max:50"`
}

// OpenAIConfig configures the completion API.
type OpenAIConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url" validate:"fullUrl"`
	RequestsPerMinute int    `toml:"requests_per_minute" validate:"min:0"`
	TimeoutSecs       int    `toml:"timeout_secs" validate:"required|min:1"`
}

// BotConfig holds the values the core and dispatch consume.
type BotConfig struct {
	// OwnerID is the Telegram user id with administrative rights.
	OwnerID         int64   `toml:"owner_id"`
	DefaultModel    string  `toml:"default_model" validate:"required"`
	MaxTokens       int     `toml:"max_tokens" validate:"required|min:1"`
	InlineMaxTokens int     `toml:"inline_max_tokens" validate:"required|min:1"`
	Temperature     float64 `toml:"temperature"`
}

// StoreConfig locates the state file.
type StoreConfig struct {
	DataDir string `toml:"data_dir" validate:"required"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level" validate:"required|in:trace,debug,info,warn,error"`
	Format string `toml:"format" validate:"required|in:auto,console,json"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			APIURL:          "https://api.telegram.org",
			PollTimeoutSecs: 30,
		},
		OpenAI: OpenAIConfig{
			BaseURL:           "https://api.openai.com",
			RequestsPerMinute: 60,
			TimeoutSecs:       120,
		},
		Bot: BotConfig{
			DefaultModel:    prefs.DefaultModel,
			MaxTokens:       2000,
			InlineMaxTokens: 500,
			Temperature:     0.7,
		},
		Store: StoreConfig{
			DataDir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Slack: notify.DefaultConfig(),
		Metrics: MetricsConfig{
			Listen: ":9090",
		},
	}
}

// ResolvePath picks the config file: the explicit flag value, then
// ASKBOT_CONFIG, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("ASKBOT_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads path over the defaults, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides copies environment variables over the loaded values.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OWNER_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("OWNER_ID: %q is not an integer id", v)
		}
		c.Bot.OwnerID = id
	}
	if v := os.Getenv("ASKBOT_DEFAULT_MODEL"); v != "" {
		c.Bot.DefaultModel = v
	}
	if v := os.Getenv("ASKBOT_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	if v := os.Getenv("ASKBOT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("ASKBOT_SLACK_WEBHOOK"); v != "" {
		c.Slack.WebhookURL = v
		c.Slack.Enabled = true
	}
	if v := os.Getenv("ASKBOT_METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
		c.Metrics.Enabled = true
	}
	return nil
}

// Validate checks every section. Credentials are not required here; commands
// that need them call RequireServe or RequireOpenAI.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    any
	}{
		{"telegram", &c.Telegram},
		{"openai", &c.OpenAI},
		{"bot", &c.Bot},
		{"store", &c.Store},
		{"log", &c.Log},
		{"slack", &c.Slack},
		{"metrics", &c.Metrics},
	}

	for _, s := range sections {
		v := validate.Struct(s.v)
		if !v.Validate() {
			return fmt.Errorf("%s: %w", s.name, v.Errors.OneError())
		}
	}

	if c.Bot.Temperature < 0 || c.Bot.Temperature > 2 {
		return fmt.Errorf("bot: temperature %.2f out of range [0, 2]", c.Bot.Temperature)
	}
	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		return errors.New("slack: enabled without webhook_url")
	}
	return nil
}

// RequireOpenAI checks what the completion client needs.
func (c *Config) RequireOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RequireServe checks what running the bot needs.
func (c *Config) RequireServe() error {
	if c.Telegram.Token == "" {
		return ErrMissingBotToken
	}
	if err := c.RequireOpenAI(); err != nil {
		return err
	}
	if c.Bot.OwnerID == 0 {
		return ErrMissingOwner
	}
	return nil
}
