package doctor

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/ksteinfeldt/askbot/internal/config"
	"github.com/ksteinfeldt/askbot/internal/state"
	"github.com/ksteinfeldt/askbot/internal/telegram"
)

// ConfigCheck verifies the credentials the bot needs to start.
type ConfigCheck struct {
	BaseCheck
}

// NewConfigCheck creates a new config check.
func NewConfigCheck() *ConfigCheck {
	return &ConfigCheck{BaseCheck{
		CheckName:        "config",
		CheckDescription: "Verify bot token, API key and owner id are set",
	}}
}

// Run checks the credentials required by serve.
func (c *ConfigCheck) Run(ctx *CheckContext) *CheckResult {
	if err := ctx.Config.RequireServe(); err != nil {
		hint := "Set it in askbot.toml or the environment"
		switch {
		case errors.Is(err, config.ErrMissingBotToken):
			hint = "Export BOT_TOKEN with the token from @BotFather"
		case errors.Is(err, config.ErrMissingAPIKey):
			hint = "Export OPENAI_API_KEY"
		case errors.Is(err, config.ErrMissingOwner):
			hint = "Export OWNER_ID with your numeric Telegram user id"
		}
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: err.Error(),
			FixHint: hint,
		}
	}

	res := &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Credentials present, owner %d, default model %s", ctx.Config.Bot.OwnerID, ctx.Config.Bot.DefaultModel),
	}
	if ctx.Config.Slack.Enabled {
		res.Details = append(res.Details, "Slack notifications enabled")
	}
	if ctx.Config.Metrics.Enabled {
		res.Details = append(res.Details, "Metrics served on "+ctx.Config.Metrics.Listen)
	}
	return res
}

// StateFileCheck verifies that the state file decodes and keeps its invariants.
// It can repair invariant violations but not a file that is not JSON.
type StateFileCheck struct {
	BaseCheck
}

// NewStateFileCheck creates a new state file check.
func NewStateFileCheck() *StateFileCheck {
	return &StateFileCheck{BaseCheck{
		CheckName:        "state-file",
		CheckDescription: "Verify the state file is readable and consistent",
	}}
}

// Run loads the state file read-only.
func (c *StateFileCheck) Run(ctx *CheckContext) *CheckResult {
	path := state.Path(ctx.Config.Store.DataDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: "No " + state.FileName + " yet (created on first change)",
		}
	}

	st, err := state.Load(path)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "State file cannot be loaded",
			Details: []string{err.Error()},
			FixHint: "Run 'askbot doctor --fix' with the bot stopped, or restore " + path + " from a backup",
		}
	}

	return &CheckResult{
		Name:   c.Name(),
		Status: StatusOK,
		Message: fmt.Sprintf("%d authorized, %d banned, %d groups, %d users with usage",
			len(st.AuthorizedUsers), len(st.BannedUsers), len(st.AuthorizedGroups), len(st.Usage)),
	}
}

// Fix repairs invariant violations in place.
func (c *StateFileCheck) Fix(ctx *CheckContext) ([]string, error) {
	return state.RepairFile(state.Path(ctx.Config.Store.DataDir))
}

// StoreLockCheck reports whether a running bot holds the state file.
type StoreLockCheck struct {
	BaseCheck
}

// NewStoreLockCheck creates a new lock check.
func NewStoreLockCheck() *StoreLockCheck {
	return &StoreLockCheck{BaseCheck{
		CheckName:        "store-lock",
		CheckDescription: "Report whether a bot process owns the state file",
	}}
}

// Run tests the lock file, if any, without creating files.
func (c *StoreLockCheck) Run(ctx *CheckContext) *CheckResult {
	held, err := state.Held(state.Path(ctx.Config.Store.DataDir))
	switch {
	case err != nil:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "Lock not checked: " + err.Error(),
		}
	case held:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "State file is held by another process (bot running?)",
			FixHint: "Admin commands are unavailable until it stops; use the chat commands instead",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: "State file is free",
	}
}

// TelegramCheck verifies the bot token against the Bot API.
type TelegramCheck struct {
	BaseCheck
}

// NewTelegramCheck creates a new Telegram check.
func NewTelegramCheck() *TelegramCheck {
	return &TelegramCheck{BaseCheck{
		CheckName:        "telegram",
		CheckDescription: "Verify the bot token with getMe (--online)",
	}}
}

// Run calls getMe when online checks are enabled.
func (c *TelegramCheck) Run(ctx *CheckContext) *CheckResult {
	if !ctx.Online {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: "Skipped (pass --online to contact Telegram)",
		}
	}

	if ctx.Config.Telegram.Token == "" {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: telegram.ErrMissingToken.Error(),
			FixHint: "Export BOT_TOKEN",
		}
	}

	// New already calls getMe; the second call fetches the username.
	client, err := telegram.New(telegram.Config{
		Token:  ctx.Config.Telegram.Token,
		APIURL: ctx.Config.Telegram.APIURL,
		Log:    zerolog.Nop(),
	}, nil)
	var me *models.User
	if err == nil {
		me, err = client.GetMe(ctx.Context)
	}
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "getMe failed",
			Details: []string{telegram.Redact(err, ctx.Config.Telegram.Token).Error()},
			FixHint: "Check the token with @BotFather and the network path to " + ctx.Config.Telegram.APIURL,
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Token valid for @%s", me.Username),
	}
}
