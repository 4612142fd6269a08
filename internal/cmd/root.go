// Package cmd implements the askbot command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/config"
	"github.com/ksteinfeldt/askbot/internal/style"
)

// Command groups.
const (
	GroupBot   = "bot"
	GroupAdmin = "admin"
)

var (
	configPath string // --config
	logLevel   string // --log-level

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "askbot",
	Short: "Telegram assistant bot backed by OpenAI",
	Long: `askbot runs a Telegram bot that answers questions with OpenAI models.

Access is decided by an owner, an allow-list, a ban-list and a group
allow-list kept in bot_data.json inside the data directory. The admin
commands below edit that file directly and refuse to run while the bot
holds it.

Configuration is read from askbot.toml (or --config / ASKBOT_CONFIG) and
the environment: BOT_TOKEN, OPENAI_API_KEY, OWNER_ID.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.ResolvePath(configPath))
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		cfg = loaded

		logger, err = newLogger(cfg.Log, os.Stderr)
		return err
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupBot, Title: "Bot Commands:"},
		&cobra.Group{ID: GroupAdmin, Title: "Administration Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default askbot.toml, or ASKBOT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level: trace, debug, info, warn, error")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

// requireSubcommand is the RunE of parent commands that do nothing themselves.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("requires a subcommand")
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}
