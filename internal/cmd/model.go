package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/bot"
	"github.com/ksteinfeldt/askbot/internal/style"
)

var modelCmd = &cobra.Command{
	Use:     "model",
	GroupID: GroupAdmin,
	Short:   "Show or change users' models",
	RunE:    requireSubcommand,
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the models offered in the chat menu",
	Args:  cobra.NoArgs,
	// The catalog is static; no state file needed.
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, m := range bot.Catalog {
			marker := " "
			if m.ID == cfg.Bot.DefaultModel {
				marker = style.SuccessPrefix
			}
			fmt.Fprintf(out, "%s %s %s\n", marker, style.Column.Render(m.ID), style.Dim.Render(m.Label))
		}
		return nil
	},
}

var modelGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show the model a user has selected",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelGet,
}

var modelSetCmd = &cobra.Command{
	Use:   "set <user-id> <model>",
	Short: "Select a model on behalf of a user",
	Long: `Select a model on behalf of a user.

Any model id is accepted, including ones not in the chat menu, so that
newly released models can be tried before the menu is updated.`,
	Args: cobra.ExactArgs(2),
	RunE: runModelSet,
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelGetCmd)
	modelCmd.AddCommand(modelSetCmd)
}

func runModelGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	model := c.prefs.Model(id)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", style.ID(id), model, bot.ModelLabel(model))
	return nil
}

func runModelSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.prefs.SetModel(id, args[1]); err != nil {
		return fmt.Errorf("setting model for %d: %w", id, err)
	}

	logger.Info().Int64("user", id).Str("model", args[1]).Msg("model changed from cli")
	fmt.Fprintf(cmd.OutOrStdout(), "%s User %s now uses %s\n", style.SuccessPrefix, style.ID(id), args[1])
	return nil
}
