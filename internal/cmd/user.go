package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/notify"
	"github.com/ksteinfeldt/askbot/internal/style"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: GroupAdmin,
	Short:   "Manage user access",
	Long: `Manage who may talk to the bot.

Any user who is not banned may use the bot; the allow-list is what
/broadcast reaches. Banning a user also removes them from the
allow-list, and authorizing a banned user lifts the ban. The owner is
never locked out.

Examples:
  askbot user list
  askbot user auth 123456789
  askbot user ban 987654321`,
	RunE: requireSubcommand,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the owner, allow-listed and banned users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

// userAction describes one of the user mutation subcommands.
type userAction struct {
	use   string
	short string
	done  string
	event notify.EventType
	apply func(c *core, id int64) error
}

var userActions = []userAction{
	{"auth", "Add a user to the allow-list (lifts a ban)", "authorized", notify.EventUserAuthorized,
		func(c *core, id int64) error { return c.policy.AuthorizeUser(id) }},
	{"revoke", "Remove a user from the allow-list", "revoked", notify.EventUserRevoked,
		func(c *core, id int64) error { return c.policy.RevokeUser(id) }},
	{"ban", "Ban a user (removes them from the allow-list)", "banned", notify.EventUserBanned,
		func(c *core, id int64) error { return c.policy.BanUser(id) }},
	{"unban", "Lift a ban", "unbanned", notify.EventUserUnbanned,
		func(c *core, id int64) error { return c.policy.UnbanUser(id) }},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)

	for _, a := range userActions {
		userCmd.AddCommand(&cobra.Command{
			Use:   a.use + " <user-id>",
			Short: a.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUserAction(cmd, a, args[0])
			},
		})
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric Telegram id", s)
	}
	return id, nil
}

func runUserAction(cmd *cobra.Command, a userAction, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := a.apply(c, id); err != nil {
		return fmt.Errorf("%s %d: %w", a.use, id, err)
	}

	logger.Info().Str("command", a.use).Int64("target", id).Msg("user access changed from cli")
	fmt.Fprintf(cmd.OutOrStdout(), "%s User %s %s\n", style.SuccessPrefix, style.ID(id), a.done)

	notifyFromCLI(a.event, map[string]string{notify.FieldUser: strconv.FormatInt(id, 10)})
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()

	if owner := c.policy.Owner(); owner != 0 {
		fmt.Fprintf(out, "%s %s\n\n", style.Heading.Render("Owner:"), style.ID(owner))
	} else {
		fmt.Fprintf(out, "%s no owner configured (OWNER_ID)\n\n", style.WarningPrefix)
	}

	printIDs(out, "Allow-listed users", c.policy.AuthorizedUsers())
	fmt.Fprintln(out)
	printIDs(out, "Banned users", c.policy.BannedUsers())
	return nil
}

// notifyFromCLI posts a Slack audit event for a change made on the command line.
func notifyFromCLI(event notify.EventType, fields map[string]string) {
	n := notify.NewClient(cfg.Slack, logger)
	fields[notify.FieldActor] = "cli"
	n.Notify(event, fields)
	n.Wait()
}
