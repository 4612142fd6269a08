package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/notify"
	"github.com/ksteinfeldt/askbot/internal/style"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	GroupID: GroupAdmin,
	Short:   "Manage group access",
	Long: `Manage which group chats may use /ask.

Groups are denied unless listed here (or authorized with /authgroup in
the group). Group ids are negative, e.g. -1001234567890.`,
	RunE: requireSubcommand,
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show authorized groups",
	Args:  cobra.NoArgs,
	RunE:  runGroupList,
}

var (
	groupAuthCmd   = newGroupChangeCmd("auth <chat-id>", "Authorize a group chat", true)
	groupRevokeCmd = newGroupChangeCmd("revoke <chat-id>", "Revoke a group chat", false)
)

// newGroupChangeCmd builds auth and revoke. Group ids are negative, which
// cobra would read as shorthand flags, so these commands parse their own
// arguments.
func newGroupChangeCmd(use, short string, authorize bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

The id is taken as is, so negative ids need no "--":

  askbot group auth -1001234567890

Only --config and --log-level are recognized.`,
		DisableFlagParsing: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRawArgs(args)
			if err != nil || raw.help {
				return err
			}
			if raw.config != "" {
				configPath = raw.config
			}
			if raw.logLevel != "" {
				logLevel = raw.logLevel
			}
			return rootCmd.PersistentPreRunE(cmd, raw.positional)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRawArgs(args)
			if err != nil {
				return err
			}
			if raw.help {
				return cmd.Help()
			}
			if len(raw.positional) != 1 {
				return fmt.Errorf("accepts 1 arg(s), received %d", len(raw.positional))
			}
			return runGroupChange(cmd, raw.positional[0], authorize)
		},
	}
}

// rawArgs is a command line read without cobra's flag parser.
type rawArgs struct {
	positional []string
	config     string
	logLevel   string
	help       bool
}

// parseRawArgs accepts the persistent flags, -h/--help and "--". Anything
// that looks like a negative number is positional.
func parseRawArgs(args []string) (rawArgs, error) {
	var raw rawArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			raw.positional = append(raw.positional, args[i+1:]...)
			return raw, nil
		case arg == "-h" || arg == "--help":
			raw.help = true
		case arg == "--config" || arg == "--log-level":
			if i+1 >= len(args) {
				return raw, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			raw.set(arg, args[i])
		case strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--log-level="):
			name, value, _ := strings.Cut(arg, "=")
			raw.set(name, value)
		case isNegativeNumber(arg) || !strings.HasPrefix(arg, "-") || arg == "-":
			raw.positional = append(raw.positional, arg)
		default:
			return raw, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return raw, nil
}

func (r *rawArgs) set(flag, value string) {
	if flag == "--config" {
		r.config = value
	} else {
		r.logLevel = value
	}
}

func isNegativeNumber(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil && strings.HasPrefix(s, "-")
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupAuthCmd)
	groupCmd.AddCommand(groupRevokeCmd)
}

func runGroupChange(cmd *cobra.Command, arg string, authorize bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	apply, event, done := c.policy.AuthorizeGroup, notify.EventGroupAuthorized, "authorized"
	if !authorize {
		apply, event, done = c.policy.RevokeGroup, notify.EventGroupRevoked, "revoked"
	}

	if err := apply(id); err != nil {
		return fmt.Errorf("group %d: %w", id, err)
	}

	logger.Info().Bool("authorize", authorize).Int64("group", id).Msg("group access changed from cli")
	fmt.Fprintf(cmd.OutOrStdout(), "%s Group %s %s\n", style.SuccessPrefix, style.ID(id), done)

	notifyFromCLI(event, map[string]string{notify.FieldGroup: strconv.FormatInt(id, 10)})
	return nil
}

func runGroupList(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	printIDs(cmd.OutOrStdout(), "Authorized groups", c.policy.AuthorizedGroups())
	return nil
}

func printIDs(out io.Writer, title string, ids []int64) {
	fmt.Fprintf(out, "%s %s\n", style.Heading.Render(title+":"), style.Dim.Render(fmt.Sprintf("(%d)", len(ids))))
	if len(ids) == 0 {
		fmt.Fprintf(out, "  %s\n", style.Dim.Render("none"))
		return
	}
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", style.ID(id))
	}
}
