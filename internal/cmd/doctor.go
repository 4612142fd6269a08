package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/askbot/internal/doctor"
	"github.com/ksteinfeldt/askbot/internal/style"
)

var (
	doctorFix    bool // --fix
	doctorOnline bool // --online
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupAdmin,
	Short:   "Check configuration and the state file",
	Long: `Run health checks against this installation.

Checks credentials, the state file and its invariants, and whether a bot
process currently holds the file. With --online the bot token is also
verified against Telegram. With --fix, a state file that decodes but
breaks an invariant is repaired (ban wins over the allow-list, usage
totals are recomputed). Stop the bot before using --fix.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair problems that can be fixed automatically")
	doctorCmd.Flags().BoolVar(&doctorOnline, "online", false, "Also run checks that contact Telegram")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := doctor.New().Run(&doctor.CheckContext{
		Context: cmd.Context(),
		Config:  cfg,
		Online:  doctorOnline,
	}, doctorFix)

	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		prefix := style.SuccessPrefix
		switch res.Status {
		case doctor.StatusWarning:
			prefix = style.WarningPrefix
		case doctor.StatusError:
			prefix = style.ErrorPrefix
		}
		fmt.Fprintf(out, "%s %s %s\n", prefix, style.Column.Render(res.Name), res.Message)

		for _, change := range report.Fixed[res.Name] {
			fmt.Fprintf(out, "    %s fixed: %s\n", style.ArrowPrefix, change)
		}
		for _, d := range res.Details {
			fmt.Fprintf(out, "    %s\n", style.Dim.Render(d))
		}
		if res.Status != doctor.StatusOK && res.FixHint != "" {
			fmt.Fprintf(out, "    %s %s\n", style.Dim.Render("hint:"), res.FixHint)
		}
	}

	if report.HasErrors() {
		return errors.New("doctor found problems")
	}
	return nil
}
