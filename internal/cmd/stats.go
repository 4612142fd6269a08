package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ksteinfeldt/askbot/internal/style"
	"github.com/ksteinfeldt/askbot/internal/usage"
)

var statsCmd = &cobra.Command{
	Use:     "stats [user-id]",
	GroupID: GroupAdmin,
	Short:   "Show usage statistics",
	Long: `Show usage statistics.

With a user id, prints that user's totals and a per-model breakdown.
Without one, prints a line per user who has used the bot, busiest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, ok := c.ledger.Summary(id)
		if !ok {
			fmt.Fprintf(out, "%s No usage recorded for %s\n", style.WarningPrefix, style.ID(id))
			return nil
		}
		printSummary(out, p, id, s)
		return nil
	}

	type row struct {
		id       int64
		requests int64
		tokens   int64
	}
	var rows []row
	for id, u := range c.store.Snapshot().Usage {
		rows = append(rows, row{id, u.TotalRequests, u.TotalTokens})
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "%s No usage recorded yet\n", style.Dim.Render("·"))
		return nil
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].tokens != rows[j].tokens {
			return rows[i].tokens > rows[j].tokens
		}
		return rows[i].id < rows[j].id
	})

	fmt.Fprintf(out, "%s%s%s\n", style.Column.Render("USER"), style.Column.Render("REQUESTS"), "TOKENS")
	for _, r := range rows {
		fmt.Fprintf(out, "%s%s%s\n",
			style.Column.Render(fmt.Sprint(r.id)),
			style.Column.Render(p.Sprintf("%d", r.requests)),
			p.Sprintf("%d", r.tokens))
	}
	return nil
}

func printSummary(out io.Writer, p *message.Printer, id int64, s usage.Summary) {
	fmt.Fprintf(out, "%s %s\n", style.Heading.Render("Usage for"), style.ID(id))
	fmt.Fprintf(out, "  Total requests: %s\n", p.Sprintf("%d", s.TotalRequests))
	fmt.Fprintf(out, "  Total tokens:   %s\n", p.Sprintf("%d", s.TotalTokens))
	if len(s.Models) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, m := range s.Models {
		fmt.Fprintf(out, "  %s %s requests, %s tokens\n",
			style.Column.Render(m.Model),
			p.Sprintf("%d", m.Requests),
			p.Sprintf("%d", m.Tokens))
	}
}
