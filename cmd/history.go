package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent quiz attempts",
	Long: `List quiz attempts recorded on this computer, newest first.

With --server, list attempts recorded by the server instead (instructor and
admin accounts only).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		quizKey, _ := cmd.Flags().GetString("quiz")
		server, _ := cmd.Flags().GetBool("server")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if server {
			return serverHistory(cmd, d, limit)
		}
		if d.attempts == nil {
			return fmt.Errorf("attempt history needs the sqlite storage backend")
		}

		records, err := d.attempts.Query(cmd.Context(), store.QueryOpts{Limit: limit, QuizKey: quizKey})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No quiz attempts recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-16s  %-30s  %5s  %5s  %-6s  %s\n",
			"Seq", "Submitted", "Quiz", "Score", "Pct", "Mode", "Passed")
		fmt.Fprintln(out, strings.Repeat("─", 86))
		for _, r := range records {
			fmt.Fprintf(out, "%-5d  %-16s  %-30s  %5d  %4d%%  %-6s  %s\n",
				r.Sequence,
				r.SubmittedAt.Local().Format("2006-01-02 15:04"),
				clip(r.QuizTitle, 30),
				r.Score,
				r.Percentage,
				r.Mode,
				mark(r.Passed),
			)
		}
		fmt.Fprintf(out, "\n%d attempts\n", len(records))
		return nil
	},
}

func serverHistory(cmd *cobra.Command, d *deps, limit int) error {
	if err := d.requireServer(); err != nil {
		return err
	}
	attempts, err := d.client.QuizAttempts(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Could not load attempts."))
	}
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}

	out := cmd.OutOrStdout()
	if len(attempts) == 0 {
		fmt.Fprintln(out, "No quiz attempts on the server.")
		return nil
	}
	fmt.Fprintf(out, "%-16s  %-30s  %-12s  %5s  %s\n", "Submitted", "Quiz", "User", "Pct", "Passed")
	fmt.Fprintln(out, strings.Repeat("─", 80))
	for _, a := range attempts {
		fmt.Fprintf(out, "%-16s  %-30s  %-12s  %4d%%  %s\n",
			a.SubmittedAt.Local().Format("2006-01-02 15:04"),
			clip(a.QuizTitle, 30),
			clip(a.UserID, 12),
			a.Percentage,
			mark(a.Passed),
		)
	}
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum attempts to show (0 for all)")
	historyCmd.Flags().String("quiz", "", "Only show attempts for this quiz key (e.g. web:0)")
	historyCmd.Flags().Bool("server", false, "List attempts recorded by the server")
}
