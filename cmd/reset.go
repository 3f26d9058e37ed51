package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset lesson and quiz progress",
	Long: `Reset lesson and quiz progress stored on this computer.

The signed-in session is kept. Pass --history to also delete recorded quiz
attempts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes your progress; rerun with --yes to confirm")
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		d.progress.Clear(ctx, d.lessonsKey)
		d.progress.Clear(ctx, d.quizzesKey)

		out := cmd.OutOrStdout()
		if history, _ := cmd.Flags().GetBool("history"); history && d.attempts != nil {
			if err := d.attempts.Clear(ctx); err != nil {
				return fmt.Errorf("clear attempts: %w", err)
			}
			fmt.Fprintln(out, "Quiz history deleted.")
		}
		fmt.Fprintln(out, "Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	resetCmd.Flags().Bool("history", false, "Also delete recorded quiz attempts")
}
