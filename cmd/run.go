package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/edulearn/internal/app"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Services:    d.services(),
		SkipWelcome: noSplash,
	})
}
