package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edulearn",
	Short: "Lessons and quizzes in your terminal",
	Long: `EduLearn is a terminal client for the EduLearn learning platform.

Work through lesson tracks, take the quizzes they unlock, and keep your
progress on this computer or in Redis. Sign in to sync with the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a config file (default $XDG_CONFIG_HOME/edulearn/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides EDULEARN_STORAGE_DB_PATH)")
	pf.String("api", "", "Server base URL including /api/v1 (overrides EDULEARN_API_BASE_URL)")
	pf.String("storage", "", "Progress storage backend: sqlite, redis or memory")
	pf.String("scoring", "", "Where server quizzes are graded: remote (default) or local")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.Bool("offline", false, "Do not contact the server")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
