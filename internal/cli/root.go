// Package cli implements the classhub command line.
package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd is the root command for classhub.
var rootCmd = &cobra.Command{
	Use:     "classhub",
	Version: "dev",
	Short:   "Class timetable, announcements and AI summaries",
	Long: `classhub serves a class's effective timetable and announcements over HTTP and
Telegram, posts a daily digest, and manages AI summaries of general announcements.

Configuration is read from the environment and from a .env file if present.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, summaryCmd, digestCmd)
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
