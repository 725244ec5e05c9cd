package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "provisioner",
	Short: "Provision contest teams and users into a DOMjudge server",
	Long: `provisioner reads a participant roster and makes sure every participant has a
team and a team-role user on a DOMjudge contest. Runs are idempotent: teams that
already exist are reused and users that already exist are reported as duplicates.

Configuration comes from the environment (a .env file is honoured); flags override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
