package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contest-provisioner/internal/roster"
)

var bomCmd = &cobra.Command{
	Use:   "bom <file>...",
	Short: "Re-encode files as UTF-8 with a byte order mark",
	Long: `Rewrite each file as UTF-8 with exactly one leading byte order mark so spreadsheet
tools open Korean rosters correctly. Invalid byte sequences become U+FFFD.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBOM,
}

func init() {
	rootCmd.AddCommand(bomCmd)
}

func runBOM(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if err := roster.RewriteWithBOM(path); err != nil {
			return fmt.Errorf("rewrite %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "converted to UTF-8 BOM: %s\n", path)
	}
	return nil
}
