package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contest-provisioner/internal/roster"
)

var generateCmd = &cobra.Command{
	Use:   "generate <registrations.csv>",
	Short: "Build a provisioning roster from a registration form export",
	Long: `Read a registration CSV, find the participant name and department columns, and
write username,password,tid rows (UTF-8 with BOM) with random passwords and
sequential team ids. Rows missing a name or department, or repeating a username,
are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateOut      string
	generateStartTID string
	generateLength   int
)

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "participants.csv", "roster file to write")
	generateCmd.Flags().StringVar(&generateStartTID, "start-tid", "t000001", "first team id; prefix and zero padding are kept")
	generateCmd.Flags().IntVar(&generateLength, "password-length", roster.DefaultPasswordLength, "length of generated passwords")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	result, err := roster.GenerateFile(args[0], generateOut, roster.GenerateOptions{
		StartTID:       generateStartTID,
		PasswordLength: generateLength,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "row %d: %s\n", w.Row, w.Message)
	}
	fmt.Fprintf(out, "name column: %s, department column: %s\n", result.NameColumn, result.DeptColumn)
	fmt.Fprintf(out, "wrote %d rows to %s (%d skipped)\n", result.Rows, generateOut, len(result.Warnings))
	return nil
}
