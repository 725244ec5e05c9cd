package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/observability"
	"github.com/spec-kit/contest-provisioner/internal/persistence"
	"github.com/spec-kit/contest-provisioner/internal/repository"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded provisioning runs, or the outcomes of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var (
	historyContest string
	historyLimit   int
)

func init() {
	historyCmd.Flags().StringVar(&historyContest, "contest", "", "only runs for this contest id (env DOMJUDGE_CONTEST_ID)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return apperrors.NewValidationError("run history needs POSTGRES_DSN", nil)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()
	runs := repository.NewRunRepository(pg.PoolHandle())

	if len(args) == 1 {
		outcomes, err := runs.ListOutcomes(ctx, args[0])
		if err != nil {
			return err
		}
		printOutcomes(cmd.OutOrStdout(), outcomes)
		return nil
	}

	contest := historyContest
	if !cmd.Flags().Changed("contest") {
		contest = cfg.Remote.ContestID
	}
	list, err := runs.ListRuns(ctx, contest, historyLimit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), list)
	return nil
}

func printRuns(out io.Writer, runs []domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return
	}
	header := lipgloss.NewRenderer(out).NewStyle().Bold(true)
	fmt.Fprintln(out, header.Render(fmt.Sprintf("%-36s  %-8s  %-20s  %5s  %7s  %5s  %5s", "RUN", "CONTEST", "STARTED", "TOTAL", "CREATED", "DUPS", "FAIL")))
	for _, r := range runs {
		state := ""
		switch {
		case r.Cancelled:
			state = " cancelled"
		case r.FinishedAt == nil:
			state = " unfinished"
		}
		fmt.Fprintf(out, "%-36s  %-8s  %-20s  %5d  %7d  %5d  %5d%s\n",
			r.ID, r.ContestID, r.StartedAt.Local().Format(time.DateTime),
			r.Total, r.Summary.Created, r.Summary.Duplicates, r.Summary.Failures, state)
	}
}

func printOutcomes(out io.Writer, outcomes []domain.RunOutcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "no outcomes recorded for this run")
		return
	}
	for _, o := range outcomes {
		userID := "-"
		if o.UserID != nil {
			userID = *o.UserID
		}
		teamID := o.TeamID
		if teamID == "" {
			teamID = "-"
		}
		fmt.Fprintf(out, "%4d  %-24s  team=%s:%s  user=%s:%s\n",
			o.Position, o.Username, o.TeamStatus, teamID, o.UserStatus, userID)
	}
}
