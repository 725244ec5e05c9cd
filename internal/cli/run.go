package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/domjudge"
	"github.com/spec-kit/contest-provisioner/internal/events"
	"github.com/spec-kit/contest-provisioner/internal/observability"
	"github.com/spec-kit/contest-provisioner/internal/persistence"
	"github.com/spec-kit/contest-provisioner/internal/report"
	"github.com/spec-kit/contest-provisioner/internal/repository"
	"github.com/spec-kit/contest-provisioner/internal/roster"
	"github.com/spec-kit/contest-provisioner/internal/service"
	"github.com/spec-kit/contest-provisioner/internal/worker"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create missing teams and users for every roster row",
	Long: `Probe the judge with the admin credentials, then for each roster row ensure a team
named after the participant exists and create a team-role user linked to it.

The outcome of every row is written to the result file; passwords are never written.
Exit status is 2 when the probe fails and 1 for any other fatal error.`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

var (
	runCSVPath   string
	runBaseURL   string
	runUser      string
	runContest   string
	runResult    string
	runFormat    string
	runIPStrict  bool
	runPacing    time.Duration
	runTimeout   time.Duration
	runNoHistory bool
)

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runCSVPath, "csv", "f", "", "roster CSV with username,password,tid[,name][,ip] (env PROVISION_CSV_PATH)")
	f.StringVar(&runBaseURL, "base-url", "", "judge base URL (env DOMJUDGE_BASE_URL)")
	f.StringVarP(&runUser, "user", "u", "", "admin username (env DOMJUDGE_ADMIN_USER)")
	f.StringVar(&runContest, "contest", "", "contest id (env DOMJUDGE_CONTEST_ID)")
	f.StringVarP(&runResult, "output", "o", "", "result file path (env PROVISION_RESULT_PATH)")
	f.StringVar(&runFormat, "format", "", "result format: json, csv or yaml (env PROVISION_RESULT_FORMAT)")
	f.BoolVar(&runIPStrict, "ip-strict", false, "restrict each user to the ip column of its row (env PROVISION_IP_STRICT)")
	f.DurationVar(&runPacing, "pacing", 0, "pause between rows (env PROVISION_PACING_MS)")
	f.DurationVar(&runTimeout, "timeout", 0, "per-request timeout (env HTTP_REQUEST_TIMEOUT_SECONDS)")
	f.BoolVar(&runNoHistory, "no-history", false, "do not record the run in postgres even when POSTGRES_DSN is set")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays explicitly set flags on the environment configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("csv") {
		cfg.Batch.CSVPath = runCSVPath
	}
	if f.Changed("base-url") {
		cfg.Remote.BaseURL = strings.TrimRight(runBaseURL, "/")
	}
	if f.Changed("user") {
		cfg.Remote.AdminUser = runUser
	}
	if f.Changed("contest") {
		cfg.Remote.ContestID = runContest
	}
	if f.Changed("output") {
		cfg.Batch.ResultPath = runResult
	}
	if f.Changed("format") {
		cfg.Batch.ResultFormat = runFormat
	}
	if f.Changed("ip-strict") {
		cfg.Batch.IPStrict = runIPStrict
	}
	if f.Changed("pacing") {
		cfg.Batch.PacingMillis = int(runPacing / time.Millisecond)
	}
	if f.Changed("timeout") {
		cfg.Remote.RequestTimeoutSeconds = int(runTimeout / time.Second)
	}
	if f.Changed("no-history") && runNoHistory {
		cfg.Postgres.DSN = ""
	}
}

func runProvision(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	if cfg.Remote.AdminPassword == "" {
		password, err := promptPassword(cmd, "DOMjudge admin password: ")
		if err != nil {
			return err
		}
		cfg.Remote.AdminPassword = password
	}
	if err := cfg.Remote.Validate(); err != nil {
		return err
	}
	if cfg.Batch.CSVPath == "" {
		return apperrors.NewValidationError("roster path is required (--csv or PROVISION_CSV_PATH)", nil)
	}
	format, err := report.ParseFormat(cfg.Batch.ResultFormat)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loaded, err := roster.LoadFile(cfg.Batch.CSVPath, roster.Options{IPStrict: cfg.Batch.IPStrict})
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		logger.Warn("roster row dropped", zap.Int("row", w.Row), zap.String("reason", w.Message))
	}
	logger.Info("roster loaded",
		zap.String("path", cfg.Batch.CSVPath),
		zap.Int("records", len(loaded.Requests)),
		zap.Int("dropped", len(loaded.Warnings)))

	runID := uuid.NewString()
	dispatcher := events.NewInMemoryDispatcher()
	newProgressPrinter(cmd.OutOrStdout()).Subscribe(dispatcher)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		runs := repository.NewRunRepository(pg.PoolHandle())
		worker.StartHistoryWorker(service.NewHistoryService(*cfg, dispatcher, runs, logger))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	release, err := redis.AcquireBatchLock(ctx, cfg.Remote.ContestID, runID, cfg.Redis.LockTTL())
	if err != nil {
		return err
	}
	defer release(context.Background())

	metrics := observability.NewMetrics()
	client := domjudge.NewClient(domjudge.Options{
		BaseURL:  cfg.Remote.BaseURL,
		Username: cfg.Remote.AdminUser,
		Password: cfg.Remote.AdminPassword,
		Timeout:  cfg.Remote.RequestTimeout(),
		Metrics:  metrics,
		Logger:   logger,
	})

	orch := service.NewOrchestrator(*cfg, service.OrchestratorDependencies{
		Remote:     client,
		Dispatcher: dispatcher,
		Logger:     logger,
		RunID:      runID,
	})
	ledger, err := orch.Run(ctx, loaded.Requests)
	if err != nil {
		return err
	}

	if err := report.WriteFile(cfg.Batch.ResultPath, format, ledger); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), ledger.Summary(), cfg.Batch.ResultPath)

	logRemoteCalls(logger, metrics)
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func logRemoteCalls(logger *zap.Logger, metrics *observability.Metrics) {
	for _, c := range metrics.Requests() {
		logger.Debug("remote calls", zap.String("key", c.Key), zap.Int64("count", c.Count))
	}
	for _, c := range metrics.Errors() {
		logger.Warn("remote errors", zap.String("key", c.Key), zap.Int64("count", c.Count))
	}
	logger.Info("remote latency", zap.Duration("total", metrics.TotalLatency()))
}
