package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/observability"
	"github.com/spec-kit/contest-provisioner/internal/sandbox"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve an in-memory judge admin API for rehearsals",
	Long: `Start a throwaway server that answers the info, team and user endpoints the way a
DOMjudge server does, so a roster can be rehearsed end to end before the real
contest. State is lost when the process exits.`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

var (
	sandboxAddr     string
	sandboxUser     string
	sandboxPassword string
	sandboxContest  string
)

func init() {
	f := sandboxCmd.Flags()
	f.StringVar(&sandboxAddr, "addr", ":8089", "listen address")
	f.StringVar(&sandboxUser, "user", "admin", "accepted admin username")
	f.StringVar(&sandboxPassword, "password", "admin", "accepted admin password")
	f.StringVar(&sandboxContest, "contest", "1", "contest id served")
	rootCmd.AddCommand(sandboxCmd)
}

func runSandbox(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	srv := sandbox.NewServer(sandbox.Config{
		Username:  sandboxUser,
		Password:  sandboxPassword,
		ContestID: sandboxContest,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(sandboxAddr)
	}()
	logger.Info("sandbox listening", zap.String("addr", sandboxAddr), zap.String("cid", sandboxContest))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("sandbox listen: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down",
			zap.String("signal", sig.String()),
			zap.Int("teams", len(srv.Teams())),
			zap.Int("users", len(srv.Users())))
	}
	return srv.Shutdown()
}
