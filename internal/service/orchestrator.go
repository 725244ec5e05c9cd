package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/domjudge"
	"github.com/spec-kit/contest-provisioner/internal/events"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

// OrchestratorDependencies bundles collaborators for a batch run.
type OrchestratorDependencies struct {
	Remote     RemoteClient
	Pacing     PacingPolicy
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// RunID identifies the batch in logs, events and history. Generated when empty.
	RunID string
}

// Orchestrator drives one provisioning batch: probe, then team and user per record, in order.
type Orchestrator struct {
	remote     RemoteClient
	teams      *TeamReconciler
	users      *UserProvisioner
	pacing     PacingPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	contestID  string
	runID      string
}

// NewOrchestrator constructs the orchestrator for the contest named in cfg.
func NewOrchestrator(cfg config.Config, deps OrchestratorDependencies) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pacing := deps.Pacing
	if pacing == nil {
		pacing = FixedPacing{Delay: cfg.Batch.Pacing()}
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With(zap.String("run_id", runID), zap.String("cid", cfg.Remote.ContestID))

	return &Orchestrator{
		remote:     deps.Remote,
		teams:      NewTeamReconciler(deps.Remote, cfg.Remote.ContestID, logger),
		users:      NewUserProvisioner(deps.Remote, logger),
		pacing:     pacing,
		dispatcher: dispatcher,
		logger:     logger,
		contestID:  cfg.Remote.ContestID,
		runID:      runID,
	}
}

// RunID returns the batch identifier.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Probe checks that the judge is reachable and accepts the admin credentials.
func (o *Orchestrator) Probe(ctx context.Context) error {
	resp, err := o.remote.Get(ctx, domjudge.InfoPath)
	if err != nil {
		return apperrors.NewAuthProbeFailure(0, "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewAuthProbeFailure(resp.StatusCode, resp.Text(), nil)
	}
	return nil
}

// Run provisions every request in order and returns the ledger.
// The only error is a failed probe, in which case no record is touched.
// Cancelling ctx stops the batch between records; the partial ledger is returned.
func (o *Orchestrator) Run(ctx context.Context, requests []domain.ProvisionRequest) (*domain.Ledger, error) {
	ledger := domain.NewLedger(len(requests))

	if err := o.Probe(ctx); err != nil {
		o.logger.Error("remote probe failed, aborting batch", zap.Error(err))
		return ledger, err
	}

	total := len(requests)
	o.publish(ctx, events.EventBatchStarted, events.BatchStartedPayload{ContestID: o.contestID, Total: total})
	o.logger.Info("batch started", zap.Int("records", total))

	cancelled := false
	for i := range requests {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		req := &requests[i]
		outcome := o.processRecord(ctx, req)
		ledger.Append(outcome)

		o.logger.Debug("record processed",
			zap.Int("index", i+1),
			zap.String("username", req.Username),
			zap.String("team_id", outcome.TeamID),
			zap.String("team_status", string(outcome.TeamStatus)),
			zap.String("user_status", string(outcome.UserStatus)))
		o.publish(ctx, events.EventRecordProcessed, events.RecordProcessedPayload{Index: i + 1, Total: total, Outcome: outcome})

		_ = o.pacing.Pause(ctx)
	}

	summary := ledger.Summary()
	if cancelled {
		o.logger.Warn("batch cancelled", zap.Int("processed", ledger.Len()), zap.Int("records", total))
	}
	o.logger.Info("batch finished",
		zap.Int("created", summary.Created),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failures", summary.Failures))
	o.publish(context.WithoutCancel(ctx), events.EventBatchFinished, events.BatchFinishedPayload{Summary: summary, Cancelled: cancelled})

	return ledger, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, req *domain.ProvisionRequest) domain.ProvisionOutcome {
	outcome := domain.ProvisionOutcome{Request: req}

	team := o.ensureTeam(ctx, req)
	outcome.TeamStatus = team.Status
	outcome.TeamDiagnostic = team.Diagnostic
	if !team.Status.Resolved() || team.ID == "" {
		if team.Status.Resolved() {
			outcome.TeamStatus = domain.TeamStatusException
			outcome.TeamDiagnostic = "team resolved without an id"
		}
		outcome.UserStatus = domain.UserStatusSkippedNoTeam
		return outcome
	}
	outcome.TeamID = team.ID

	user := o.createUser(ctx, req, team.ID)
	outcome.UserID = user.ID
	outcome.UserStatus = user.Status
	outcome.UserDiagnostic = user.Diagnostic
	return outcome
}

func (o *Orchestrator) ensureTeam(ctx context.Context, req *domain.ProvisionRequest) (result TeamResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during team reconciliation", zap.String("username", req.Username), zap.Any("panic", r))
			result = TeamResult{Status: domain.TeamStatusException, Diagnostic: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return o.teams.EnsureTeam(ctx, req.Name(), req.ExternalTeamID)
}

func (o *Orchestrator) createUser(ctx context.Context, req *domain.ProvisionRequest, teamID string) (result UserResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during user creation", zap.String("username", req.Username), zap.Any("panic", r))
			result = UserResult{Status: domain.UserStatusException, Diagnostic: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return o.users.CreateUser(ctx, UserSpec{
		Username:    req.Username,
		DisplayName: req.Name(),
		Password:    req.Password,
		TeamID:      teamID,
		IP:          req.IP,
	})
}

func (o *Orchestrator) publish(ctx context.Context, eventType events.EventType, payload any) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     o.runID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := o.dispatcher.Publish(ctx, event); err != nil {
		o.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
