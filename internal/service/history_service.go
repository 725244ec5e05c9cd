package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/auth"
	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/events"
	"github.com/spec-kit/contest-provisioner/internal/repository"
)

// HistoryService records batch progress into the run history store.
type HistoryService struct {
	dispatcher events.Dispatcher
	runs       repository.RunRepository
	logger     *zap.Logger
	bcryptCost int
	contestID  string
	now        func() time.Time
}

// NewHistoryService creates the service.
func NewHistoryService(cfg config.Config, dispatcher events.Dispatcher, runs repository.RunRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		dispatcher: dispatcher,
		runs:       runs,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		contestID:  cfg.Remote.ContestID,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to batch events.
func (h *HistoryService) RegisterHandlers() {
	if h.dispatcher == nil || h.runs == nil {
		return
	}
	h.dispatcher.Subscribe(events.EventBatchStarted, h.handleBatchStarted)
	h.dispatcher.Subscribe(events.EventRecordProcessed, h.handleRecordProcessed)
	h.dispatcher.Subscribe(events.EventBatchFinished, h.handleBatchFinished)
}

func (h *HistoryService) handleBatchStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchStartedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	run := &domain.Run{
		ID:        event.RunID,
		ContestID: payload.ContestID,
		Total:     payload.Total,
		StartedAt: event.Timestamp,
	}
	if err := h.runs.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	h.logger.Debug("run recorded", zap.String("run_id", run.ID))
	return nil
}

func (h *HistoryService) handleRecordProcessed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RecordProcessedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	outcome := payload.Outcome
	record := &domain.RunOutcome{
		RunID:          event.RunID,
		Position:       payload.Index,
		TeamID:         outcome.TeamID,
		TeamStatus:     outcome.TeamStatus,
		TeamDiagnostic: outcome.TeamDiagnostic,
		UserID:         outcome.UserID,
		UserStatus:     outcome.UserStatus,
		UserDiagnostic: outcome.UserDiagnostic,
		RecordedAt:     event.Timestamp,
	}
	if req := outcome.Request; req != nil {
		record.Username = req.Username
		record.Name = req.Name()
		// Only passwords that now exist remotely are worth an audit hash.
		if outcome.UserStatus == domain.UserStatusCreated {
			hash, err := auth.HashPassword(req.Password, h.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", req.Username, err)
			}
			record.PasswordHash = hash
		}
	}
	if err := h.runs.AppendOutcome(ctx, record); err != nil {
		return fmt.Errorf("record outcome %d: %w", payload.Index, err)
	}
	return nil
}

func (h *HistoryService) handleBatchFinished(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchFinishedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	finished := h.now().UTC()
	run := &domain.Run{
		ID:         event.RunID,
		ContestID:  h.contestID,
		Summary:    payload.Summary,
		Cancelled:  payload.Cancelled,
		FinishedAt: &finished,
	}
	if err := h.runs.FinishRun(ctx, run); err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}
