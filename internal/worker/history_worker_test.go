package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/config"
	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/events"
	"github.com/spec-kit/contest-provisioner/internal/service"
)

type countingRuns struct {
	created int
}

func (c *countingRuns) CreateRun(context.Context, *domain.Run) error {
	c.created++
	return nil
}

func (c *countingRuns) FinishRun(context.Context, *domain.Run) error {
	return nil
}

func (c *countingRuns) AppendOutcome(context.Context, *domain.RunOutcome) error {
	return nil
}

func (c *countingRuns) ListRuns(context.Context, string, int) ([]domain.Run, error) {
	return nil, nil
}

func (c *countingRuns) ListOutcomes(context.Context, string) ([]domain.RunOutcome, error) {
	return nil, nil
}

func TestStartHistoryWorkerSubscribes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	runs := &countingRuns{}
	StartHistoryWorker(service.NewHistoryService(config.Config{}, dispatcher, runs, zap.NewNop()))

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventBatchStarted,
		RunID:   "run-1",
		Payload: events.BatchStartedPayload{ContestID: "3", Total: 1},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if runs.created != 1 {
		t.Errorf("runs created = %d, want 1", runs.created)
	}

	StartHistoryWorker(nil)
}
