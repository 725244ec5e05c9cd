package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contest-provisioner/internal/domain"
)

// RunRepository persists batch runs and their ledgers.
type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	FinishRun(ctx context.Context, run *domain.Run) error
	AppendOutcome(ctx context.Context, outcome *domain.RunOutcome) error
	ListRuns(ctx context.Context, contestID string, limit int) ([]domain.Run, error)
	ListOutcomes(ctx context.Context, runID string) ([]domain.RunOutcome, error)
}

type runRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository constructs repository.
func NewRunRepository(pool *pgxpool.Pool) RunRepository {
	return &runRepository{pool: pool}
}

func (r *runRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	const query = `
        INSERT INTO provision_runs (id, contest_id, total, started_at)
        VALUES ($1,$2,$3,$4)`
	_, err := r.pool.Exec(ctx, query, run.ID, run.ContestID, run.Total, run.StartedAt)
	return err
}

func (r *runRepository) FinishRun(ctx context.Context, run *domain.Run) error {
	const query = `
        UPDATE provision_runs SET created=$1, duplicates=$2, failures=$3, cancelled=$4, finished_at=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		run.Summary.Created,
		run.Summary.Duplicates,
		run.Summary.Failures,
		run.Cancelled,
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *runRepository) AppendOutcome(ctx context.Context, o *domain.RunOutcome) error {
	const query = `
        INSERT INTO provision_outcomes (run_id, position, username, name, team_id, team_status, team_message,
            user_id, user_status, user_message, password_hash, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.pool.Exec(ctx, query,
		o.RunID,
		o.Position,
		o.Username,
		o.Name,
		o.TeamID,
		string(o.TeamStatus),
		o.TeamDiagnostic,
		o.UserID,
		string(o.UserStatus),
		o.UserDiagnostic,
		o.PasswordHash,
		o.RecordedAt,
	)
	return err
}

func (r *runRepository) ListRuns(ctx context.Context, contestID string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, contest_id, total, created, duplicates, failures, cancelled, started_at, finished_at
        FROM provision_runs
        WHERE ($1 = '' OR contest_id = $1)
        ORDER BY started_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, contestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Run
	for rows.Next() {
		var run domain.Run
		if err := rows.Scan(
			&run.ID,
			&run.ContestID,
			&run.Total,
			&run.Summary.Created,
			&run.Summary.Duplicates,
			&run.Summary.Failures,
			&run.Cancelled,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, err
		}
		run.Summary.Total = run.Summary.Created + run.Summary.Duplicates + run.Summary.Failures
		result = append(result, run)
	}
	return result, rows.Err()
}

func (r *runRepository) ListOutcomes(ctx context.Context, runID string) ([]domain.RunOutcome, error) {
	const query = `
        SELECT run_id, position, username, name, team_id, team_status, team_message,
            user_id, user_status, user_message, password_hash, recorded_at
        FROM provision_outcomes WHERE run_id=$1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RunOutcome
	for rows.Next() {
		var o domain.RunOutcome
		var teamStatus, userStatus string
		if err := rows.Scan(
			&o.RunID,
			&o.Position,
			&o.Username,
			&o.Name,
			&o.TeamID,
			&teamStatus,
			&o.TeamDiagnostic,
			&o.UserID,
			&userStatus,
			&o.UserDiagnostic,
			&o.PasswordHash,
			&o.RecordedAt,
		); err != nil {
			return nil, err
		}
		o.TeamStatus = domain.TeamStatus(teamStatus)
		o.UserStatus = domain.UserStatus(userStatus)
		result = append(result, o)
	}
	return result, rows.Err()
}
