package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/domjudge"
)

// TeamResult is the outcome of reconciling one team.
type TeamResult struct {
	ID         string
	Status     domain.TeamStatus
	Diagnostic string
}

// TeamReconciler creates a contest team or finds the one a previous run left behind.
type TeamReconciler struct {
	remote    RemoteClient
	contestID string
	logger    *zap.Logger
}

// NewTeamReconciler constructs the reconciler for a single contest.
func NewTeamReconciler(remote RemoteClient, contestID string, logger *zap.Logger) *TeamReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamReconciler{remote: remote, contestID: contestID, logger: logger}
}

// EnsureTeam creates the team with the requested id, or reuses an existing team whose
// name matches displayName exactly when the judge reports a conflict.
// It never returns an error: every failure is reported through the result status.
func (r *TeamReconciler) EnsureTeam(ctx context.Context, displayName, externalID string) TeamResult {
	payload := domjudge.AddTeam{
		ID:          externalID,
		Name:        displayName,
		DisplayName: displayName,
	}
	resp, err := r.remote.PostJSON(ctx, domjudge.CreateTeamPath(r.contestID), payload)
	if err != nil {
		return TeamResult{Status: domain.TeamStatusException, Diagnostic: errorDiagnostic(err)}
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var created domjudge.Entity
		if err := resp.DecodeJSON(&created); err != nil {
			return TeamResult{
				Status:     domain.TeamStatusException,
				Diagnostic: errorDiagnostic(fmt.Errorf("team created but response unreadable: %w", err)),
			}
		}
		if created.ID == "" {
			return TeamResult{Status: domain.TeamStatusException, Diagnostic: "team created but response has no id"}
		}
		return TeamResult{ID: created.ID.String(), Status: domain.TeamStatusCreated}

	case http.StatusBadRequest, http.StatusConflict:
		existingID, err := r.findByName(ctx, displayName)
		if err != nil {
			return TeamResult{Status: domain.TeamStatusException, Diagnostic: errorDiagnostic(err)}
		}
		if existingID == "" {
			return TeamResult{Status: domain.TeamStatusFailed, Diagnostic: responseDiagnostic(resp)}
		}
		r.logger.Warn("team already exists, reusing",
			zap.String("name", displayName),
			zap.String("requested_id", externalID),
			zap.String("team_id", existingID))
		return TeamResult{ID: existingID, Status: domain.TeamStatusReused}

	default:
		return TeamResult{Status: domain.TeamStatusFailed, Diagnostic: responseDiagnostic(resp)}
	}
}

// findByName returns the id of the contest team whose name equals name exactly,
// or an empty string when there is none.
func (r *TeamReconciler) findByName(ctx context.Context, name string) (string, error) {
	path := domjudge.ContestTeamsPath(r.contestID)
	resp, err := r.remote.Get(ctx, path)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list teams: %s", responseDiagnostic(resp))
	}

	var teams []domjudge.Entity
	if err := resp.DecodeJSON(&teams); err != nil {
		return "", fmt.Errorf("parse team list: %w", err)
	}
	for _, t := range teams {
		if t.ID != "" && strings.TrimSpace(t.Name) == name {
			return t.ID.String(), nil
		}
	}
	return "", nil
}
