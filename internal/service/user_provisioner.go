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

// duplicateMarker is matched case-insensitively against 400 bodies.
const duplicateMarker = "already"

// UserSpec describes the account to create.
type UserSpec struct {
	Username    string
	DisplayName string
	Password    string
	TeamID      string
	IP          *string
}

// UserResult is the outcome of provisioning one user.
type UserResult struct {
	ID         *string
	Status     domain.UserStatus
	Diagnostic string
}

// UserProvisioner creates team-bound participant accounts.
type UserProvisioner struct {
	remote RemoteClient
	logger *zap.Logger
}

// NewUserProvisioner constructs the provisioner.
func NewUserProvisioner(remote RemoteClient, logger *zap.Logger) *UserProvisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserProvisioner{remote: remote, logger: logger}
}

// CreateUser creates the account and classifies the reply.
// It never returns an error: every failure is reported through the result status.
func (p *UserProvisioner) CreateUser(ctx context.Context, spec UserSpec) UserResult {
	payload := domjudge.AddUser{
		Username: spec.Username,
		Name:     spec.DisplayName,
		Password: spec.Password,
		TeamID:   spec.TeamID,
		Enabled:  true,
		Roles:    []string{domain.RoleTeam},
		IP:       spec.IP,
	}
	resp, err := p.remote.PostJSON(ctx, domjudge.UsersPath, payload)
	if err != nil {
		return UserResult{Status: domain.UserStatusException, Diagnostic: errorDiagnostic(err)}
	}

	switch {
	case resp.StatusCode == http.StatusCreated:
		var created domjudge.Entity
		if err := resp.DecodeJSON(&created); err != nil || created.ID == "" {
			// The account exists remotely; only its id is unknown.
			p.logger.Warn("user created but id unreadable", zap.String("username", spec.Username))
			return UserResult{Status: domain.UserStatusCreated, Diagnostic: "created, id unknown: response body unreadable"}
		}
		id := created.ID.String()
		return UserResult{ID: &id, Status: domain.UserStatusCreated}

	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(resp.Text()), duplicateMarker):
		return UserResult{Status: domain.UserStatusDuplicateSkipped, Diagnostic: fmt.Sprintf("status %d", resp.StatusCode)}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		p.logger.Warn("user creation rejected by permissions",
			zap.String("username", spec.Username),
			zap.Int("status", resp.StatusCode))
		return UserResult{Status: domain.UserStatusAuthFailed, Diagnostic: fmt.Sprintf("status %d", resp.StatusCode)}

	default:
		return UserResult{Status: domain.UserStatusCreateFailed, Diagnostic: responseDiagnostic(resp)}
	}
}
