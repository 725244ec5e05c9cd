package domain

// ProvisionRequest is one row of intent read from the roster.
type ProvisionRequest struct {
	Username       string
	DisplayName    string
	Password       string
	ExternalTeamID string
	// IP is set only when the batch runs with per-user IP restriction.
	IP *string
}

// Name returns the display name, falling back to the username.
func (r ProvisionRequest) Name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Username
}

// ProvisionOutcome records what happened to one request.
type ProvisionOutcome struct {
	Request        *ProvisionRequest
	TeamID         string
	TeamStatus     TeamStatus
	TeamDiagnostic string
	UserID         *string
	UserStatus     UserStatus
	UserDiagnostic string
}

// Consistent reports whether the team id and team status agree.
func (o ProvisionOutcome) Consistent() bool {
	return o.TeamStatus.Resolved() == (o.TeamID != "")
}
