package domain

import "time"

// Run is the stored header of one batch invocation.
type Run struct {
	ID         string
	ContestID  string
	Total      int
	Summary    Summary
	Cancelled  bool
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunOutcome is a stored ledger entry. The password is kept only as a hash.
type RunOutcome struct {
	RunID          string
	Position       int
	Username       string
	Name           string
	TeamID         string
	TeamStatus     TeamStatus
	TeamDiagnostic string
	UserID         *string
	UserStatus     UserStatus
	UserDiagnostic string
	PasswordHash   string
	RecordedAt     time.Time
}
