package domain

// Team is a participant team on the remote judge.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// TeamStatus is the result of reconciling one team.
type TeamStatus string

const (
	TeamStatusCreated   TeamStatus = "created"
	TeamStatusReused    TeamStatus = "reused"
	TeamStatusFailed    TeamStatus = "failed"
	TeamStatusException TeamStatus = "exception"
)

// Resolved reports whether the status carries a usable team id.
func (s TeamStatus) Resolved() bool {
	return s == TeamStatusCreated || s == TeamStatusReused
}
