package domain

// RoleTeam is the only role assigned to provisioned participants.
const RoleTeam = "team"

// User is a participant account bound to exactly one team.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	TeamID   string   `json:"team_id"`
	Enabled  bool     `json:"enabled"`
	Roles    []string `json:"roles"`
	IP       *string  `json:"ip,omitempty"`
}

// UserStatus is the result of provisioning one user.
type UserStatus string

const (
	UserStatusCreated          UserStatus = "created"
	UserStatusDuplicateSkipped UserStatus = "duplicate_skipped"
	UserStatusAuthFailed       UserStatus = "auth_failed"
	UserStatusCreateFailed     UserStatus = "create_failed"
	UserStatusException        UserStatus = "exception"
	UserStatusSkippedNoTeam    UserStatus = "skipped_no_team"
)
