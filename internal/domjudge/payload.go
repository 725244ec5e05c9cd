package domjudge

// AddTeam is the team creation body.
type AddTeam struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// AddUser is the user creation body. IP is omitted unless the batch restricts logins by address.
type AddUser struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	TeamID   string   `json:"team_id"`
	Enabled  bool     `json:"enabled"`
	Roles    []string `json:"roles"`
	IP       *string  `json:"ip,omitempty"`
}

// Entity is the subset of a created or listed object the provisioner reads.
// The judge may encode ids as strings or numbers.
type Entity struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}
