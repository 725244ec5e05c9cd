package sandbox

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/spec-kit/contest-provisioner/internal/domain"
)

// store is the in-memory state of the emulated judge.
type store struct {
	mu         sync.Mutex
	teams      []domain.Team
	users      []domain.User
	nextTeamID int
	nextUserID int
}

func newStore() *store {
	return &store{nextTeamID: 1, nextUserID: 1}
}

type conflictError struct {
	status  int
	message string
}

func (e *conflictError) Error() string {
	return e.message
}

func (s *store) addTeam(team domain.Team) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if team.ID == "" {
		team.ID = strconv.Itoa(s.nextTeamID)
		s.nextTeamID++
	}
	for _, t := range s.teams {
		if t.ID == team.ID {
			return domain.Team{}, &conflictError{status: 400, message: fmt.Sprintf("Team with ID '%s' already exists", team.ID)}
		}
		if t.Name == team.Name {
			return domain.Team{}, &conflictError{status: 409, message: fmt.Sprintf("Team with name '%s' already exists", team.Name)}
		}
	}
	if team.DisplayName == "" {
		team.DisplayName = team.Name
	}
	s.teams = append(s.teams, team)
	return team, nil
}

func (s *store) addUser(user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.User{}, &conflictError{status: 400, message: fmt.Sprintf("User with username '%s' already exists", user.Username)}
		}
	}
	found := false
	for _, t := range s.teams {
		if t.ID == user.TeamID {
			found = true
			break
		}
	}
	if !found {
		return domain.User{}, &conflictError{status: 400, message: fmt.Sprintf("Team with ID '%s' not found", user.TeamID)}
	}

	user.ID = strconv.Itoa(s.nextUserID)
	s.nextUserID++
	s.users = append(s.users, user)
	return user, nil
}

func (s *store) listTeams() []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

func (s *store) listUsers() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}
