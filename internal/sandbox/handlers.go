package sandbox

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/domjudge"
)

// handlers implements the emulated admin API endpoints.
type handlers struct {
	contestID string
	store     *store
}

// Info handles GET /api/v4/info.
func (h *handlers) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"api_version": 4,
		"domjudge":    fiber.Map{"version": "sandbox"},
	})
}

// ListContestTeams handles GET /api/v4/contests/:cid/teams.
func (h *handlers) ListContestTeams(c *fiber.Ctx) error {
	if c.Params("cid") != h.contestID {
		return fiber.NewError(http.StatusNotFound, "Contest not found")
	}
	return c.JSON(h.store.listTeams())
}

// CreateTeam handles POST /api/v4/teams?cid=.
func (h *handlers) CreateTeam(c *fiber.Ctx) error {
	if c.Query("cid") != h.contestID {
		return fiber.NewError(http.StatusNotFound, "Contest not found")
	}
	var req domjudge.AddTeam
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(http.StatusBadRequest, "name is required")
	}

	team, err := h.store.addTeam(domain.Team{ID: req.ID, Name: req.Name, DisplayName: req.DisplayName})
	if err != nil {
		return storeError(err)
	}
	return c.Status(http.StatusCreated).JSON(team)
}

// CreateUser handles POST /api/v4/users.
func (h *handlers) CreateUser(c *fiber.Ctx) error {
	var req domjudge.AddUser
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Name == "" || len(req.Roles) == 0 {
		return fiber.NewError(http.StatusBadRequest, "username, name, roles required")
	}

	user, err := h.store.addUser(domain.User{
		Username: req.Username,
		Name:     req.Name,
		TeamID:   req.TeamID,
		Enabled:  req.Enabled,
		Roles:    req.Roles,
		IP:       req.IP,
	})
	if err != nil {
		return storeError(err)
	}
	return c.Status(http.StatusCreated).JSON(user)
}

func storeError(err error) error {
	var conflict *conflictError
	if errors.As(err, &conflict) {
		return fiber.NewError(conflict.status, conflict.message)
	}
	return err
}
