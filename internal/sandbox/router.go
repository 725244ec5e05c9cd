package sandbox

import "github.com/gofiber/fiber/v2"

// registerRoutes wires the emulated admin API.
func registerRoutes(app *fiber.App, h *handlers) {
	api := app.Group("/api/v4")
	api.Get("/info", h.Info)
	api.Get("/contests/:cid/teams", h.ListContestTeams)
	api.Post("/teams", h.CreateTeam)
	api.Post("/users", h.CreateUser)
}
