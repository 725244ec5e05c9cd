package sandbox

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/domain"
)

// Config sets the credentials and the single contest the sandbox accepts.
type Config struct {
	Username  string
	Password  string
	ContestID string
}

// Server is an in-memory stand-in for the judge's admin API, for rehearsals and tests.
type Server struct {
	app   *fiber.App
	store *store
}

// NewServer builds the sandbox app.
func NewServer(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	s := &Server{app: app, store: newStore()}

	registerMiddlewares(app, logger, cfg)
	registerRoutes(app, &handlers{contestID: cfg.ContestID, store: s.store})
	return s
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops a listening server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the app as a net/http handler, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Transport returns a RoundTripper that serves requests in-process.
func (s *Server) Transport() http.RoundTripper {
	return transport{app: s.app}
}

// Teams returns the stored teams in creation order.
func (s *Server) Teams() []domain.Team {
	return s.store.listTeams()
}

// Users returns the stored users in creation order.
func (s *Server) Users() []domain.User {
	return s.store.listUsers()
}

type transport struct {
	app *fiber.App
}

// RoundTrip implements http.RoundTripper.
func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}
