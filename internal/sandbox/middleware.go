package sandbox

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"go.uber.org/zap"
)

// registerMiddlewares attaches error handling, request logging and basic auth.
func registerMiddlewares(app *fiber.App, logger *zap.Logger, cfg Config) {
	app.Use(errorHandlingMiddleware(logger))
	app.Use(requestLogger(logger))
	app.Use(basicauth.New(basicauth.Config{
		Users: map[string]string{cfg.Username: cfg.Password},
		Realm: "sandbox",
		Unauthorized: func(c *fiber.Ctx) error {
			return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
		},
	}))
}

// errorHandlingMiddleware renders errors the way the judge does: {"code":..,"message":..}.
func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = fiber.NewError(http.StatusInternalServerError, "internal server error")
			}
			if err != nil {
				status := http.StatusInternalServerError
				message := "internal server error"
				var fe *fiber.Error
				if errors.As(err, &fe) {
					status = fe.Code
					message = fe.Message
				} else {
					logger.Error("request failed", zap.Error(err))
				}
				c.Status(status)
				_ = c.JSON(fiber.Map{"code": status, "message": message})
				err = nil
			}
		}()
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		logger.Debug("sandbox request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()))
		return err
	}
}
