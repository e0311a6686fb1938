// Package api serves the rover's HTTP status API and websocket endpoints.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/rover/domain/diagnostic"
	"github.com/open-teleop/rover/domain/telemetry"
	"github.com/open-teleop/rover/pkg/config"
	customlog "github.com/open-teleop/rover/pkg/log"
)

// Options wires the server to the running loops. Hub and Control are optional.
type Options struct {
	Config     *config.Config
	Status     *diagnostic.StatusService
	Hub        *telemetry.Hub
	Control    PacketSender
	AccessLogs bool
}

// Server wraps the fiber app.
type Server struct {
	app    *fiber.App
	logger customlog.Logger
}

// NewServer builds the fiber app and registers every route.
func NewServer(opts Options, logger customlog.Logger) *Server {
	logger = logger.WithField("component", "api")

	app := fiber.New(fiber.Config{
		AppName:               "Rover",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	if opts.AccessLogs {
		app.Use(fiberlogger.New())
	}
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "rover",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1 := app.Group("/api/v1")
	if opts.Status != nil {
		v1.Get("/status", opts.Status.GetStatusHandler)
		v1.Get("/telemetry", opts.Status.GetTelemetryHandler)
	}
	if opts.Config != nil {
		RegisterConfigRoutes(v1, opts.Config, logger)
	}
	if opts.Control != nil {
		RegisterCommandRoutes(v1, opts.Control, logger)
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	if opts.Hub != nil {
		app.Get("/ws/telemetry", websocket.New(opts.Hub.Handler))
	}
	if opts.Control != nil {
		control := opts.Control
		app.Get("/ws/control", websocket.New(func(c *websocket.Conn) {
			ControlWebSocketHandler(c, logger, control)
		}))
	}

	return &Server{app: app, logger: logger}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr in a goroutine. Listen errors are sent on the
// returned channel.
func (s *Server) Start(addr string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP server starting on %s", addr)
		if err := s.app.Listen(addr); err != nil {
			errCh <- fmt.Errorf("http server on %s: %w", addr, err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Infof("HTTP server exited properly")
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
