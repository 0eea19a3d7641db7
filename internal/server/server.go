// Package server exposes the curation pipeline over HTTP: run control,
// status polling, metrics, and a websocket status push.
package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mindtube/curator/internal/curation"
	"github.com/mindtube/curator/internal/metrics"
)

// Controller is the run-control surface the handlers need.
// *curation.Manager satisfies it.
type Controller interface {
	Start() (string, error)
	Status() *curation.RunStatus
	RequestStop() bool
}

var _ Controller = (*curation.Manager)(nil)

// Server is the HTTP boundary around the curation manager.
type Server struct {
	app        *fiber.App
	controller Controller
	collector  *metrics.Collector
	hub        *Hub
	logger     *slog.Logger
}

// New wires the fiber app and its routes. collector and hub may be nil;
// the corresponding endpoints then serve empty data or 404.
func New(controller Controller, collector *metrics.Collector, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "curator",
			DisableStartupMessage: true,
		}),
		controller: controller,
		collector:  collector,
		hub:        hub,
		logger:     logger,
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New())

	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api/curation")
	api.Post("/start", s.handleStart)
	api.Get("/status", s.handleStatus)
	api.Post("/stop", s.handleStop)
	api.Get("/metrics", s.handleMetrics)

	if hub != nil {
		api.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		api.Get("/ws", websocket.New(func(c *websocket.Conn) {
			hub.HandleConnection(c)
		}))
	}

	return s
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleStart launches a curation run. Returns 409 while one is active.
func (s *Server) handleStart(c *fiber.Ctx) error {
	jobID, err := s.controller.Start()
	if err != nil {
		if errors.Is(err, curation.ErrRunActive) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		s.logger.Error("start run failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to start curation run",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"jobId": jobID,
	})
}

// handleStatus returns the current (or most recent) run snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	status := s.controller.Status()
	if status == nil {
		return c.JSON(fiber.Map{"status": curation.StatusIdle})
	}
	return c.JSON(status)
}

// handleStop requests a cooperative stop. Returns 409 when no run is
// active.
func (s *Server) handleStop(c *fiber.Ctx) error {
	if !s.controller.RequestStop() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no active curation run",
		})
	}
	return c.JSON(fiber.Map{"stopping": true})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.collector.Snapshot())
}
