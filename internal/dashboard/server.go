// Package dashboard serves the operator HTTP API over fiber.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/abdulachik/rednotebot/internal/app"
	"github.com/abdulachik/rednotebot/internal/scheduler"
)

// errFileStorageDisabled is returned by file endpoints in memory mode.
var errFileStorageDisabled = errors.New("file storage disabled in memory mode")

// Server is the dashboard HTTP server.
type Server struct {
	app    *app.App
	health *scheduler.Health
	fiber  *fiber.App
}

// New builds the dashboard. health may be nil when no scheduler runs.
func New(a *app.App, health *scheduler.Health) *Server {
	s := &Server{
		app:    a,
		health: health,
		fiber: fiber.New(fiber.Config{
			AppName:               "rednotebot",
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
	}

	s.fiber.Use(recover.New())
	s.fiber.Use(requestLogger)

	s.fiber.Get("/health", s.getHealth)
	s.MountController(s.fiber.Group("/api"))

	return s
}

// MountController registers the API routes on router.
func (s *Server) MountController(router fiber.Router) {
	router.Get("/accounts", s.getAccounts)
	router.Post("/accounts/update", s.updateAccount)
	router.Post("/generate", s.generate)
	router.Get("/batches/:account", s.batches)
	router.Get("/recent-posts", s.recentPosts)
	router.Get("/stats/summary", s.statsSummary)
	router.Get("/analytics", s.analytics)
	router.Get("/files", s.listFiles)
	router.Get("/view/:filename", s.viewFile)
	router.Get("/download/:filename", s.downloadFile)
	router.Get("/export/:format", s.export)
	router.Get("/library/search", s.searchLibrary)
}

// Fiber exposes the underlying fiber app, mainly for tests.
func (s *Server) Fiber() *fiber.App {
	return s.fiber
}

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	slog.Info("dashboard listening", "addr", addr)
	return s.fiber.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.fiber.ShutdownWithContext(ctx)
}

// errorHandler turns any returned error or recovered panic into the
// standard failure envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return fail(c, code, err)
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	slog.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func ok(c *fiber.Ctx, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return c.Status(fiber.StatusOK).JSON(payload)
}
