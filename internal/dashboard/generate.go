package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abdulachik/rednotebot/internal/account"
	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

var errMissingCredential = errors.New("API key not configured")

func (s *Server) generate(c *fiber.Ctx) error {
	var body GenerateBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fail(c, fiber.StatusBadRequest, err)
		}
	}
	body.normalize()

	if err := body.Validate(); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	result, err := s.app.Generate(c.UserContext(), body.Account, workflow.Mode(body.Mode))
	switch {
	case errors.Is(err, workflow.ErrMissingCredential):
		return fail(c, fiber.StatusServiceUnavailable, errMissingCredential)
	case errors.Is(err, account.ErrInvalidAccount):
		return fail(c, fiber.StatusBadRequest, err)
	case errors.Is(err, sink.ErrRenderFailure):
		payload := batchPayload(result)
		payload["success"] = false
		payload["error"] = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(payload)
	case err != nil:
		return err
	}

	return ok(c, batchPayload(result))
}

// batches returns the batches an in-memory deployment still holds.
func (s *Server) batches(c *fiber.Ctx) error {
	if s.app.Memory == nil {
		return fail(c, fiber.StatusNotFound, errors.New("batches are kept in memory mode only"))
	}
	id := c.Params("account")
	if !s.app.Accounts.Valid(id) {
		return fail(c, fiber.StatusBadRequest, account.ErrInvalidAccount)
	}
	return ok(c, fiber.Map{
		"account": id,
		"batches": s.app.Memory.Recent(id),
	})
}

func batchPayload(r *sink.Result) fiber.Map {
	if r == nil || r.Batch == nil {
		return fiber.Map{}
	}
	b := r.Batch
	artifacts := r.Artifacts
	if artifacts == nil {
		artifacts = []sink.Artifact{}
	}
	return fiber.Map{
		"batch":   b.ID,
		"account": b.AccountID,
		"persona": fiber.Map{
			"id":   b.Persona.ID,
			"name": b.Persona.Name,
		},
		"mode":      b.Mode,
		"posts":     b.Posts,
		"degraded":  b.Degraded(),
		"fallbacks": b.FallbackCount(),
		"artifacts": artifacts,
	}
}
