package dashboard

import "github.com/gofiber/fiber/v2"

func (s *Server) getHealth(c *fiber.Ctx) error {
	if err := s.app.Store.PingContext(c.UserContext()); err != nil {
		return fail(c, fiber.StatusServiceUnavailable, err)
	}

	status := "ok"
	components := map[string]any{}
	if s.health != nil {
		report := s.health.Report()
		if !report.Healthy {
			status = "degraded"
		}
		for name, st := range report.Components {
			components[name] = st
		}
	}

	return ok(c, fiber.Map{
		"status":     status,
		"components": components,
		"credential": s.app.Workflow.HasGenerator(),
	})
}
