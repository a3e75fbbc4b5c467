package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const defaultSearchK = 5

func (s *Server) searchLibrary(c *fiber.Ctx) error {
	if s.app.Library == nil {
		return fail(c, fiber.StatusNotFound, errors.New("post library not enabled"))
	}

	var q SearchQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if err := q.Validate(); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if q.K == 0 {
		q.K = defaultSearchK
	}

	matches, err := s.app.Library.Search(c.UserContext(), q.Q, q.K)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"query":   q.Q,
		"matches": matches,
	})
}
