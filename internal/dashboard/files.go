package dashboard

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/abdulachik/rednotebot/internal/account"
	"github.com/abdulachik/rednotebot/internal/sink"
)

func (s *Server) listFiles(c *fiber.Ctx) error {
	if s.app.Files == nil {
		return fail(c, fiber.StatusNotFound, errFileStorageDisabled)
	}

	accountID := c.Query("account")
	if accountID != "" && !s.app.Accounts.Valid(accountID) {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("%w: %q", account.ErrInvalidAccount, accountID))
	}

	files, err := s.app.Files.List(accountID)
	if err != nil {
		return err
	}
	if files == nil {
		files = []sink.Artifact{}
	}
	return ok(c, fiber.Map{"files": files})
}

func (s *Server) viewFile(c *fiber.Ctx) error {
	if s.app.Files == nil {
		return fail(c, fiber.StatusNotFound, errFileStorageDisabled)
	}

	name := c.Params("filename")
	doc, err := s.app.Files.ReadText(name)
	if err != nil {
		return artifactError(c, err)
	}
	return ok(c, fiber.Map{
		"filename": name,
		"header":   doc.Header,
		"posts":    doc.Posts,
	})
}

func (s *Server) downloadFile(c *fiber.Ctx) error {
	if s.app.Files == nil {
		return fail(c, fiber.StatusNotFound, errFileStorageDisabled)
	}

	a, err := s.app.Files.Resolve(c.Params("filename"))
	if err != nil {
		return artifactError(c, err)
	}
	return c.Download(a.Path, a.Name)
}

func artifactError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, sink.ErrInvalidName):
		return fail(c, fiber.StatusBadRequest, err)
	case errors.Is(err, sink.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err)
	default:
		return err
	}
}
