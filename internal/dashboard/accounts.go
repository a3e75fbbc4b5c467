package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abdulachik/rednotebot/internal/account"
)

type accountView struct {
	ID          string `json:"id"`
	Persona     string `json:"persona"`
	PersonaName string `json:"persona_name"`
}

type personaView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) getAccounts(c *fiber.Ctx) error {
	assigned, err := s.app.Accounts.Load(c.UserContext())
	if err != nil {
		return err
	}

	personas := s.app.Accounts.Personas()
	accounts := make([]accountView, 0, len(assigned))
	for _, id := range s.app.AccountIDs() {
		accounts = append(accounts, accountView{
			ID:          id,
			Persona:     assigned[id],
			PersonaName: personas.Get(assigned[id]).Name,
		})
	}

	list := personas.List()
	views := make([]personaView, 0, len(list))
	for _, p := range list {
		views = append(views, personaView{ID: p.ID, Name: p.Name, Description: p.Description})
	}

	return ok(c, fiber.Map{
		"accounts":        accounts,
		"personas":        views,
		"default_persona": personas.Default().ID,
	})
}

func (s *Server) updateAccount(c *fiber.Ctx) error {
	var body UpdateAccountBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	body.normalize()

	if err := body.Validate(); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	err := s.app.Accounts.Update(c.UserContext(), body.Account, body.Persona)
	switch {
	case errors.Is(err, account.ErrInvalidAccount), errors.Is(err, account.ErrInvalidPersona):
		return fail(c, fiber.StatusBadRequest, err)
	case err != nil:
		return err
	}

	return ok(c, fiber.Map{
		"account": body.Account,
		"persona": body.Persona,
	})
}
