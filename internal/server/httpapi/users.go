package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

type syncUserRequest struct {
	Email          string `json:"email"`
	ExternalAuthID string `json:"externalAuthId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// syncUser links an external identity to an application user, answering 201
// when the user was created by this call and 200 when it already existed.
func (s *Server) syncUser(c *fiber.Ctx) error {
	var req syncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, created, err := s.deps.Users.Sync(c.UserContext(), services.SyncInput{
		Email:          req.Email,
		ExternalAuthID: req.ExternalAuthID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
	})
	if err != nil {
		return s.fail(c, "sync-user", err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(user)
}
