package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c)
	}

	cred, err := s.deps.Accounts.Signup(c.UserContext(), in)
	if err != nil {
		return s.fail(c, "signup", err)
	}

	return c.Status(fiber.StatusCreated).JSON(accountResponse{
		ID:        cred.ID,
		Email:     cred.Email,
		FirstName: cred.FirstName,
		LastName:  cred.LastName,
		CreatedAt: cred.CreatedAt,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	pair, err := s.deps.Accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.fail(c, "login", err)
	}

	setAccessCookie(c, pair)
	return c.JSON(pair)
}

func (s *Server) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c)
	}

	pair, err := s.deps.Accounts.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return s.fail(c, "refresh", err)
	}

	setAccessCookie(c, pair)
	return c.JSON(pair)
}

func (s *Server) logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := s.deps.Accounts.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return s.fail(c, "logout", err)
	}

	clearAccessCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func setAccessCookie(c *fiber.Ctx, pair *models.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.ExpiresIn),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearAccessCookie(c *fiber.Ctx) {
	c.ClearCookie(common.AccessTokenCookieName)
}
