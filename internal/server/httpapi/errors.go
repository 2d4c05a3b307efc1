package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	msgUnauthorized = "Unauthorized"
	msgNotFound     = "Not found"
	msgBadRequest   = "Invalid request body"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: msgUnauthorized})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgBadRequest})
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired)
}

// fail writes the response for a failed operation. The body never carries
// the underlying error; store failures are logged instead.
func (s *Server) fail(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgNotFound})
	case isAuthError(err):
		return unauthorized(c)
	case errors.Is(err, common.ErrorValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: op + " failed"})
	case errors.Is(err, common.ErrorAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: op + " failed"})
	}

	s.logger.Error(c.UserContext(), op+" failed", "error", err, "request_id", c.Locals("requestid"))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: op + " failed"})
}

// errorHandler catches errors returned by handlers and middleware that did
// not write a response themselves, such as unknown routes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
	}
	s.logger.Error(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
}
