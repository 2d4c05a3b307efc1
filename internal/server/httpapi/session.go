package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/identity"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

const sessionKey = "session"

// Session is the authenticated caller of a request.
type Session struct {
	Identity identity.Identity
	User     *models.User
}

// SessionFrom returns the session stored by authenticate or the gateway.
func SessionFrom(c *fiber.Ctx) (*Session, bool) {
	s, ok := c.Locals(sessionKey).(*Session)
	return s, ok && s != nil
}

// bearerToken takes the access token from the Authorization header, falling
// back to the access token cookie.
func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(common.AuthorizationHeaderName); h != "" {
		if !strings.HasPrefix(h, common.BearerPrefix) {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
	}
	return c.Cookies(common.AccessTokenCookieName)
}

// resolve verifies the caller's token and links it to an application user.
func (s *Server) resolve(c *fiber.Ctx) (*Session, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	id, err := s.deps.Identity.Verify(c.UserContext(), token)
	if err != nil {
		return nil, err
	}

	user, _, err := s.deps.Users.Sync(c.UserContext(), services.SyncInput{
		Email:          id.Email,
		ExternalAuthID: id.ExternalID,
		FirstName:      id.FirstName,
		LastName:       id.LastName,
	})
	if err != nil {
		return nil, err
	}

	return &Session{Identity: id, User: user}, nil
}

// authenticate guards the task API: a request without a verifiable token is
// answered with 401 before any handler runs.
func (s *Server) authenticate(c *fiber.Ctx) error {
	sess, err := s.resolve(c)
	if err != nil {
		if isAuthError(err) {
			return unauthorized(c)
		}
		return s.fail(c, "sync-user", err)
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}
