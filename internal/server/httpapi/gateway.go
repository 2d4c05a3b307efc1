package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// bypassPrefixes are served by their own handlers and never redirected.
	bypassPrefixes = []string{"/api", "/auth", "/health"}
	// publicPaths and publicPrefixes are reachable without a session.
	publicPaths    = []string{"/login", "/signup"}
	publicPrefixes = []string{"/admin", "/payload"}
)

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// gateway decides, per page request, between passing through and
// redirecting: no session outside the public paths goes to /login, a
// session on /login or /signup goes to the board.
func (s *Server) gateway(c *fiber.Ctx) error {
	path := c.Path()
	for _, p := range bypassPrefixes {
		if hasPathPrefix(path, p) {
			return c.Next()
		}
	}

	sess, err := s.resolve(c)
	if err == nil {
		c.Locals(sessionKey, sess)
	}
	signedIn := err == nil

	switch {
	case !signedIn && !isPublic(path):
		return c.Redirect("/login", fiber.StatusFound)
	case signedIn && (path == "/login" || path == "/signup"):
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Next()
}
