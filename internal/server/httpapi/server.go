// Package httpapi is the HTTP surface of the taskboard server: the JSON task
// API, the user sync endpoint, the identity endpoints, and the small set of
// server-rendered pages guarded by the route gateway.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/identity"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

type TaskService interface {
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Exporter interface {
	Export(ctx context.Context, ownerID string) (*models.TaskExport, error)
}

type UserSyncer interface {
	Sync(ctx context.Context, in services.SyncInput) (*models.User, bool, error)
}

// Accounts is the credential side of the identity provider.
type Accounts interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.Credential, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Deps are the collaborators the server routes to. Exporter and Accounts
// may be nil, in which case their routes are not registered.
type Deps struct {
	Tasks    TaskService
	Exporter Exporter
	Users    UserSyncer
	Accounts Accounts
	Identity identity.Provider
	Logger   logging.Logger

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

type Server struct {
	addr            string
	app             *fiber.App
	deps            Deps
	logger          logging.Logger
	shutdownTimeout time.Duration
	pages           *pages
}

func NewServer(addr string, deps Deps, shutdownTimeout time.Duration) (*Server, error) {
	if deps.Tasks == nil || deps.Users == nil || deps.Identity == nil || deps.Logger == nil {
		return nil, errors.New("httpapi: tasks, users, identity and logger are required")
	}

	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:            addr,
		deps:            deps,
		logger:          deps.Logger.With("module", "http"),
		shutdownTimeout: shutdownTimeout,
		pages:           p,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "taskboard",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()

	return s, nil
}

// App exposes the underlying fiber application, mostly for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	if s.deps.AccessLog != nil {
		s.app.Use(logger.New(logger.Config{
			Output: s.deps.AccessLog,
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if s.deps.Accounts != nil {
		a := s.app.Group("/auth")
		a.Post("/signup", s.signup)
		a.Post("/login", s.login)
		a.Post("/refresh", s.refresh)
		a.Post("/logout", s.logout)
	}

	api := s.app.Group("/api")
	// Internal call, no caller authentication.
	api.Post("/sync-user", s.syncUser)

	t := api.Group("/tasks", s.authenticate)
	t.Get("/", s.listTasks)
	t.Post("/", s.createTask)
	if s.deps.Exporter != nil {
		t.Post("/export", s.exportTasks)
	}
	t.Patch("/:id", s.updateTask)
	t.Delete("/:id", s.deleteTask)

	s.app.Use(s.gateway)
	s.app.Get("/", s.boardPage)
	s.app.Get("/login", s.loginPage)
	s.app.Get("/signup", s.signupPage)
	if s.deps.Accounts != nil {
		s.app.Post("/login", s.loginForm)
		s.app.Post("/signup", s.signupForm)
	}
	s.app.Get("/logout", s.logoutPage)
}

// Run serves until ctx is cancelled and then shuts down, waiting up to the
// shutdown timeout for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", s.addr, err)
	}

	s.logger.Info(ctx, "HTTP server started", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Shutting down HTTP server...")
	if err := s.app.ShutdownWithTimeout(s.shutdownTimeout); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
