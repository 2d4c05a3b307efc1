package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/dmitrijs2005/taskboard/internal/taskview"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	board  *template.Template
	login  *template.Template
	signup *template.Template
}

func loadPages() (*pages, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		return t, nil
	}

	var p pages
	var err error
	if p.board, err = parse("board.html"); err != nil {
		return nil, err
	}
	if p.login, err = parse("login.html"); err != nil {
		return nil, err
	}
	if p.signup, err = parse("signup.html"); err != nil {
		return nil, err
	}
	return &p, nil
}

func render(c *fiber.Ctx, status int, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

type boardView struct {
	Title   string
	User    *models.User
	Search  string
	Sort    taskview.SortMode
	Columns []pageColumn
}

type pageColumn struct {
	Status models.Status
	Tasks  []models.Task
}

var columnKeys = func() []string {
	keys := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		keys[i] = string(st)
	}
	return keys
}()

// boardColumns applies the search and sort query to tasks and groups the
// result by status.
func boardColumns(tasks []models.Task, search string, mode taskview.SortMode) []pageColumn {
	groups := taskview.Board(tasks, search, mode, columnKeys)
	cols := make([]pageColumn, len(groups))
	for i, g := range groups {
		cols[i] = pageColumn{Status: models.Status(g.Key), Tasks: g.Items}
	}
	return cols
}

type formView struct {
	Title     string
	Error     string
	Email     string
	FirstName string
	LastName  string
}

func (s *Server) boardPage(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}

	tasks, err := s.deps.Tasks.List(c.UserContext(), sess.User.ID)
	if err != nil {
		return s.fail(c, "list tasks", err)
	}

	search := c.Query("q")
	mode, ok := taskview.ParseSortMode(c.Query("sort"))
	if !ok {
		mode = taskview.SortRecent
	}

	return render(c, fiber.StatusOK, s.pages.board, "board.html", boardView{
		Title:   "Board",
		User:    sess.User,
		Search:  search,
		Sort:    mode,
		Columns: boardColumns(tasks, search, mode),
	})
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, s.pages.login, "login.html", formView{Title: "Log in"})
}

func (s *Server) signupPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, s.pages.signup, "signup.html", formView{Title: "Sign up"})
}

func (s *Server) loginForm(c *fiber.Ctx) error {
	email, password := c.FormValue("email"), c.FormValue("password")

	pair, err := s.deps.Accounts.Login(c.UserContext(), email, password)
	if err != nil {
		status, msg := fiber.StatusInternalServerError, "Login failed, try again later"
		if isAuthError(err) {
			status, msg = fiber.StatusUnauthorized, "Invalid email or password"
		} else {
			s.logger.Error(c.UserContext(), "login failed", "error", err)
		}
		return render(c, status, s.pages.login, "login.html", formView{Title: "Log in", Error: msg, Email: email})
	}

	setAccessCookie(c, pair)
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) signupForm(c *fiber.Ctx) error {
	in := services.SignupInput{
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
		FirstName: c.FormValue("firstName"),
		LastName:  c.FormValue("lastName"),
	}
	view := formView{Title: "Sign up", Email: in.Email, FirstName: in.FirstName, LastName: in.LastName}

	if _, err := s.deps.Accounts.Signup(c.UserContext(), in); err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			status, view.Error = fiber.StatusConflict, "An account with this email already exists"
		case errors.Is(err, common.ErrorValidation):
			status, view.Error = fiber.StatusBadRequest, "Enter a valid email and a password of at least 8 characters"
		default:
			view.Error = "Sign up failed, try again later"
			s.logger.Error(c.UserContext(), "signup failed", "error", err)
		}
		return render(c, status, s.pages.signup, "signup.html", view)
	}

	pair, err := s.deps.Accounts.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return c.Redirect("/login", fiber.StatusFound)
	}

	setAccessCookie(c, pair)
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) logoutPage(c *fiber.Ctx) error {
	clearAccessCookie(c)
	return c.Redirect("/login", fiber.StatusFound)
}
