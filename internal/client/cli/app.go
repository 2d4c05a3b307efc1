package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskboard/internal/client/board"
	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/config"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// taskBoard is the part of services.BoardService the commands use.
type taskBoard interface {
	Load(ctx context.Context) error
	Add(ctx context.Context) (models.Task, error)
	Edit(id string) (board.Draft, bool)
	Save(ctx context.Context, id, title, description string) (models.Task, error)
	Delete(ctx context.Context, id string) error
	Move(ctx context.Context, activeID, overID string) (bool, error)
	View(id string) (models.Task, bool)
	CloseView()
	Export(ctx context.Context) (*models.TaskExport, error)
	SetSearch(term string)
	SetSort(mode board.SortMode)
	Columns() []board.Column
	Notices() []board.Notice
	Reset()
}

var _ taskBoard = (*services.BoardService)(nil)

type App struct {
	config       *config.Config
	db           *sql.DB
	logger       logging.Logger
	authService  services.AuthService
	boardService taskBoard
	reader       *bufio.Reader
	out          io.Writer
}

// openDatabase is a test seam for repositories.OpenDatabase.
var openDatabase = repositories.OpenDatabase

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, logging.FormatText, c.LogLevel)

	db, err := openDatabase(ctx, c.DBFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "file", c.DBFile, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, c.RetryAttempts)
	store := metadata.NewSQLiteSessionStore(db)

	return &App{
		config:       c,
		db:           db,
		logger:       logger,
		authService:  services.NewAuthService(api, store, logger),
		boardService: services.NewBoardService(api, logger),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Run resumes a stored session if there is one and blocks in the REPL until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to taskboard CLI (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) resume(ctx context.Context) {
	sess, err := a.authService.Restore(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrNoSession) {
			a.logger.Warn(ctx, "failed to restore session", "error", err)
		}
		return
	}

	if err := a.boardService.Load(ctx); err != nil {
		a.boardService.Notices()
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.authService.Logout(ctx)
			fmt.Fprintln(a.out, "Session expired, please log in again.")
			return
		}
		fmt.Fprintln(a.out, "Failed to load tasks")
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
}

func (a *App) isLoggedIn() bool {
	return a.authService.Session() != nil
}

func (a *App) getStatus() string {
	if s := a.authService.Session(); s != nil {
		return fmt.Sprintf("(%s)", s.Email)
	}
	return ""
}

// flushNotices prints and clears the board's pending notices.
func (a *App) flushNotices() {
	for _, n := range a.boardService.Notices() {
		if n.Level == board.LevelError {
			fmt.Fprintf(a.out, "! %s\n", n.Message)
		} else {
			fmt.Fprintf(a.out, "* %s\n", n.Message)
		}
	}
}
