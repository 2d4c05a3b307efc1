package client

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type Client interface {
	Ping(ctx context.Context) error

	Signup(ctx context.Context, req SignupRequest) error
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Logout(ctx context.Context) error
	SyncUser(ctx context.Context, email, externalAuthID string) (*models.User, bool, error)

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ExportTasks(ctx context.Context) (*models.TaskExport, error)

	// SetTokens installs a previously stored token pair.
	SetTokens(access, refresh string)
	// OnTokens registers a callback run after every login or refresh.
	OnTokens(fn func(models.TokenPair))
}
