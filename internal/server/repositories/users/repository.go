// Package users declares the repository contract for application users.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A duplicate email or
	// external auth id yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByExternalAuthID returns common.ErrorNotFound when no user is linked
	// to the external identity.
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
}
