// Package credentials declares the store of the built-in identity provider:
// email and password-hash accounts whose ids act as external auth ids.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	// Create inserts c and fills in ID and CreatedAt; a taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByID(ctx context.Context, id string) (*models.Credential, error)
}
