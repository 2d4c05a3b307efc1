// Package refreshtokens declares the server-side store of issued refresh
// tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	// Create stores token for credentialID, expiring at now+validity.
	Create(ctx context.Context, credentialID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is unknown.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes token and reports whether it was present. An unknown
	// token is not an error.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes every token whose expiry lies before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
