// Package metadata is the client's local key/value store. The session
// (tokens and identity of the signed-in user) is kept in it so the client
// can resume without logging in again.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

// Repository is a plain key/value table. Get returns (nil, nil) for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// SessionStore persists the client session. Load returns (nil, nil) when no
// session is stored.
type SessionStore interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
