package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
)

const (
	keyEmail          = "session.email"
	keyAccessToken    = "session.access_token"
	keyRefreshToken   = "session.refresh_token"
	keyExternalAuthID = "session.external_auth_id"
	keyUser           = "session.user"
)

var sessionKeys = []string{keyEmail, keyAccessToken, keyRefreshToken, keyExternalAuthID, keyUser}

// SQLiteSessionStore keeps the session as a handful of metadata rows,
// written and cleared atomically.
type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(db *sql.DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

func (s *SQLiteSessionStore) Load(ctx context.Context) (*models.Session, error) {
	all, err := NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	access, refresh := all[keyAccessToken], all[keyRefreshToken]
	if len(access) == 0 && len(refresh) == 0 {
		return nil, nil
	}

	sess := &models.Session{
		Email:          string(all[keyEmail]),
		AccessToken:    string(access),
		RefreshToken:   string(refresh),
		ExternalAuthID: string(all[keyExternalAuthID]),
	}
	if raw := all[keyUser]; len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("failed to decode stored user: %w", err)
		}
		sess.User = &u
	}
	return sess, nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, sess *models.Session) error {
	var user []byte
	if sess.User != nil {
		var err error
		if user, err = json.Marshal(sess.User); err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		values := map[string][]byte{
			keyEmail:          []byte(sess.Email),
			keyAccessToken:    []byte(sess.AccessToken),
			keyRefreshToken:   []byte(sess.RefreshToken),
			keyExternalAuthID: []byte(sess.ExternalAuthID),
		}
		values[keyUser] = user
		for k, v := range values {
			var err error
			if len(v) == 0 {
				err = repo.Delete(ctx, k)
			} else {
				err = repo.Set(ctx, k, v)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteSessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, k := range sessionKeys {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
