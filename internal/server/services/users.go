package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"golang.org/x/sync/singleflight"
)

// UserCache is a best-effort lookup of users by external auth id.
// Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, externalAuthID string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
}

// SyncInput identifies the person behind a verified external identity.
type SyncInput struct {
	Email          string `json:"email"`
	ExternalAuthID string `json:"externalAuthId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// UserService links external identities to application users.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       UserCache
	logger      logging.Logger

	// lookups collapses concurrent store reads for the same external id.
	lookups singleflight.Group
}

// NewUserService builds a UserService. cache may be nil.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cache UserCache, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		cache:       cache,
		logger:      logger.With("module", "users"),
	}
}

// Sync returns the user linked to in.ExternalAuthID, creating it on first
// sight. created reports whether this call inserted the row. Calling Sync
// again with the same input returns the same user, including when two calls
// race on the insert.
func (s *UserService) Sync(ctx context.Context, in SyncInput) (user *models.User, created bool, err error) {
	in.Email = strings.TrimSpace(in.Email)
	in.ExternalAuthID = strings.TrimSpace(in.ExternalAuthID)
	if in.Email == "" || in.ExternalAuthID == "" {
		return nil, false, fmt.Errorf("%w: email and externalAuthId are required", common.ErrorValidation)
	}

	if u := s.cached(ctx, in.ExternalAuthID); u != nil {
		return u, false, nil
	}

	repo := s.repomanager.Users(s.db)

	u, err := s.lookup(ctx, in.ExternalAuthID)
	if err == nil {
		s.remember(ctx, u)
		return u, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error looking up user: %w", err)
	}

	u, err = repo.Create(ctx, &models.User{
		Email:          in.Email,
		ExternalAuthID: in.ExternalAuthID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
	})
	if err != nil {
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, false, fmt.Errorf("error creating user: %w", err)
		}
		// lost an insert race, or the email belongs to another identity
		u, err = repo.GetByExternalAuthID(ctx, in.ExternalAuthID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, false, common.ErrorAlreadyExists
			}
			return nil, false, fmt.Errorf("error looking up user: %w", err)
		}
		s.remember(ctx, u)
		return u, false, nil
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID)
	s.remember(ctx, u)
	return u, true, nil
}

func (s *UserService) lookup(ctx context.Context, externalAuthID string) (*models.User, error) {
	// the shared call must not fail for every waiter when the first caller
	// goes away
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.lookups.Do(externalAuthID, func() (any, error) {
		return s.repomanager.Users(s.db).GetByExternalAuthID(shared, externalAuthID)
	})
	if err != nil {
		return nil, err
	}
	u := *v.(*models.User)
	return &u, nil
}

func (s *UserService) cached(ctx context.Context, externalAuthID string) *models.User {
	if s.cache == nil {
		return nil
	}
	u, err := s.cache.Get(ctx, externalAuthID)
	if err != nil {
		s.logger.Warn(ctx, "user cache read failed", "error", err)
		return nil
	}
	return u
}

func (s *UserService) remember(ctx context.Context, u *models.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, u); err != nil {
		s.logger.Warn(ctx, "user cache write failed", "error", err)
	}
}
