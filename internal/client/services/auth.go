// Package services contains application services for the taskboard client.
// This file defines the authentication service: signup, login (login, then
// user sync, then a stored session), session restore and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// ErrNoSession is returned by Restore when nothing is stored locally.
var ErrNoSession = errors.New("no stored session")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup: create an account with the identity provider.
//   - Login: authenticate, sync the application user, persist the session.
//   - Restore: resume the locally stored session without a password.
//   - Logout: revoke tokens and forget the session locally.
//   - Session: the current session, nil when signed out.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Signup(ctx context.Context, req client.SignupRequest) error
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Restore(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
	Session() *models.Session
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  metadata.SessionStore
	logger logging.Logger

	mu      sync.Mutex
	session *models.Session
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store. Refreshed tokens are written back to the store.
func NewAuthService(c client.Client, store metadata.SessionStore, logger logging.Logger) AuthService {
	a := &authService{client: c, store: store, logger: logger.With("module", "auth")}
	c.OnTokens(a.tokensRefreshed)
	return a
}

func (a *authService) tokensRefreshed(pair models.TokenPair) {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return
	}
	a.session.AccessToken = pair.AccessToken
	a.session.RefreshToken = pair.RefreshToken
	snapshot := *a.session
	a.mu.Unlock()

	ctx := context.Background()
	if err := a.store.Save(ctx, &snapshot); err != nil {
		a.logger.Warn(ctx, "failed to persist refreshed tokens", "error", err)
	}
}

func (a *authService) Signup(ctx context.Context, req client.SignupRequest) error {
	return a.client.Signup(ctx, req)
}

// Login runs the bootstrap sequence: credentials are exchanged for tokens,
// the identity in the access token is synced to an application user, and
// the resulting session is stored.
func (a *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	pair, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	id, err := client.ParseTokenIdentity(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if id.Email == "" {
		id.Email = email
	}

	user, _, err := a.client.SyncUser(ctx, id.Email, id.Subject)
	if err != nil {
		return nil, fmt.Errorf("user sync failed: %w", err)
	}

	sess := &models.Session{
		Email:          id.Email,
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		ExternalAuthID: id.Subject,
		User:           user,
	}
	if err := a.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	a.setSession(sess)
	a.logger.Info(ctx, "logged in", "email", sess.Email)
	return sess, nil
}

func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	a.client.SetTokens(sess.AccessToken, sess.RefreshToken)
	a.setSession(sess)
	return sess, nil
}

// Logout always clears the local session; a failed server call is reported
// after that.
func (a *authService) Logout(ctx context.Context) error {
	serverErr := a.client.Logout(ctx)
	a.setSession(nil)

	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	return serverErr
}

func (a *authService) Session() *models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) setSession(s *models.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s == nil {
		a.session = nil
		return
	}
	c := *s
	a.session = &c
}
