package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/users"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeRepoManager struct {
	repomanager.RepositoryManager
	users   users.Repository
	tasks   tasks.Repository
	creds   credentials.Repository
	refresh refreshtokens.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error            { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                         { return m.users }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository                         { return m.tasks }
func (m *fakeRepoManager) Credentials(dbx.DBTX) credentials.Repository             { return m.creds }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository         { return m.refresh }

// memTasks is an owner-scoped in-memory tasks.Repository.
type memTasks struct {
	mu      sync.Mutex
	rows    map[string]models.Task
	seq     int
	listErr error
}

func newMemTasks() *memTasks { return &memTasks{rows: map[string]models.Task{}} }

func (m *memTasks) ListByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Task, 0)
	for _, t := range m.rows {
		if t.Owner == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Title == "" {
		return nil, fmt.Errorf("%w: title", common.ErrorValidation)
	}
	m.seq++
	t.ID = uuid.NewString()
	t.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	m.rows[t.ID] = *t
	return t, nil
}

func (m *memTasks) Update(_ context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.Owner != ownerID {
		return nil, common.ErrorNotFound
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, common.ErrorValidation
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	m.rows[id] = t
	return &t, nil
}

func (m *memTasks) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.rows[id]; ok && t.Owner == ownerID {
		delete(m.rows, id)
	}
	return nil
}

type fakeUsers struct {
	byExt      map[string]*models.User
	getErr     error
	createErr  error
	creates    int
	afterFirst func(f *fakeUsers)
}

func (f *fakeUsers) GetByExternalAuthID(_ context.Context, ext string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byExt[ext]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.creates++
	if f.afterFirst != nil {
		f.afterFirst(f)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "user-" + u.ExternalAuthID
	f.byExt[u.ExternalAuthID] = u
	return u, nil
}

type fakeCredentials struct {
	byEmail   map[string]*models.Credential
	createErr error
	getErr    error
}

func (f *fakeCredentials) Create(_ context.Context, c *models.Credential) (*models.Credential, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[c.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	c.ID = uuid.NewString()
	f.byEmail[c.Email] = c
	return c, nil
}

func (f *fakeCredentials) GetByEmail(_ context.Context, email string) (*models.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if c, ok := f.byEmail[email]; ok {
		return c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCredentials) GetByID(_ context.Context, id string) (*models.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, c := range f.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefresh struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	deleteErr error
	findErr   error
	deleted   []string
}

func (f *fakeRefresh) Create(_ context.Context, credentialID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{CredentialID: credentialID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if rt, ok := f.tokens[token]; ok {
		return rt, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefresh) Delete(_ context.Context, token string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	_, ok := f.tokens[token]
	delete(f.tokens, token)
	return ok, nil
}

// staleRefresh answers Find from the tokens seen on the first lookup, the way
// two concurrent requests both read a row before either deletes it.
type staleRefresh struct {
	*fakeRefresh
	seen map[string]*models.RefreshToken
}

func (f *staleRefresh) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := f.seen[token]; ok {
		return rt, nil
	}
	rt, err := f.fakeRefresh.Find(ctx, token)
	if err == nil {
		f.seen[token] = rt
	}
	return rt, err
}

func (f *fakeRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, rt := range f.tokens {
		if rt.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}
