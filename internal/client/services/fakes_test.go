package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

var errBoom = errors.New("boom")

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// fakeClient embeds the interface so unimplemented calls panic.
type fakeClient struct {
	client.Client

	mu       sync.Mutex
	tasks    []models.Task
	nextID   int
	failNext map[string]error
	updates  []models.TaskInput
	onTokens func(models.TokenPair)

	access, refresh string
	loginPair       *models.TokenPair
	synced          []string
	loggedOut       bool
}

func (f *fakeClient) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failNext[op]; ok {
		delete(f.failNext, op)
		return err
	}
	return nil
}

func (f *fakeClient) failOnce(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext == nil {
		f.failNext = map[string]error{}
	}
	f.failNext[op] = err
}

func (f *fakeClient) Ping(context.Context) error { return f.fail("ping") }

func (f *fakeClient) Signup(context.Context, client.SignupRequest) error { return f.fail("signup") }

func (f *fakeClient) Login(_ context.Context, _, _ string) (*models.TokenPair, error) {
	if err := f.fail("login"); err != nil {
		return nil, err
	}
	f.access, f.refresh = f.loginPair.AccessToken, f.loginPair.RefreshToken
	p := *f.loginPair
	return &p, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.loggedOut = true
	f.access, f.refresh = "", ""
	return f.fail("logout")
}

func (f *fakeClient) SyncUser(_ context.Context, email, ext string) (*models.User, bool, error) {
	if err := f.fail("sync"); err != nil {
		return nil, false, err
	}
	f.synced = append(f.synced, ext)
	return &models.User{ID: "u-" + ext, Email: email, ExternalAuthID: ext}, len(f.synced) == 1, nil
}

func (f *fakeClient) SetTokens(a, r string) { f.access, f.refresh = a, r }

func (f *fakeClient) OnTokens(fn func(models.TokenPair)) { f.onTokens = fn }

func (f *fakeClient) ListTasks(context.Context) ([]models.Task, error) {
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task{}, f.tasks...), nil
}

func (f *fakeClient) CreateTask(_ context.Context, in models.TaskInput) (*models.Task, error) {
	if err := f.fail("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := models.Task{ID: "new-" + string(rune('0'+f.nextID)), Title: *in.Title, Description: *in.Description, Status: *in.Status, Priority: models.PriorityMedium}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, in models.TaskInput) (*models.Task, error) {
	f.mu.Lock()
	f.updates = append(f.updates, in)
	f.mu.Unlock()
	if err := f.fail("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if in.Title != nil {
			f.tasks[i].Title = *in.Title
		}
		if in.Description != nil {
			f.tasks[i].Description = *in.Description
		}
		if in.Status != nil {
			f.tasks[i].Status = *in.Status
		}
		t := f.tasks[i]
		return &t, nil
	}
	return nil, client.ErrNotFound
}

func (f *fakeClient) DeleteTask(_ context.Context, id string) error {
	if err := f.fail("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) ExportTasks(context.Context) (*models.TaskExport, error) {
	if err := f.fail("export"); err != nil {
		return nil, err
	}
	return &models.TaskExport{Key: "k", URL: "http://download"}, nil
}

type memStore struct {
	sess    *models.Session
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (*models.Session, error) {
	if m.sess == nil {
		return nil, nil
	}
	s := *m.sess
	return &s, nil
}

func (m *memStore) Save(_ context.Context, s *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	c := *s
	m.sess = &c
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.sess = nil
	return nil
}

func accessToken(t *testing.T, sub, email string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}
