package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/identity"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeTasks struct {
	tasks     []models.Task
	err       error
	gotOwner  string
	gotID     string
	gotInput  models.TaskInput
	deleteErr error
}

func (f *fakeTasks) List(_ context.Context, owner string) ([]models.Task, error) {
	f.gotOwner = owner
	return f.tasks, f.err
}

func (f *fakeTasks) Create(_ context.Context, owner string, in models.TaskInput) (*models.Task, error) {
	f.gotOwner, f.gotInput = owner, in
	if f.err != nil {
		return nil, f.err
	}
	t := models.Task{ID: "t-new", Owner: owner, Status: models.StatusTodo, Priority: models.PriorityMedium}
	if in.Title != nil {
		t.Title = *in.Title
	}
	return &t, nil
}

func (f *fakeTasks) Update(_ context.Context, owner, id string, in models.TaskInput) (*models.Task, error) {
	f.gotOwner, f.gotID, f.gotInput = owner, id, in
	if f.err != nil {
		return nil, f.err
	}
	t := models.Task{ID: id, Owner: owner, Title: "x", Status: *in.Status}
	return &t, nil
}

func (f *fakeTasks) Delete(_ context.Context, owner, id string) error {
	f.gotOwner, f.gotID = owner, id
	return f.deleteErr
}

type fakeUsers struct {
	known map[string]bool
	err   error
}

func (f *fakeUsers) Sync(_ context.Context, in services.SyncInput) (*models.User, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if in.Email == "" || in.ExternalAuthID == "" {
		return nil, false, fmt.Errorf("%w: missing", common.ErrorValidation)
	}
	if f.known == nil {
		f.known = map[string]bool{}
	}
	created := !f.known[in.ExternalAuthID]
	f.known[in.ExternalAuthID] = true
	return &models.User{ID: "u-" + in.ExternalAuthID, Email: in.Email, ExternalAuthID: in.ExternalAuthID}, created, nil
}

type fakeAccounts struct {
	loginErr error
}

func (f *fakeAccounts) Signup(_ context.Context, in services.SignupInput) (*models.Credential, error) {
	if in.Email == "taken@example.com" {
		return nil, common.ErrorAlreadyExists
	}
	return &models.Credential{ID: "c1", Email: in.Email}, nil
}

func (f *fakeAccounts) Login(context.Context, string, string) (*models.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.TokenPair{AccessToken: "good", RefreshToken: "r1", ExpiresIn: 900}, nil
}

func (f *fakeAccounts) Refresh(_ context.Context, token string) (*models.TokenPair, error) {
	if token != "r1" {
		return nil, common.ErrorUnauthorized
	}
	return &models.TokenPair{AccessToken: "good", RefreshToken: "r2", ExpiresIn: 900}, nil
}

func (f *fakeAccounts) Logout(context.Context, string) error { return nil }

type fakeExporter struct{}

func (fakeExporter) Export(_ context.Context, owner string) (*models.TaskExport, error) {
	return &models.TaskExport{Key: "exports/" + owner + "/x.json", URL: "http://s3/x"}, nil
}

var verifier = identity.ProviderFunc(func(_ context.Context, token string) (identity.Identity, error) {
	switch token {
	case "good":
		return identity.Identity{ExternalID: "ext-1", Email: "a@example.com"}, nil
	case "expired":
		return identity.Identity{}, common.ErrTokenExpired
	}
	return identity.Identity{}, fmt.Errorf("%w: bad", common.ErrInvalidToken)
})

func newTestServer(t *testing.T, tasks *fakeTasks, users *fakeUsers) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", Deps{
		Tasks:    tasks,
		Exporter: fakeExporter{},
		Users:    users,
		Accounts: &fakeAccounts{},
		Identity: verifier,
		Logger:   nopLogger{},
	}, time.Second)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, target, token, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(":0", Deps{}, time.Second)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	resp, body := do(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestTasks_Unauthorized(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"invalid token", "bad"},
		{"expired token", "expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &fakeTasks{}
			s := newTestServer(t, tasks, &fakeUsers{})
			for _, m := range []string{http.MethodGet, http.MethodPost} {
				resp, body := do(t, s, m, "/api/tasks", tt.token, `{"title":"x"}`)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				assert.JSONEq(t, `{"error":"Unauthorized"}`, body)
			}
			assert.Empty(t, tasks.gotOwner, "handler must not run")
		})
	}
}

func TestTasks_NonBearerHeader(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Basic good")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasks_CookieAuth(t *testing.T) {
	tasks := &fakeTasks{}
	s := newTestServer(t, tasks, &fakeUsers{})
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "good"})
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u-ext-1", tasks.gotOwner)
}

func TestListTasks(t *testing.T) {
	tasks := &fakeTasks{tasks: []models.Task{{ID: "1", Title: "a", Status: models.StatusTodo, Priority: models.PriorityLow}}}
	users := &fakeUsers{}
	s := newTestServer(t, tasks, users)

	resp, body := do(t, s, http.MethodGet, "/api/tasks", "good", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u-ext-1", tasks.gotOwner)
	assert.True(t, users.known["ext-1"], "authenticated request syncs the user")

	var got []models.Task
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
}

func TestListTasks_StoreFailure(t *testing.T) {
	s := newTestServer(t, &fakeTasks{err: errors.New("connection refused")}, &fakeUsers{})
	resp, body := do(t, s, http.MethodGet, "/api/tasks", "good", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"list tasks failed"}`, body)
	assert.NotContains(t, body, "connection refused")
}

func TestAuthenticate_SyncFailure(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{err: errors.New("db down")})
	resp, body := do(t, s, http.MethodGet, "/api/tasks", "good", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"sync-user failed"}`, body)
}

func TestCreateTask(t *testing.T) {
	tasks := &fakeTasks{}
	s := newTestServer(t, tasks, &fakeUsers{})

	resp, body := do(t, s, http.MethodPost, "/api/tasks", "good", `{"title":"Buy milk","owner":"someone-else"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u-ext-1", tasks.gotOwner)
	require.NotNil(t, tasks.gotInput.Title)
	assert.Equal(t, "Buy milk", *tasks.gotInput.Title)

	var got models.Task
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "u-ext-1", got.Owner)
	assert.Equal(t, models.StatusTodo, got.Status)
}

func TestCreateTask_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		s := newTestServer(t, &fakeTasks{err: fmt.Errorf("%w: empty title", common.ErrorValidation)}, &fakeUsers{})
		resp, body := do(t, s, http.MethodPost, "/api/tasks", "good", `{"title":""}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"create task failed"}`, body)
	})
	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
		resp, _ := do(t, s, http.MethodPost, "/api/tasks", "good", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(t, &fakeTasks{err: errors.New("boom")}, &fakeUsers{})
		resp, body := do(t, s, http.MethodPost, "/api/tasks", "good", `{"title":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"create task failed"}`, body)
	})
}

func TestUpdateTask(t *testing.T) {
	tasks := &fakeTasks{}
	s := newTestServer(t, tasks, &fakeUsers{})

	resp, body := do(t, s, http.MethodPatch, "/api/tasks/t-42", "good", `{"status":"DONE"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "t-42", tasks.gotID)
	assert.Equal(t, "u-ext-1", tasks.gotOwner)
	assert.Nil(t, tasks.gotInput.Title)
	assert.Contains(t, body, `"status":"DONE"`)
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeTasks{err: common.ErrorNotFound}, &fakeUsers{})
	resp, body := do(t, s, http.MethodPatch, "/api/tasks/missing", "good", `{"status":"DONE"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, body)
}

func TestDeleteTask(t *testing.T) {
	tasks := &fakeTasks{}
	s := newTestServer(t, tasks, &fakeUsers{})

	resp, body := do(t, s, http.MethodDelete, "/api/tasks/t-1", "good", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, "t-1", tasks.gotID)

	s = newTestServer(t, &fakeTasks{deleteErr: errors.New("boom")}, &fakeUsers{})
	resp, body = do(t, s, http.MethodDelete, "/api/tasks/t-1", "good", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"delete task failed"}`, body)
}

func TestExportTasks(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	resp, body := do(t, s, http.MethodPost, "/api/tasks/export", "good", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"key":"exports/u-ext-1/x.json"`)
}

func TestSyncUser(t *testing.T) {
	users := &fakeUsers{}
	s := newTestServer(t, &fakeTasks{}, users)

	resp, body := do(t, s, http.MethodPost, "/api/sync-user", "", `{"email":"b@example.com","externalAuthId":"ext-2"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var u models.User
	require.NoError(t, json.Unmarshal([]byte(body), &u))
	assert.Equal(t, "ext-2", u.ExternalAuthID)

	resp, body2 := do(t, s, http.MethodPost, "/api/sync-user", "", `{"email":"b@example.com","externalAuthId":"ext-2"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, body, body2)

	resp, body = do(t, s, http.MethodPost, "/api/sync-user", "", `{"email":"b@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"sync-user failed"}`, body)
}

func TestSyncUser_StoreFailure(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{err: errors.New("boom")})
	resp, body := do(t, s, http.MethodPost, "/api/sync-user", "", `{"email":"b@example.com","externalAuthId":"ext-2"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"sync-user failed"}`, body)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	resp, _ := do(t, s, http.MethodPost, "/auth/signup", "", `{"email":"n@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/auth/signup", "", `{"email":"taken@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := do(t, s, http.MethodPost, "/auth/login", "", `{"email":"n@example.com","password":"password1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"refreshToken":"r1"`)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), common.AccessTokenCookieName+"=good")

	resp, _ = do(t, s, http.MethodPost, "/auth/refresh", "", `{"refreshToken":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = do(t, s, http.MethodPost, "/auth/refresh", "", `{"refreshToken":"r1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"refreshToken":"r2"`)

	resp, _ = do(t, s, http.MethodPost, "/auth/logout", "", `{"refreshToken":"r2"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	s, err := NewServer(":0", Deps{
		Tasks:    &fakeTasks{},
		Users:    &fakeUsers{},
		Accounts: &fakeAccounts{loginErr: common.ErrorUnauthorized},
		Identity: verifier,
		Logger:   nopLogger{},
	}, time.Second)
	require.NoError(t, err)

	resp, body := do(t, s, http.MethodPost, "/auth/login", "", `{"email":"n@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, body)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	s, err := NewServer("256.0.0.1:bad", Deps{
		Tasks: &fakeTasks{}, Users: &fakeUsers{}, Identity: verifier, Logger: nopLogger{},
	}, time.Second)
	require.NoError(t, err)
	assert.Error(t, s.Run(context.Background()))
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
