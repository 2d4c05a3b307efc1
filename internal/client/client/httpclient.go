package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/common"
)

const defaultBackoff = 200 * time.Millisecond

type HTTPClient struct {
	baseURL string
	http    *http.Client
	retries uint64
	backoff time.Duration

	mu       sync.Mutex
	access   string
	refresh  string
	onTokens func(models.TokenPair)

	// refreshMu serialises token refreshes so a rotated refresh token is
	// used once.
	refreshMu sync.Mutex
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at baseURL. retries is the
// number of extra attempts for transient failures of idempotent requests.
func NewHTTPClient(baseURL string, timeout time.Duration, retries uint64) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		backoff: defaultBackoff,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access, c.refresh = access, refresh
}

func (c *HTTPClient) OnTokens(fn func(models.TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access, c.refresh
}

func (c *HTTPClient) storePair(pair models.TokenPair) {
	c.mu.Lock()
	c.access, c.refresh = pair.AccessToken, pair.RefreshToken
	fn := c.onTokens
	c.mu.Unlock()

	if fn != nil {
		fn(pair)
	}
}

func statusError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
	return fmt.Errorf("unexpected status %d: %s", status, msg)
}

// send performs one HTTP exchange. payload is the already encoded body.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, out any, token string) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, statusError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// sendRetrying is send with backoff on ErrUnavailable for idempotent
// methods.
func (c *HTTPClient) sendRetrying(ctx context.Context, method, path string, payload []byte, out any, token string) (int, error) {
	if !idempotent(method) || c.retries == 0 {
		return c.send(ctx, method, path, payload, out, token)
	}

	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	var status int
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		status, err = c.send(ctx, method, path, payload, out, token)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
	return status, err
}

// do sends an authenticated request, refreshing the access token once if
// the server rejects it.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return 0, err
		}
	}

	access, _ := c.tokens()
	status, err := c.sendRetrying(ctx, method, path, payload, out, access)
	if !errors.Is(err, ErrUnauthorized) {
		return status, err
	}

	if rerr := c.refreshAfter(ctx, access); rerr != nil {
		return status, err
	}

	access, _ = c.tokens()
	return c.sendRetrying(ctx, method, path, payload, out, access)
}

// refreshAfter exchanges the refresh token for a new pair, unless another
// request already replaced the stale access token.
func (c *HTTPClient) refreshAfter(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.tokens()
	if access != stale {
		return nil
	}
	if refresh == "" {
		return ErrUnauthorized
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}

	var pair models.TokenPair
	if _, err := c.send(ctx, http.MethodPost, "/auth/refresh", payload, &pair, ""); err != nil {
		return err
	}
	c.storePair(pair)
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.sendRetrying(ctx, http.MethodGet, "/health", nil, nil, "")
	return err
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, http.MethodPost, "/auth/signup", payload, nil, "")
	return err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var pair models.TokenPair
	if _, err := c.send(ctx, http.MethodPost, "/auth/login", payload, &pair, ""); err != nil {
		return nil, err
	}
	c.storePair(pair)
	return &pair, nil
}

// Logout revokes the refresh token on the server and forgets both tokens
// locally, even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	c.SetTokens("", "")

	if refresh == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}
	_, err = c.send(ctx, http.MethodPost, "/auth/logout", payload, nil, "")
	return err
}

// SyncUser reports created=true when the server created the user.
func (c *HTTPClient) SyncUser(ctx context.Context, email, externalAuthID string) (*models.User, bool, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "externalAuthId": externalAuthID})
	if err != nil {
		return nil, false, err
	}

	var u models.User
	status, err := c.send(ctx, http.MethodPost, "/api/sync-user", payload, &u, "")
	if err != nil {
		return nil, false, err
	}
	return &u, status == http.StatusCreated, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if _, err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var t models.Task
	if _, err := c.do(ctx, http.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	var t models.Task
	if _, err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *HTTPClient) ExportTasks(ctx context.Context) (*models.TaskExport, error) {
	var e models.TaskExport
	if _, err := c.do(ctx, http.MethodPost, "/api/tasks/export", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
