package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/model"
)

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration // zero means no client-side timeout
	Store   KV            // where cookies are persisted; nil keeps them in memory
	Now     func() time.Time
}

// Response is the raw outcome of a call that reached the server.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks to the ProTodo backend. Authentication rides on the session
// cookie the backend sets on login, so every call goes through the same jar.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        *Jar
	now        func() time.Time
}

// NewClient creates a client for opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", opts.BaseURL)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	jar := NewJar(base, opts.Store)
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: opts.Timeout, Jar: jar},
		jar:        jar,
		now:        now,
	}, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Jar exposes the cookie jar so callers can restore or forget the session cookie.
func (c *Client) Jar() *Jar {
	return c.jar
}

// do sends a JSON request and reads the whole response. A *Response is
// returned whenever the server answered, even alongside a *StatusError.
func (c *Client) do(ctx context.Context, method, path string, payload any, expect ...int) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("HTTP Request",
		logger.F("method", method),
		logger.F("url", target))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("error", err), logger.F("url", target))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	logger.Debug("HTTP Response",
		logger.F("status", resp.StatusCode),
		logger.F("url", target),
		logger.F("bytes", len(data)),
		logger.F("duration", time.Since(start).String()))

	if err := c.jar.Save(ctx); err != nil {
		logger.Warn("Failed to persist cookies", logger.F("error", err))
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if len(expect) > 0 {
		ok = slices.Contains(expect, resp.StatusCode)
	}
	if !ok {
		se := &StatusError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(data)}
		logger.Warn("Unexpected status",
			logger.F("method", method),
			logger.F("url", target),
			logger.F("status", resp.StatusCode),
			logger.F("message", se.Message))
		return out, se
	}
	return out, nil
}

// Login posts credentials to /login. On success the backend's session cookie
// is stored in the jar; the returned user is nil when the body carries none
// or carries one that does not decode.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, *model.User, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login",
		credentialsRequest{Email: email, Password: password}, http.StatusOK)
	if err != nil {
		return resp, nil, err
	}

	user, err := decodeLoginUser(resp.Body)
	if err != nil {
		logger.Warn("Ignoring unreadable user in login response", logger.F("error", err))
		return resp, nil, nil
	}
	return resp, user, nil
}

// Register posts a new account to /register. It does not log the user in.
func (c *Client) Register(ctx context.Context, p model.Profile) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/register", registerRequest{
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     p.Email,
		Password:  p.Password,
	}, http.StatusCreated)
}

// Logout asks the backend to end the session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", struct{}{})
	return err
}

// ListTasks fetches the user's tasks from GET /todo.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	resp, err := c.do(ctx, http.MethodGet, "/todo", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeTaskList(resp.Body)
}

// CreateTask posts d to /todo and returns the task as the server stored it.
// When the response does not echo the task, the result is built from what was
// sent and has an empty ID.
func (c *Client) CreateTask(ctx context.Context, d model.Draft) (model.Task, error) {
	payload := newCreateTaskRequest(d, c.now())

	resp, err := c.do(ctx, http.MethodPost, "/todo", payload, http.StatusOK, http.StatusCreated)
	if err != nil {
		return model.Task{}, err
	}

	sent := model.Task{
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    d.Priority,
	}
	sent.DueDate, _ = model.ParseDate(payload.DueDate)

	stored, ok, err := decodeCreatedTask(resp.Body)
	if err != nil {
		// The server accepted the task; an odd echo must not undo that.
		logger.Warn("Ignoring unreadable create response", logger.F("error", err))
		return sent, nil
	}
	if !ok {
		return sent, nil
	}
	stored.Completed = false
	return stored, nil
}
