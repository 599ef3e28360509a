package api_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/protodo/internal/api"
	"github.com/existflow/protodo/internal/apitest"
	"github.com/existflow/protodo/internal/db"
	"github.com/existflow/protodo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func newClient(t *testing.T, srv *apitest.Server, store api.KV) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Store:   store,
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := api.NewClient(api.Options{BaseURL: "localhost:3000"})
	assert.Error(t, err)
}

func TestLoginReturnsServerUser(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	c := newClient(t, srv, nil)

	resp, user, err := c.Login(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, user)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, "ann@example.com", user.ID, "_id is accepted as the user id")
}

func TestLoginWithoutUserInBody(t *testing.T) {
	srv := apitest.New(t)
	srv.OmitUser = true
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	c := newClient(t, srv, nil)

	_, user, err := c.Login(context.Background(), "ann@example.com", "secret123")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLoginUnauthorized(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	c := newClient(t, srv, nil)

	resp, user, err := c.Login(context.Background(), "ann@example.com", "wrong-password")
	require.Error(t, err)
	assert.Nil(t, user)
	require.NotNil(t, resp, "the raw response is handed back on status errors")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, api.IsUnauthorized(err))

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "invalid credentials", se.Message)
}

func TestTransportError(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, nil)
	srv.Close()

	resp, _, err := c.Login(context.Background(), "ann@example.com", "secret123")
	assert.Nil(t, resp)
	assert.True(t, api.IsTransport(err))
	assert.False(t, api.IsUnauthorized(err))
}

func TestRegister(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, nil)
	p := model.Profile{FirstName: " Ann ", LastName: "Lee", Email: "ann@example.com", Password: "longenough"}

	resp, err := c.Register(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = c.Register(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, _, err = c.Login(context.Background(), "ann@example.com", "longenough")
	assert.NoError(t, err, "registered account can log in")
}

func TestSessionCookieAuthenticatesTaskCalls(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.AddTodo("ann@example.com", apitest.Todo{Title: "Buy milk", Priority: "high", DueDate: "2024-01-20"})
	c := newClient(t, srv, nil)
	ctx := context.Background()

	_, err := c.ListTasks(ctx)
	assert.True(t, api.IsUnauthorized(err), "no cookie before login")

	_, _, err = c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "2024-01-20", model.FormatDate(tasks[0].DueDate))

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, 0, srv.SessionCount())
}

func TestCookiesSurviveRestart(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	store, err := db.Open(filepath.Join(t.TempDir(), "protodo.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	first := newClient(t, srv, store)
	_, _, err = first.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	second := newClient(t, srv, store)
	require.NoError(t, second.Jar().Load(ctx))
	_, err = second.ListTasks(ctx)
	assert.NoError(t, err, "restored cookie authenticates a fresh client")

	require.NoError(t, second.Jar().Clear(ctx))
	_, err = store.Get(ctx, api.CookieKey)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateTask(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	c := newClient(t, srv, nil)
	ctx := context.Background()
	_, _, err := c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	created, err := c.CreateTask(ctx, model.Draft{Title: "Pay bills", Priority: model.PriorityLow})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Pay bills", created.Title)
	assert.False(t, created.Completed)
	assert.Equal(t, "2024-01-15", model.FormatDate(created.DueDate), "missing due date defaults to today")

	stored := srv.Todos("ann@example.com")
	require.Len(t, stored, 1)
	assert.Equal(t, "2024-01-15", stored[0].DueDate, "sent as due_Date")
}

func TestCreateTaskWithoutEcho(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.Respond(http.MethodPost, "/todo", `{"message":"created"}`)
	c := newClient(t, srv, nil)
	ctx := context.Background()
	_, _, err := c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	created, err := c.CreateTask(ctx, model.Draft{Title: "Pay bills"})
	require.NoError(t, err)
	assert.Empty(t, created.ID)
	assert.Equal(t, "Pay bills", created.Title)
}

func TestCreateTaskServerError(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.Fail(http.MethodPost, "/todo", http.StatusInternalServerError, `{"error":"db down"}`)
	c := newClient(t, srv, nil)
	ctx := context.Background()
	_, _, err := c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	_, err = c.CreateTask(ctx, model.Draft{Title: "Pay bills"})
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "db down", se.Message)
}

func TestListTasksRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"todo not array", `{"todo": "nope"}`},
		{"missing title", `{"todo": [{"id": 1}]}`},
		{"missing id", `{"todo": [{"title": "x"}]}`},
		{"bad priority", `{"todo": [{"id": 1, "title": "x", "priority": "urgent"}]}`},
		{"bad date", `{"todo": [{"id": 1, "title": "x", "due_Date": "next week"}]}`},
		{"duplicate ids", `{"todo": [{"id": 1, "title": "x"}, {"id": "1", "title": "y"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
			srv.Respond(http.MethodGet, "/todo", tt.body)
			c := newClient(t, srv, nil)
			ctx := context.Background()
			_, _, err := c.Login(ctx, "ann@example.com", "secret123")
			require.NoError(t, err)

			_, err = c.ListTasks(ctx)
			var de *api.DecodeError
			assert.True(t, errors.As(err, &de), "got %v", err)
		})
	}
}

func TestListTasksAcceptsSchemaVariants(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.Respond(http.MethodGet, "/todo", `{"todo": [
		{"_id": "abc", "title": "Plan", "dueDate": "2024-01-15T00:00:00.000Z", "completed": true},
		{"id": 7, "title": "Ship", "priority": null, "due_Date": null}
	]}`)
	c := newClient(t, srv, nil)
	ctx := context.Background()
	_, _, err := c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "abc", tasks[0].ID)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "2024-01-15", model.FormatDate(tasks[0].DueDate))

	assert.Equal(t, "7", tasks[1].ID)
	assert.Nil(t, tasks[1].DueDate)
	assert.Equal(t, model.Priority(""), tasks[1].Priority)
}

func TestListTasksEmptyEnvelope(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.Respond(http.MethodGet, "/todo", `{}`)
	c := newClient(t, srv, nil)
	ctx := context.Background()
	_, _, err := c.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
