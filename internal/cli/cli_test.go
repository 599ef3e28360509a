package cli

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/existflow/protodo/internal/apitest"
	"github.com/existflow/protodo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("ann@example.com", "secret123", "Ann", "Lee")
	srv.AddTodo("ann@example.com", apitest.Todo{Title: "Buy milk", Priority: "low", DueDate: "2024-01-20"})

	t.Setenv("HOME", t.TempDir())
	t.Setenv("PROTODO_API_URL", srv.URL)
	t.Setenv("PROTODO_LOG_CONSOLE", "false")
	return srv
}

// run executes one command line the way main does. Flag variables outlive a
// single execution, so they are put back to their defaults first.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	loginEmail = ""
	addDescription, addPriority, addDue = "", string(model.DefaultPriority), ""
	listQuery, listFilter = "", "all"

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsNeedSession(t *testing.T) {
	setup(t)

	for _, args := range [][]string{{"list"}, {"stats"}, {"whoami"}, {"add", "x"}} {
		_, err := run(t, "", args...)
		assert.ErrorIs(t, err, errNotLoggedIn, args)
	}

	out, err := run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginValidation(t *testing.T) {
	srv := setup(t)

	out, err := run(t, "123\n", "login", "--email", "not-an-email")
	require.EqualError(t, err, "invalid input")
	assert.Contains(t, out, "❌ Email is invalid")
	assert.Contains(t, out, "❌ Password must be at least 6 characters")
	assert.Equal(t, 0, srv.Calls(http.MethodPost, "/login"))

	_, err = run(t, "wrong-password\n", "login", "-e", "ann@example.com")
	require.EqualError(t, err, "Invalid email or password")
}

func TestSessionLifecycle(t *testing.T) {
	srv := setup(t)

	out, err := run(t, "ann@example.com\nsecret123\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Logged in as Ann Lee")

	// every command is a fresh process: the session comes back from disk
	out, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "👤 Ann Lee")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, srv.URL)

	out, err = run(t, "", "add", "Write", "report", "-p", "high", "-d", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Added: "Write report" (high, due 2024-02-01) [2]`)

	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "(2 pending)")

	out, err = run(t, "", "list", "-q", "MILK")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Write report")

	out, err = run(t, "", "list", "--filter", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks match.")

	out, err = run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "📊 Total: 2")
	assert.Contains(t, out, "Active: 2")
	assert.Contains(t, out, "Completed: 0")

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Logged out successfully.")
	assert.Equal(t, 0, srv.SessionCount())

	_, err = run(t, "", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestAddRejectsBadInput(t *testing.T) {
	srv := setup(t)
	_, err := run(t, "secret123\n", "login", "-e", "ann@example.com")
	require.NoError(t, err)

	_, err = run(t, "", "add", "   ")
	require.EqualError(t, err, "invalid input")

	_, err = run(t, "", "add", "Report", "-p", "urgent")
	require.Error(t, err)

	_, err = run(t, "", "add", "Report", "-d", "tomorrow")
	require.Error(t, err)

	assert.Equal(t, 0, srv.Calls(http.MethodPost, "/todo"))
}

func TestSignup(t *testing.T) {
	srv := setup(t)

	out, err := run(t, "Bob\nRay\nbob@example.com\nlongenough\nlongenough\n", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Account created!")
	assert.Equal(t, 1, srv.Calls(http.MethodPost, "/register"))

	_, err = run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn, "signup does not log in")

	out, err = run(t, "longenough\n", "login", "-e", "bob@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Bob Ray")
}
