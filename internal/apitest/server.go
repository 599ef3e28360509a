// Package apitest runs an in-process ProTodo backend for tests. It speaks the
// same wire contract as the real server: cookie sessions, /login, /register,
// /logout and /todo.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/existflow/protodo/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "protodo_session"

// Todo is a task as the backend stores and returns it.
type Todo struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_Date"`
	Completed   bool   `json:"completed"`
}

type account struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte
}

type fault struct {
	status int
	body   string
}

// Server is the fake backend. The exported fields tweak its responses.
type Server struct {
	*httptest.Server

	// OmitUser makes /login answer 200 without a user object.
	OmitUser bool

	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]string // token -> email
	todos    map[string][]Todo // email -> todos
	nextID   int
	faults   map[string]fault
	raw      map[string]string
	calls    map[string]int
}

// New starts a fake backend; it is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: make(map[string]account),
		sessions: make(map[string]string),
		todos:    make(map[string][]Todo),
		faults:   make(map[string]fault),
		raw:      make(map[string]string),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLog)
	e.Use(middleware.Recover())
	e.Use(s.injectFaults)

	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)
	e.POST("/logout", s.handleLogout)

	protected := e.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/todo", s.handleListTodos)
	protected.POST("/todo", s.handleCreateTodo)

	return e
}

func routeKey(method, path string) string {
	return method + " " + path
}

// AddUser registers an account directly, bypassing /register.
func (s *Server) AddUser(email, password, firstName, lastName string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(email)] = account{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
}

// AddTodo seeds a task for the given account and returns its id.
func (s *Server) AddTodo(email string, td Todo) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	td.ID = s.nextID
	key := strings.ToLower(email)
	s.todos[key] = append(s.todos[key], td)
	return td.ID
}

// Todos returns a copy of the account's stored tasks.
func (s *Server) Todos(email string) []Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Todo(nil), s.todos[strings.ToLower(email)]...)
}

// Fail makes every request to method+path answer with status and body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[routeKey(method, path)] = fault{status: status, body: body}
}

// Respond makes successful requests to method+path return body verbatim.
func (s *Server) Respond(method, path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[routeKey(method, path)] = body
}

// Calls reports how many requests method+path received.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, path)]
}

// SessionCount reports the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		s.mu.Lock()
		s.calls[routeKey(req.Method, req.URL.Path)]++
		s.mu.Unlock()

		err := next(c)

		logger.Debug("apitest request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", c.Response().Status),
			logger.F("duration", time.Since(start).String()))
		return err
	}
}

func (s *Server) injectFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c.Request().Method, c.Request().URL.Path)
		s.mu.Lock()
		f, ok := s.faults[key]
		s.mu.Unlock()
		if ok {
			return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
		}
		return next(c)
	}
}

// authMiddleware resolves the session cookie to an account email.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "authentication required"})
		}

		s.mu.Lock()
		email, ok := s.sessions[cookie.Value]
		s.mu.Unlock()
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "session expired"})
		}

		c.Set("email", email)
		return next(c)
	}
}

func (s *Server) rawBody(c echo.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.raw[routeKey(c.Request().Method, c.Request().URL.Path)]
	return body, ok
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
