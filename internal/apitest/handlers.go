package apitest

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_Date"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request"})
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "first_name, last_name, email and password required"})
	}

	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "password must be at least 8 characters"})
	}

	key := strings.ToLower(req.Email)
	s.mu.Lock()
	_, exists := s.accounts[key]
	s.mu.Unlock()
	if exists {
		return c.JSON(http.StatusConflict, map[string]string{"message": "email already registered"})
	}

	s.AddUser(req.Email, req.Password, req.FirstName, req.LastName)

	return c.JSON(http.StatusCreated, map[string]any{
		"user": userResponse{ID: key, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request"})
	}

	key := strings.ToLower(req.Email)
	s.mu.Lock()
	acct, ok := s.accounts[key]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
	}

	token := newToken()
	s.mu.Lock()
	s.sessions[token] = key
	s.mu.Unlock()

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	if s.OmitUser {
		return c.JSON(http.StatusOK, map[string]string{"message": "logged in"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": userResponse{ID: key, Email: acct.Email, FirstName: acct.FirstName, LastName: acct.LastName},
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}

	c.SetCookie(&http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleListTodos(c echo.Context) error {
	if body, ok := s.rawBody(c); ok {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(body))
	}

	email := c.Get("email").(string)
	todos := s.Todos(email)
	if todos == nil {
		todos = []Todo{}
	}
	return c.JSON(http.StatusOK, map[string]any{"todo": todos})
}

func (s *Server) handleCreateTodo(c echo.Context) error {
	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "title is required"})
	}

	email := c.Get("email").(string)
	id := s.AddTodo(email, Todo{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})

	if body, ok := s.rawBody(c); ok {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(body))
	}

	for _, td := range s.Todos(email) {
		if td.ID == id {
			return c.JSON(http.StatusOK, map[string]any{"todo": td})
		}
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"message": "todo vanished"})
}
