package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/protodo/internal/model"
)

// fieldDueDate is the one spelling of the due date sent and read on the wire.
// dueDate is only read as a fallback for backends that echo camelCase.
const fieldDueDate = "due_Date"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_Date"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// wireTask is the task shape accepted from the server. Pointer fields let the
// decoder tell "missing" from "zero".
type wireTask struct {
	ID          json.RawMessage `json:"id"`
	MongoID     json.RawMessage `json:"_id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	DueDate     *string         `json:"due_Date"`
	DueDateAlt  *string         `json:"dueDate"`
	Completed   *bool           `json:"completed"`
}

type wireUser struct {
	ID        json.RawMessage `json:"id"`
	MongoID   json.RawMessage `json:"_id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
}

func newCreateTaskRequest(d model.Draft, now time.Time) createTaskRequest {
	due := model.FormatDate(d.DueDate)
	if due == "" {
		// the backend expects a due date on every task
		due = now.UTC().Format(model.DateLayout)
	}
	return createTaskRequest{
		Title:       d.Title,
		Description: d.Description,
		Priority:    string(d.Priority),
		DueDate:     due,
	}
}

// decodeID accepts a JSON string or number.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("id must be a string or number, got %s", raw)
}

// parseWireDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps the UTC date.
func parseWireDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := time.Parse(model.DateLayout, s); err == nil {
		return &d, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("unrecognised date %q", s)
	}
	ts = ts.UTC()
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func (w wireTask) toTask(requireID bool) (model.Task, error) {
	var t model.Task

	id, err := decodeID(w.ID)
	if err != nil {
		return t, err
	}
	if id == "" {
		if id, err = decodeID(w.MongoID); err != nil {
			return t, err
		}
	}
	if id == "" && requireID {
		return t, fmt.Errorf("missing id")
	}
	t.ID = id

	if w.Title == nil || strings.TrimSpace(*w.Title) == "" {
		return t, fmt.Errorf("missing title")
	}
	t.Title = *w.Title

	if w.Description != nil {
		t.Description = *w.Description
	}

	if w.Priority != nil {
		p, err := model.ParsePriority(*w.Priority)
		if err != nil {
			return t, err
		}
		t.Priority = p
	}

	due := w.DueDate
	if due == nil {
		due = w.DueDateAlt
	}
	if due != nil {
		d, err := parseWireDate(*due)
		if err != nil {
			return t, fmt.Errorf("%s: %w", fieldDueDate, err)
		}
		t.DueDate = d
	}

	if w.Completed != nil {
		t.Completed = *w.Completed
	}
	return t, nil
}

// decodeTaskList parses a GET /todo body: {"todo": [...]}. A missing or null
// list is an empty collection; anything else malformed is a *DecodeError.
func decodeTaskList(body []byte) ([]model.Task, error) {
	var envelope struct {
		Todo []json.RawMessage `json:"todo"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{What: "task list", Reason: "body is not a JSON object with a todo array", Err: err}
	}

	tasks := make([]model.Task, 0, len(envelope.Todo))
	seen := make(map[string]int, len(envelope.Todo))
	for i, raw := range envelope.Todo {
		var w wireTask
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, &DecodeError{What: "task list", Reason: "item " + strconv.Itoa(i) + " is not an object", Err: err}
		}
		t, err := w.toTask(true)
		if err != nil {
			return nil, &DecodeError{What: "task list", Reason: "item " + strconv.Itoa(i), Err: err}
		}
		if j, dup := seen[t.ID]; dup {
			return nil, &DecodeError{
				What:   "task list",
				Reason: fmt.Sprintf("items %d and %d share id %q", j, i, t.ID),
			}
		}
		seen[t.ID] = i
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// decodeCreatedTask extracts the stored task from a POST /todo body, either
// {"todo": {...}} or the bare task. ok is false when the body carries no task.
func decodeCreatedTask(body []byte) (task model.Task, ok bool, err error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return task, false, nil
	}

	var envelope struct {
		Todo json.RawMessage `json:"todo"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return task, false, &DecodeError{What: "created task", Reason: "body is not a JSON object", Err: err}
	}

	raw := body
	if len(envelope.Todo) > 0 && !bytes.Equal(envelope.Todo, []byte("null")) {
		raw = envelope.Todo
	}

	var w wireTask
	if err := json.Unmarshal(raw, &w); err != nil {
		return task, false, &DecodeError{What: "created task", Reason: "todo is not an object", Err: err}
	}
	if w.Title == nil {
		return task, false, nil
	}
	task, err = w.toTask(false)
	if err != nil {
		return task, false, &DecodeError{What: "created task", Reason: "invalid task", Err: err}
	}
	return task, true, nil
}

// decodeLoginUser extracts the optional "user" object of a login response.
// It returns nil, nil when the body carries no user.
func decodeLoginUser(body []byte) (*model.User, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var envelope struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{What: "login response", Reason: "body is not a JSON object", Err: err}
	}
	if len(envelope.User) == 0 || bytes.Equal(envelope.User, []byte("null")) {
		return nil, nil
	}

	var w wireUser
	if err := json.Unmarshal(envelope.User, &w); err != nil {
		return nil, &DecodeError{What: "login response", Reason: "user is not an object", Err: err}
	}
	if strings.TrimSpace(w.Email) == "" {
		return nil, &DecodeError{What: "login response", Reason: "user has no email"}
	}

	id, err := decodeID(w.ID)
	if err == nil && id == "" {
		id, err = decodeID(w.MongoID)
	}
	if err != nil {
		return nil, &DecodeError{What: "login response", Reason: "user id", Err: err}
	}

	return &model.User{
		ID:        id,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
	}, nil
}

// decodeErrorMessage pulls a human message out of an error body, if any.
func decodeErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
