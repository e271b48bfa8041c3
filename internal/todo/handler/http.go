// Package handler exposes todo CRUD over HTTP. Every route is mounted behind
// the auth gate; the owning principal comes from the request context.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"todoapp/internal/httpapi"
	"todoapp/internal/server/middleware"
	"todoapp/internal/todo/domain"
	"todoapp/internal/todo/repository"
)

var validate = validator.New()

// TodoHandler serves /todos.
type TodoHandler struct {
	todos repository.Repository
}

// NewTodoHandler returns a TodoHandler backed by the given repository.
func NewTodoHandler(todos repository.Repository) *TodoHandler {
	return &TodoHandler{todos: todos}
}

type todoRequest struct {
	Title        string  `json:"title" validate:"required"`
	Completed    bool    `json:"completed"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time         *string `json:"time"`
	Reminder     bool    `json:"reminder"`
	ReminderTime *string `json:"remindertime"`
}

type todoResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Completed    bool    `json:"completed"`
	Date         string  `json:"date"`
	Time         *string `json:"time,omitempty"`
	Reminder     bool    `json:"reminder"`
	ReminderTime *string `json:"remindertime,omitempty"`
}

func toResponse(t *domain.Todo) todoResponse {
	return todoResponse{
		ID:           t.ID,
		Title:        t.Title,
		Completed:    t.Completed,
		Date:         t.Date,
		Time:         t.Time,
		Reminder:     t.Reminder,
		ReminderTime: t.ReminderTime,
	}
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
		return
	}
	todos, err := h.todos.ListByUser(r.Context(), email)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toResponse(t))
	}
	httpapi.WriteJSON(w, http.StatusOK, out)
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
		return
	}
	var req todoRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	now := time.Now().UTC()
	t := &domain.Todo{
		ID:           uuid.New().String(),
		UserEmail:    email,
		Title:        req.Title,
		Completed:    req.Completed,
		Date:         req.Date,
		Time:         req.Time,
		Reminder:     req.Reminder,
		ReminderTime: req.ReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.todos.Create(r.Context(), t); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toResponse(t))
}

// Update handles PUT /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
		return
	}
	id := chi.URLParam(r, "id")
	var req todoRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	existing, err := h.todos.GetByID(r.Context(), email, id)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if existing == nil {
		httpapi.WriteError(w, httpapi.NotFound("todo not found"))
		return
	}
	existing.Title = req.Title
	existing.Completed = req.Completed
	existing.Date = req.Date
	existing.Time = req.Time
	existing.Reminder = req.Reminder
	existing.ReminderTime = req.ReminderTime
	existing.UpdatedAt = time.Now().UTC()
	if err := h.todos.Update(r.Context(), existing); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toResponse(existing))
}

// Delete handles DELETE /todos/{id}. Idempotent.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.todos.Delete(r.Context(), email, id); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func decode(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return httpapi.BadRequest("request body must be valid JSON")
	}
	if err := validate.Struct(req); err != nil {
		return httpapi.BadRequest("missing or invalid fields")
	}
	return nil
}
