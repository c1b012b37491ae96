package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/deskhub/internal/metrics"
	"github.com/hitoshi/deskhub/internal/middleware"
	"github.com/hitoshi/deskhub/internal/model"
)

// TodoServiceInterface はToDoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Todo, error)
	Create(ctx context.Context, userID, title string) (*model.Todo, error)
	Update(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id, userID string) error
}

// TodoHandler はToDo関連のHTTPハンドラー。
type TodoHandler struct {
	service   TodoServiceInterface
	collector metrics.MetricsCollector
}

// NewTodoHandler はTodoHandlerを生成する。collectorはnil可。
func NewTodoHandler(service TodoServiceInterface, collector metrics.MetricsCollector) *TodoHandler {
	return &TodoHandler{service: service, collector: collector}
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// List はユーザーのToDo一覧を返す。
// GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if todos == nil {
		todos = []*model.Todo{}
	}

	writeJSON(w, http.StatusOK, todos)
}

// Create はToDoを作成する。
// POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	todo, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordWrite("todo")
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Update はToDoを部分更新する。
// PATCH /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	todo, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, model.TodoPatch{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordWrite("todo")
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete はToDoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordDelete("todo")
	}
	w.WriteHeader(http.StatusNoContent)
}
