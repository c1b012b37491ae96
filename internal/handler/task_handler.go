package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/deskhub/internal/metrics"
	"github.com/hitoshi/deskhub/internal/middleware"
	"github.com/hitoshi/deskhub/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	List(ctx context.Context, userID string, taskType model.TaskType) ([]*model.Task, error)
	Create(ctx context.Context, userID, label string, taskType model.TaskType) (*model.Task, error)
	Update(ctx context.Context, id, userID string, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id, userID string) error
}

// TaskHandler はタスク関連のHTTPハンドラー。
type TaskHandler struct {
	service   TaskServiceInterface
	collector metrics.MetricsCollector
}

// NewTaskHandler はTaskHandlerを生成する。collectorはnil可。
func NewTaskHandler(service TaskServiceInterface, collector metrics.MetricsCollector) *TaskHandler {
	return &TaskHandler{service: service, collector: collector}
}

type createTaskRequest struct {
	Label    string `json:"label"`
	TaskType string `json:"task_type"`
}

type updateTaskRequest struct {
	Label     *string `json:"label"`
	Completed *bool   `json:"completed"`
}

// List は指定種別のタスク一覧を返す。
// GET /api/tasks?type=monthly|daily
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskType := model.TaskType(r.URL.Query().Get("type"))
	tasks, err := h.service.List(r.Context(), userID, taskType)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Create はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	task, err := h.service.Create(r.Context(), userID, req.Label, model.TaskType(req.TaskType))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordWrite("task")
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update はタスクを部分更新する。
// PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, model.TaskPatch{
		Label:     req.Label,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordWrite("task")
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete はタスクを削除する。
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		h.collector.RecordRecordDelete("task")
	}
	w.WriteHeader(http.StatusNoContent)
}
