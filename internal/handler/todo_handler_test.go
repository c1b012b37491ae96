package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/deskhub/internal/middleware"
	"github.com/hitoshi/deskhub/internal/model"
)

// --- モック定義 ---

type mockTodoService struct {
	listFn   func(ctx context.Context, userID string) ([]*model.Todo, error)
	createFn func(ctx context.Context, userID, title string) (*model.Todo, error)
	updateFn func(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error)
	deleteFn func(ctx context.Context, id, userID string) error
}

func (m *mockTodoService) List(ctx context.Context, userID string) ([]*model.Todo, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTodoService) Create(ctx context.Context, userID, title string) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, title)
	}
	return nil, nil
}

func (m *mockTodoService) Update(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, userID, patch)
	}
	return nil, nil
}

func (m *mockTodoService) Delete(ctx context.Context, id, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

// compile-time interface check
var _ TodoServiceInterface = (*mockTodoService)(nil)

// authedRequest は認証済みユーザーIDをコンテキストに注入したリクエストを生成する。
func authedRequest(method, target, body, userID string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// --- テスト ---

func TestTodoHandler_List_ReturnsTodos(t *testing.T) {
	svc := &mockTodoService{
		listFn: func(ctx context.Context, userID string) ([]*model.Todo, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []*model.Todo{
				{ID: "todo-2", UserID: userID, Title: "later", CreatedAt: time.Now()},
				{ID: "todo-1", UserID: userID, Title: "earlier", CreatedAt: time.Now().Add(-time.Hour)},
			}, nil
		},
	}
	h := NewTodoHandler(svc, nil)

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/todos", "", "user-1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var todos []*model.Todo
	if err := json.NewDecoder(w.Body).Decode(&todos); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(todos) != 2 {
		t.Errorf("len(todos) = %d, want 2", len(todos))
	}
}

// 一覧が空の場合はnullではなく空配列を返すこと
func TestTodoHandler_List_Empty_ReturnsEmptyArray(t *testing.T) {
	h := NewTodoHandler(&mockTodoService{}, nil)

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/todos", "", "user-1"))

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}

func TestTodoHandler_List_NoUserID_Returns401(t *testing.T) {
	h := NewTodoHandler(&mockTodoService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestTodoHandler_Create_Returns201(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID, title string) (*model.Todo, error) {
			return &model.Todo{ID: "new-todo", UserID: userID, Title: title, CreatedAt: time.Now()}, nil
		},
	}
	h := NewTodoHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/todos", `{"title":"牛乳を買う"}`, "user-1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var todo model.Todo
	if err := json.NewDecoder(w.Body).Decode(&todo); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if todo.Title != "牛乳を買う" {
		t.Errorf("title = %q, want %q", todo.Title, "牛乳を買う")
	}
}

func TestTodoHandler_Create_EmptyTitle_Returns400(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID, title string) (*model.Todo, error) {
			return nil, model.NewEmptyFieldError("タイトル")
		},
	}
	h := NewTodoHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/todos", `{"title":""}`, "user-1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := decodeErrorBody(t, w.Result()).Code; got != model.ErrCodeEmptyField {
		t.Errorf("code = %q, want %q", got, model.ErrCodeEmptyField)
	}
}

func TestTodoHandler_Update_PatchesCompleted(t *testing.T) {
	var gotPatch model.TodoPatch
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error) {
			gotPatch = patch
			return &model.Todo{ID: id, UserID: userID, Title: "牛乳を買う", Completed: true}, nil
		},
	}
	h := NewTodoHandler(svc, nil)

	req := withURLParam(authedRequest(http.MethodPatch, "/api/todos/todo-1", `{"completed":true}`, "user-1"), "id", "todo-1")
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPatch.Title != nil {
		t.Error("title should not be patched")
	}
	if gotPatch.Completed == nil || !*gotPatch.Completed {
		t.Error("completed should be patched to true")
	}
}

func TestTodoHandler_Update_NotFound_Returns404(t *testing.T) {
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error) {
			return nil, model.NewTodoNotFoundError(id)
		},
	}
	h := NewTodoHandler(svc, nil)

	req := withURLParam(authedRequest(http.MethodPatch, "/api/todos/missing", `{"completed":true}`, "user-1"), "id", "missing")
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTodoHandler_Delete_Returns204(t *testing.T) {
	var deletedID string
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, id, userID string) error {
			deletedID = id
			return nil
		},
	}
	h := NewTodoHandler(svc, nil)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/todos/todo-1", "", "user-1"), "id", "todo-1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deletedID != "todo-1" {
		t.Errorf("deleted ID = %q, want %q", deletedID, "todo-1")
	}
}

func TestTodoHandler_Delete_NotFound_Returns404(t *testing.T) {
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, id, userID string) error {
			return model.NewTodoNotFoundError(id)
		},
	}
	h := NewTodoHandler(svc, nil)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/todos/gone", "", "user-1"), "id", "gone")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
