package client

import (
	"context"
	"net/http"

	"github.com/hitoshi/deskhub/internal/model"
)

// レコード系の型付きラッパー。削除は呼び出し側から見て冪等であり、
// 対象が既に存在しない場合もエラーにしない。

type createTodoRequest struct {
	Title string `json:"title"`
}

type patchRequest struct {
	Title     *string `json:"title,omitempty"`
	Label     *string `json:"label,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

type createTaskRequest struct {
	Label    string `json:"label"`
	TaskType string `json:"task_type"`
}

type createQuickLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListTodos はToDo一覧を作成の新しい順で返す。
func (c *Client) ListTodos(ctx context.Context) ([]*model.Todo, error) {
	var todos []*model.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo はToDoを作成する。IDと作成日時はサーバーが付与する。
func (c *Client) CreateTodo(ctx context.Context, title string) (*model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", createTodoRequest{Title: title}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ToggleTodo は完了状態を指定値に更新する。
func (c *Client) ToggleTodo(ctx context.Context, id string, completed bool) (*model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id, patchRequest{Completed: &completed}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodoTitle はタイトルを更新する。
func (c *Client) UpdateTodoTitle(ctx context.Context, id, title string) (*model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id, patchRequest{Title: &title}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo はToDoを削除する。既に存在しない場合は成功扱いとする。
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, nil)
	if model.IsNotFound(err) {
		return nil
	}
	return err
}

// ListTasks は指定種別のタスク一覧を作成の古い順で返す。
func (c *Client) ListTasks(ctx context.Context, taskType model.TaskType) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks?type="+string(taskType), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask はタスクを作成する。
func (c *Client) CreateTask(ctx context.Context, label string, taskType model.TaskType) (*model.Task, error) {
	var task model.Task
	req := createTaskRequest{Label: label, TaskType: string(taskType)}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask は完了状態を指定値に更新する。
func (c *Client) ToggleTask(ctx context.Context, id string, completed bool) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patchRequest{Completed: &completed}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskLabel はラベルを更新する。
func (c *Client) UpdateTaskLabel(ctx context.Context, id, label string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patchRequest{Label: &label}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask はタスクを削除する。既に存在しない場合は成功扱いとする。
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
	if model.IsNotFound(err) {
		return nil
	}
	return err
}

// ListQuickLinks はクイックリンク一覧を作成順で返す。
func (c *Client) ListQuickLinks(ctx context.Context) ([]*model.QuickLink, error) {
	var links []*model.QuickLink
	if err := c.do(ctx, http.MethodGet, "/api/quick-links", nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// CreateQuickLink はクイックリンクを作成する。URLの正規化とfavicon導出はサーバーが行う。
func (c *Client) CreateQuickLink(ctx context.Context, title, rawURL string) (*model.QuickLink, error) {
	var quickLink model.QuickLink
	req := createQuickLinkRequest{Title: title, URL: rawURL}
	if err := c.do(ctx, http.MethodPost, "/api/quick-links", req, &quickLink); err != nil {
		return nil, err
	}
	return &quickLink, nil
}

// DeleteQuickLink はクイックリンクを削除する。既に存在しない場合は成功扱いとする。
// クイックリンクに更新操作は無く、変更は削除と再作成で行う。
func (c *Client) DeleteQuickLink(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/quick-links/"+id, nil, nil)
	if model.IsNotFound(err) {
		return nil
	}
	return err
}
