// Package todo はToDoリストのドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/deskhub/internal/model"
	"github.com/hitoshi/deskhub/internal/repository"
	"github.com/hitoshi/deskhub/internal/retry"
	"github.com/hitoshi/deskhub/internal/security"
)

// Service はToDoに関するビジネスロジックを提供する。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer security.TextSanitizerService
	policy    retry.Policy
}

// NewService はServiceを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		todoRepo:  todoRepo,
		sanitizer: sanitizer,
		policy:    retry.CreatePolicy(),
	}
}

// List はユーザーのToDo一覧を作成の新しい順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Create はToDoを作成する。IDと作成日時はサーバー側で付与する。
// 一時的な接続障害はリトライポリシーに従って再試行する。
func (s *Service) Create(ctx context.Context, userID, title string) (*model.Todo, error) {
	title = s.sanitizer.SanitizeText(title)
	if title == "" {
		return nil, model.NewEmptyFieldError("タイトル")
	}

	todo := &model.Todo{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Completed: false,
		CreatedAt: time.Now(),
	}

	return retry.Do(ctx, s.policy, model.IsRetryable, func(ctx context.Context) (*model.Todo, error) {
		if err := s.todoRepo.Create(ctx, todo); err != nil {
			return nil, model.ClassifyStorageError(err)
		}
		return todo, nil
	})
}

// Update はToDoを部分更新して更新後の状態を返す。
// 対象が存在しない場合はTODO_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error) {
	if patch.Title != nil {
		sanitized := s.sanitizer.SanitizeText(*patch.Title)
		if sanitized == "" {
			return nil, model.NewEmptyFieldError("タイトル")
		}
		patch.Title = &sanitized
	}

	todo, err := s.todoRepo.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, model.ClassifyStorageError(err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(id)
	}
	return todo, nil
}

// Toggle は完了状態を指定値に更新する。
func (s *Service) Toggle(ctx context.Context, id, userID string, completed bool) (*model.Todo, error) {
	return s.Update(ctx, id, userID, model.TodoPatch{Completed: &completed})
}

// Delete は指定IDのToDoを削除する。
// 既に存在しない場合はTODO_NOT_FOUNDエラーを返す（呼び出し側は削除済みとして扱える）。
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.todoRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if !deleted {
		return model.NewTodoNotFoundError(id)
	}
	return nil
}
