// Package task は月次・日次タスクのドメインロジックを提供する。
package task

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

// Service はタスクに関するビジネスロジックを提供する。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.TextSanitizerService
	policy    retry.Policy
}

// NewService はServiceを生成する。
func NewService(taskRepo repository.TaskRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		policy:    retry.CreatePolicy(),
	}
}

// List はユーザーの指定種別タスク一覧を作成の古い順で返す。
// 種別が不正な場合はINVALID_TASK_TYPEエラーを返す。
func (s *Service) List(ctx context.Context, userID string, taskType model.TaskType) ([]*model.Task, error) {
	if !taskType.Valid() {
		return nil, model.NewInvalidTaskTypeError(string(taskType))
	}

	tasks, err := s.taskRepo.ListByUserIDAndType(ctx, userID, taskType)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create はタスクを作成する。IDと作成日時はサーバー側で付与する。
// 一時的な接続障害はリトライポリシーに従って再試行する。
func (s *Service) Create(ctx context.Context, userID, label string, taskType model.TaskType) (*model.Task, error) {
	label = s.sanitizer.SanitizeText(label)
	if label == "" {
		return nil, model.NewEmptyFieldError("ラベル")
	}
	if !taskType.Valid() {
		return nil, model.NewInvalidTaskTypeError(string(taskType))
	}

	now := time.Now()
	task := &model.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Label:     label,
		Completed: false,
		TaskType:  taskType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return retry.Do(ctx, s.policy, model.IsRetryable, func(ctx context.Context) (*model.Task, error) {
		if err := s.taskRepo.Create(ctx, task); err != nil {
			return nil, model.ClassifyStorageError(err)
		}
		return task, nil
	})
}

// Update はタスクを部分更新して更新後の状態を返す。
// 対象が存在しない場合はTASK_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, id, userID string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Label != nil {
		sanitized := s.sanitizer.SanitizeText(*patch.Label)
		if sanitized == "" {
			return nil, model.NewEmptyFieldError("ラベル")
		}
		patch.Label = &sanitized
	}

	task, err := s.taskRepo.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, model.ClassifyStorageError(err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	return task, nil
}

// Toggle は完了状態を指定値に更新する。
func (s *Service) Toggle(ctx context.Context, id, userID string, completed bool) (*model.Task, error) {
	return s.Update(ctx, id, userID, model.TaskPatch{Completed: &completed})
}

// Delete は指定IDのタスクを削除する。
// 既に存在しない場合はTASK_NOT_FOUNDエラーを返す（呼び出し側は削除済みとして扱える）。
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.taskRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError(id)
	}
	return nil
}
