package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/deskhub/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// ListByUserIDAndType はユーザーの指定種別タスク一覧をcreated_at昇順で返す。
// 表示順が作成の古い順であることに一覧画面が依存している。
func (r *PostgresTaskRepo) ListByUserIDAndType(ctx context.Context, userID string, taskType model.TaskType) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, label, completed, task_type, created_at, updated_at
		 FROM tasks WHERE user_id = $1 AND task_type = $2 ORDER BY created_at ASC`,
		userID, string(taskType),
	)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task := &model.Task{}
		if err := rows.Scan(&task.ID, &task.UserID, &task.Label, &task.Completed, &task.TaskType, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("タスク行の読み取りに失敗しました: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タスク一覧の走査に失敗しました: %w", err)
	}
	return tasks, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, label, completed, task_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		task.ID, task.UserID, task.Label, task.Completed, string(task.TaskType), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はタスクを部分更新して更新後の行を返す。行が存在しない場合はnilを返す。
// nilフィールドはCOALESCEにより既存の値を維持する。
func (r *PostgresTaskRepo) Update(ctx context.Context, id, userID string, patch model.TaskPatch) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks
		 SET label = COALESCE($3, label), completed = COALESCE($4, completed), updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, label, completed, task_type, created_at, updated_at`,
		id, userID, patch.Label, patch.Completed,
	).Scan(&task.ID, &task.UserID, &task.Label, &task.Completed, &task.TaskType, &task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	return task, nil
}

// Delete は指定IDのタスクを削除する。行が存在しない場合はfalseを返す。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
