package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/deskhub/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したToDoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// ListByUserID はユーザーのToDo一覧をcreated_at降順で返す。
// 表示順が作成の新しい順であることに一覧画面が依存している。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, completed, created_at
		 FROM todos WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ToDo一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var todos []*model.Todo
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Completed, &todo.CreatedAt); err != nil {
			return nil, fmt.Errorf("ToDo行の読み取りに失敗しました: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ToDo一覧の走査に失敗しました: %w", err)
	}
	return todos, nil
}

// Create はToDoを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, title, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		todo.ID, todo.UserID, todo.Title, todo.Completed, todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ToDoの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はToDoを部分更新して更新後の行を返す。行が存在しない場合はnilを返す。
// nilフィールドはCOALESCEにより既存の値を維持する。
func (r *PostgresTodoRepo) Update(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET title = COALESCE($3, title), completed = COALESCE($4, completed)
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, completed, created_at`,
		id, userID, patch.Title, patch.Completed,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Completed, &todo.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ToDoの更新に失敗しました: %w", err)
	}

	return todo, nil
}

// Delete は指定IDのToDoを削除する。行が存在しない場合はfalseを返す。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("ToDoの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
