// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/deskhub/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TodoRepository はToDoデータの永続化インターフェース。
// すべての操作は所有者のuser_idでスコープされる。
type TodoRepository interface {
	// ListByUserID はユーザーのToDo一覧をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// Create はToDoを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// Update はToDoを部分更新して更新後の行を返す。
	// 行が存在しない場合はnilを返す。
	Update(ctx context.Context, id, userID string, patch model.TodoPatch) (*model.Todo, error)

	// Delete は指定IDのToDoを削除する。行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作は所有者のuser_idでスコープされる。
type TaskRepository interface {
	// ListByUserIDAndType はユーザーの指定種別タスク一覧をcreated_at昇順で返す。
	ListByUserIDAndType(ctx context.Context, userID string, taskType model.TaskType) ([]*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクを部分更新して更新後の行を返す。
	// 行が存在しない場合はnilを返す。
	Update(ctx context.Context, id, userID string, patch model.TaskPatch) (*model.Task, error)

	// Delete は指定IDのタスクを削除する。行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// QuickLinkRepository はクイックリンクデータの永続化インターフェース。
// 更新操作は提供しない（削除して再作成する）。
type QuickLinkRepository interface {
	// TableExists はquick_linksテーブルの存在を確認する。
	// 挿入前の事前チェックとして使用し、「テーブル未作成」と「書き込み拒否」を区別する。
	TableExists(ctx context.Context) (bool, error)

	// ListByUserID はユーザーのクイックリンク一覧をcreated_at昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.QuickLink, error)

	// Create はクイックリンクを作成する。
	Create(ctx context.Context, link *model.QuickLink) error

	// FindByID は指定IDのクイックリンクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.QuickLink, error)

	// Delete は指定IDのクイックリンクを削除する。行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}
