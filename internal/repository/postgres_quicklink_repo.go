package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/deskhub/internal/model"
)

// PostgresQuickLinkRepo はPostgreSQLを使用したクイックリンクリポジトリ。
type PostgresQuickLinkRepo struct {
	db *sql.DB
}

// NewPostgresQuickLinkRepo はPostgresQuickLinkRepoを生成する。
func NewPostgresQuickLinkRepo(db *sql.DB) *PostgresQuickLinkRepo {
	return &PostgresQuickLinkRepo{db: db}
}

// TableExists はquick_linksテーブルの存在を確認する。
// to_regclassはテーブルが存在しない場合にNULLを返す。
func (r *PostgresQuickLinkRepo) TableExists(ctx context.Context) (bool, error) {
	var regclass sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT to_regclass('public.quick_links')`,
	).Scan(&regclass)
	if err != nil {
		return false, fmt.Errorf("テーブル存在確認に失敗しました: %w", err)
	}
	return regclass.Valid, nil
}

// ListByUserID はユーザーのクイックリンク一覧をcreated_at昇順で返す。
func (r *PostgresQuickLinkRepo) ListByUserID(ctx context.Context, userID string) ([]*model.QuickLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, url, favicon, created_at
		 FROM quick_links WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("クイックリンク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var links []*model.QuickLink
	for rows.Next() {
		link := &model.QuickLink{}
		if err := rows.Scan(&link.ID, &link.UserID, &link.Title, &link.URL, &link.Favicon, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("クイックリンク行の読み取りに失敗しました: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("クイックリンク一覧の走査に失敗しました: %w", err)
	}
	return links, nil
}

// Create はクイックリンクを作成する。
func (r *PostgresQuickLinkRepo) Create(ctx context.Context, link *model.QuickLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quick_links (id, user_id, title, url, favicon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		link.ID, link.UserID, link.Title, link.URL, link.Favicon, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("クイックリンクの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのクイックリンクを取得する。見つからない場合はnilを返す。
func (r *PostgresQuickLinkRepo) FindByID(ctx context.Context, id, userID string) (*model.QuickLink, error) {
	link := &model.QuickLink{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, url, favicon, created_at
		 FROM quick_links WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&link.ID, &link.UserID, &link.Title, &link.URL, &link.Favicon, &link.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("クイックリンクの取得に失敗しました: %w", err)
	}

	return link, nil
}

// Delete は指定IDのクイックリンクを削除する。行が存在しない場合はfalseを返す。
func (r *PostgresQuickLinkRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM quick_links WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("クイックリンクの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ QuickLinkRepository = (*PostgresQuickLinkRepo)(nil)
