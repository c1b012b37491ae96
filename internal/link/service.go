// Package link はクイックリンクの登録・一覧・削除のドメインロジックを提供する。
package link

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/idna"

	"github.com/hitoshi/deskhub/internal/model"
	"github.com/hitoshi/deskhub/internal/repository"
	"github.com/hitoshi/deskhub/internal/retry"
	"github.com/hitoshi/deskhub/internal/security"
)

// faviconServiceURL はfavicon導出に使用する外部サービスのURLテンプレート。
const faviconServiceURL = "https://www.google.com/s2/favicons?domain=%s&sz=64"

// fallbackFaviconDomain はホスト名を導出できなかった場合の代替ドメイン。
const fallbackFaviconDomain = "example.com"

// Service はクイックリンクに関するビジネスロジックを提供する。
type Service struct {
	linkRepo  repository.QuickLinkRepository
	sanitizer security.TextSanitizerService
	policy    retry.Policy
}

// NewService はServiceを生成する。
func NewService(linkRepo repository.QuickLinkRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		linkRepo:  linkRepo,
		sanitizer: sanitizer,
		policy:    retry.CreatePolicy(),
	}
}

// List はユーザーのクイックリンク一覧を作成順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.QuickLink, error) {
	links, err := s.linkRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quick links: %w", err)
	}
	return links, nil
}

// Create はクイックリンクを検証・正規化して保存する。
// 保存前にquick_linksテーブルの存在を確認し、未作成の場合は
// 書き込み拒否と区別できるTABLE_MISSINGエラーを返す。
// 一時的な接続障害はリトライポリシーに従って再試行する。
func (s *Service) Create(ctx context.Context, userID, title, rawURL string) (*model.QuickLink, error) {
	title = s.sanitizer.SanitizeText(title)
	if title == "" {
		return nil, model.NewEmptyFieldError("タイトル")
	}

	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	link := &model.QuickLink{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		URL:       normalized,
		Favicon:   FaviconURL(normalized),
		CreatedAt: time.Now(),
	}

	return retry.Do(ctx, s.policy, model.IsRetryable, func(ctx context.Context) (*model.QuickLink, error) {
		// 事前チェック: テーブル未作成を書き込み失敗と区別する
		exists, err := s.linkRepo.TableExists(ctx)
		if err != nil {
			return nil, model.ClassifyStorageError(err)
		}
		if !exists {
			return nil, model.NewTableMissingError("quick_links")
		}

		if err := s.linkRepo.Create(ctx, link); err != nil {
			return nil, model.ClassifyStorageError(err)
		}
		return link, nil
	})
}

// Get は指定IDのクイックリンクを取得する。
func (s *Service) Get(ctx context.Context, id, userID string) (*model.QuickLink, error) {
	link, err := s.linkRepo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find quick link: %w", err)
	}
	if link == nil {
		return nil, model.NewQuickLinkNotFoundError(id)
	}
	return link, nil
}

// Delete は指定IDのクイックリンクを削除する。
// 既に存在しない場合はQUICK_LINK_NOT_FOUNDエラーを返す。
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.linkRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete quick link: %w", err)
	}
	if !deleted {
		return model.NewQuickLinkNotFoundError(id)
	}
	return nil
}

// NormalizeURL はユーザー入力のURLを正規化する。
// スキームが無い場合はhttps://を補完する。国際化ドメイン名はpunycodeに変換する。
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", model.NewEmptyFieldError("URL")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", model.NewInvalidURLError(rawURL)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", model.NewInvalidURLError(rawURL)
	}
	if parsed.Hostname() == "" {
		return "", model.NewInvalidURLError(rawURL)
	}

	// 国際化ドメイン名をASCII（punycode）に正規化する
	if ascii, err := idna.Lookup.ToASCII(parsed.Hostname()); err == nil && ascii != parsed.Hostname() {
		host := ascii
		if port := parsed.Port(); port != "" {
			host = net.JoinHostPort(ascii, port)
		}
		parsed.Host = host
	}

	return parsed.String(), nil
}

// FaviconURL は保存済みURLからfaviconのURLを導出する。
// ホスト名を導出できない場合は代替ドメインのfaviconを返す。
func FaviconURL(linkURL string) string {
	hostname := extractHostname(linkURL)
	if hostname == "" {
		hostname = extractHostname("https://" + linkURL)
	}
	if hostname == "" {
		hostname = fallbackFaviconDomain
	}
	return fmt.Sprintf(faviconServiceURL, hostname)
}

// extractHostname はURLからホスト名を取り出す。導出できない場合は空文字を返す。
func extractHostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

