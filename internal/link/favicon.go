package link

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/deskhub/internal/security"
)

// FaviconProxyService はクイックリンクのfaviconを代理取得するインターフェース。
// ブラウザから外部のfaviconサービスへ直接アクセスさせず、サーバー経由で配信する。
type FaviconProxyService interface {
	// Fetch は指定URLからfavicon画像を取得する。
	// 取得失敗時はnilデータと空MIMEを返す（エラーは返さない）。
	Fetch(ctx context.Context, faviconURL string) (data []byte, mimeType string, err error)
}

// FaviconProxy はFaviconProxyServiceの実装。
// SSRF防止機能付きHTTPクライアントで取得し、サイズと種別を検証する。
type FaviconProxy struct {
	ssrfGuard security.SSRFGuardService
	timeout   time.Duration
	maxSize   int64
}

// NewFaviconProxy はFaviconProxyの新しいインスタンスを生成する。
func NewFaviconProxy(ssrfGuard security.SSRFGuardService, timeout time.Duration, maxSize int64) *FaviconProxy {
	return &FaviconProxy{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Fetch は指定URLからfavicon画像を取得する。
// 取得失敗時はnilデータと空MIMEを返す（表示側はデフォルトアイコンで代替する）。
func (f *FaviconProxy) Fetch(ctx context.Context, faviconURL string) ([]byte, string, error) {
	if faviconURL == "" {
		return nil, "", nil
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(faviconURL); err != nil {
			slog.Warn("favicon取得: SSRFブロック", "url", faviconURL, "error", err)
			return nil, "", nil
		}
	}

	client := f.httpClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, faviconURL, nil)
	if err != nil {
		slog.Warn("favicon取得: リクエスト作成失敗", "url", faviconURL, "error", err)
		return nil, "", nil
	}
	req.Header.Set("User-Agent", "Deskhub/1.0 Dashboard")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("favicon取得: HTTPリクエスト失敗", "url", faviconURL, "error", err)
		return nil, "", nil
	}
	defer resp.Body.Close()

	// 2xx以外はfavicon取得失敗として扱う
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("favicon取得: HTTPステータス異常", "url", faviconURL, "status", resp.StatusCode)
		return nil, "", nil
	}

	// レスポンスボディを読み込み（最大サイズまで）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		slog.Warn("favicon取得: レスポンス読み取り失敗", "url", faviconURL, "error", err)
		return nil, "", nil
	}

	if int64(len(body)) > f.maxSize {
		slog.Warn("favicon取得: サイズ超過", "url", faviconURL, "size", len(body))
		return nil, "", nil
	}

	contentType := resp.Header.Get("Content-Type")
	mimeType := extractMimeType(contentType)

	// 画像でない場合はnilを返す
	if !isImageMime(mimeType) {
		slog.Warn("favicon取得: 画像以外のContent-Type", "url", faviconURL, "contentType", contentType)
		return nil, "", nil
	}

	return body, mimeType, nil
}

// httpClient は取得に使用するHTTPクライアントを返す。
func (f *FaviconProxy) httpClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.timeout, f.maxSize)
	}
	return &http.Client{Timeout: f.timeout}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// compile-time interface check
var _ FaviconProxyService = (*FaviconProxy)(nil)
