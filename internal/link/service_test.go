package link

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/deskhub/internal/model"
	"github.com/hitoshi/deskhub/internal/repository"
	"github.com/hitoshi/deskhub/internal/security"
)

// --- モック定義 ---

type mockQuickLinkRepo struct {
	tableExistsFn  func(ctx context.Context) (bool, error)
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.QuickLink, error)
	createFn       func(ctx context.Context, link *model.QuickLink) error
	findByIDFn     func(ctx context.Context, id, userID string) (*model.QuickLink, error)
	deleteFn       func(ctx context.Context, id, userID string) (bool, error)
}

func (m *mockQuickLinkRepo) TableExists(ctx context.Context) (bool, error) {
	if m.tableExistsFn != nil {
		return m.tableExistsFn(ctx)
	}
	return true, nil
}

func (m *mockQuickLinkRepo) ListByUserID(ctx context.Context, userID string) ([]*model.QuickLink, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockQuickLinkRepo) Create(ctx context.Context, link *model.QuickLink) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockQuickLinkRepo) FindByID(ctx context.Context, id, userID string) (*model.QuickLink, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockQuickLinkRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return false, nil
}

// compile-time interface check
var _ repository.QuickLinkRepository = (*mockQuickLinkRepo)(nil)

// transientError はリトライ対象の一時的な接続障害を模擬するnet.Error実装。
type transientError struct{}

func (transientError) Error() string   { return "connection refused" }
func (transientError) Timeout() bool   { return true }
func (transientError) Temporary() bool { return true }

// --- テスト ---

// スキームの無い入力にhttpsが補完されることを検証
func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"scheme prepended", "google.com", "https://google.com", ""},
		{"scheme preserved", "http://example.com/page", "http://example.com/page", ""},
		{"whitespace trimmed", "  github.com/hitoshi  ", "https://github.com/hitoshi", ""},
		{"path and query kept", "example.com/a?b=c", "https://example.com/a?b=c", ""},
		{"empty input", "", model.ErrCodeEmptyField, model.ErrCodeEmptyField},
		{"blank input", "   ", model.ErrCodeEmptyField, model.ErrCodeEmptyField},
		{"disallowed scheme", "ftp://example.com", model.ErrCodeInvalidURL, model.ErrCodeInvalidURL},
		{"no host", "https://", model.ErrCodeInvalidURL, model.ErrCodeInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("NormalizeURL(%q) expected error", tt.input)
				}
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Code != tt.wantErr {
					t.Errorf("error code = %q, want %q", apiErr.Code, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeURL(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// 国際化ドメイン名がpunycodeに正規化されることを検証
func TestNormalizeURL_IDN(t *testing.T) {
	got, err := NormalizeURL("日本語.jp")
	if err != nil {
		t.Fatalf("NormalizeURL() error = %v", err)
	}
	want := "https://xn--wgv71a119e.jp"
	if got != want {
		t.Errorf("NormalizeURL() = %q, want %q", got, want)
	}
}

// 保存済みURLからfavicon URLが導出されることを検証
func TestFaviconURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https url", "https://google.com", "https://www.google.com/s2/favicons?domain=google.com&sz=64"},
		{"with path", "https://github.com/hitoshi/deskhub", "https://www.google.com/s2/favicons?domain=github.com&sz=64"},
		{"unparseable falls back", "%%%", "https://www.google.com/s2/favicons?domain=example.com&sz=64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FaviconURL(tt.input); got != tt.want {
				t.Errorf("FaviconURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// 作成時にタイトルのサニタイズとURL正規化が行われることを検証
func TestCreate_NormalizesInput(t *testing.T) {
	ctx := context.Background()

	var created *model.QuickLink
	repo := &mockQuickLinkRepo{
		createFn: func(ctx context.Context, link *model.QuickLink) error {
			created = link
			return nil
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	link, err := svc.Create(ctx, "user-1", "<b>Search</b>", "google.com")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if link.Title != "Search" {
		t.Errorf("title = %q, want %q", link.Title, "Search")
	}
	if link.URL != "https://google.com" {
		t.Errorf("url = %q, want %q", link.URL, "https://google.com")
	}
	if link.Favicon != "https://www.google.com/s2/favicons?domain=google.com&sz=64" {
		t.Errorf("favicon = %q", link.Favicon)
	}
	if created == nil {
		t.Fatal("expected link to be persisted")
	}
	if link.ID == "" || link.UserID != "user-1" {
		t.Errorf("unexpected link identity: %+v", link)
	}
}

// 空タイトルでEMPTY_FIELDが返ることを検証
func TestCreate_EmptyTitle_ReturnsEmptyField(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockQuickLinkRepo{}, security.NewTextSanitizer())

	_, err := svc.Create(ctx, "user-1", "   ", "google.com")
	if err == nil {
		t.Fatal("expected error for empty title")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEmptyField {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeEmptyField)
	}
}

// テーブル未作成時にTABLE_MISSINGが返り、リトライされないことを検証
func TestCreate_TableMissing_ReturnsSchemaError(t *testing.T) {
	ctx := context.Background()

	calls := 0
	repo := &mockQuickLinkRepo{
		tableExistsFn: func(ctx context.Context) (bool, error) {
			calls++
			return false, nil
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	_, err := svc.Create(ctx, "user-1", "Docs", "example.com")
	if err == nil {
		t.Fatal("expected error when table is missing")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeTableMissing {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeTableMissing)
	}
	if calls != 1 {
		t.Errorf("table check called %d times, want 1 (schema errors are not retried)", calls)
	}
}

// 一時的な接続障害がリトライされ、最終的に成功することを検証
func TestCreate_TransientFailure_RetriesAndSucceeds(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	repo := &mockQuickLinkRepo{
		createFn: func(ctx context.Context, link *model.QuickLink) error {
			attempts++
			if attempts == 1 {
				return transientError{}
			}
			return nil
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	link, err := svc.Create(ctx, "user-1", "Docs", "example.com")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if link == nil {
		t.Fatal("expected non-nil link")
	}
	if attempts != 2 {
		t.Errorf("create attempts = %d, want 2", attempts)
	}
}

// 恒常的な書き込み失敗はリトライされずPERSISTENCE_FAILEDになることを検証
func TestCreate_PermanentFailure_NotRetried(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	repo := &mockQuickLinkRepo{
		createFn: func(ctx context.Context, link *model.QuickLink) error {
			attempts++
			return errors.New("permission denied for table quick_links")
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	_, err := svc.Create(ctx, "user-1", "Docs", "example.com")
	if err == nil {
		t.Fatal("expected error for permanent failure")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodePersistenceFailed {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodePersistenceFailed)
	}
	if attempts != 1 {
		t.Errorf("create attempts = %d, want 1", attempts)
	}
}

// 存在しないリンクの削除でQUICK_LINK_NOT_FOUNDが返ることを検証
func TestDelete_NotFound_ReturnsNotFoundError(t *testing.T) {
	ctx := context.Background()

	repo := &mockQuickLinkRepo{
		deleteFn: func(ctx context.Context, id, userID string) (bool, error) {
			return false, nil
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	err := svc.Delete(ctx, "missing-id", "user-1")
	if err == nil {
		t.Fatal("expected error for missing link")
	}
	if !model.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

// 削除成功時にエラーが返らないことを検証
func TestDelete_Existing_Succeeds(t *testing.T) {
	ctx := context.Background()

	repo := &mockQuickLinkRepo{
		deleteFn: func(ctx context.Context, id, userID string) (bool, error) {
			return true, nil
		},
	}

	svc := NewService(repo, security.NewTextSanitizer())

	if err := svc.Delete(ctx, "link-1", "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
