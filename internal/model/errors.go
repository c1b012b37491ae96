package model

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string `json:"code"`     // エラーコード
	Message  string `json:"message"`  // エラーメッセージ
	Category string `json:"category"` // カテゴリ: auth, validation, record, schema, network, system
	Action   string `json:"action"`   // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeOAuthFailed        = "OAUTH_FAILED"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeEmptyField         = "EMPTY_FIELD"
	ErrCodeInvalidTaskType    = "INVALID_TASK_TYPE"
	ErrCodePersistenceFailed  = "PERSISTENCE_FAILED"
	ErrCodeTableMissing       = "TABLE_MISSING"
	ErrCodeTodoNotFound       = "TODO_NOT_FOUND"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeQuickLinkNotFound  = "QUICK_LINK_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeNetworkError       = "NETWORK_ERROR"
)

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewOAuthFailedError はOAuth認証失敗エラーを生成する。
func NewOAuthFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeOAuthFailed,
		Message:  fmt.Sprintf("外部認証に失敗しました: %s", reason),
		Category: "auth",
		Action:   "サインイン画面から再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証されていません。",
		Category: "auth",
		Action:   "サインインしてください。",
	}
}

// NewSessionExpiredError はセッション失効エラーを生成する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "セッションの有効期限が切れています。",
		Category: "auth",
		Action:   "再度サインインしてください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "サインインするか、別のメールアドレスを使用してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式を入力してください。",
	}
}

// NewEmptyFieldError は必須フィールド未入力エラーを生成する。
func NewEmptyFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeEmptyField,
		Message:  fmt.Sprintf("%s が入力されていません。", field),
		Category: "validation",
		Action:   "必須項目を入力してください。",
	}
}

// NewInvalidTaskTypeError は無効なタスク種別エラーを生成する。
func NewInvalidTaskTypeError(taskType string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTaskType,
		Message:  fmt.Sprintf("無効なタスク種別です: %s", taskType),
		Category: "validation",
		Action:   "task_typeには monthly または daily を指定してください。",
	}
}

// NewPersistenceFailedError は永続化失敗エラーを生成する。
func NewPersistenceFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePersistenceFailed,
		Message:  fmt.Sprintf("データの保存に失敗しました: %s", reason),
		Category: "record",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewTableMissingError はテーブル未作成エラーを生成する。
// 書き込み拒否と区別してユーザー向け診断に使用する。
func NewTableMissingError(table string) *APIError {
	return &APIError{
		Code:     ErrCodeTableMissing,
		Message:  fmt.Sprintf("テーブルが存在しません: %s", table),
		Category: "schema",
		Action:   "データベースのマイグレーションを実行してください。",
	}
}

// NewTodoNotFoundError はToDo未検出エラーを生成する。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたToDoが見つかりません: %s", todoID),
		Category: "record",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "record",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewQuickLinkNotFoundError はクイックリンク未検出エラーを生成する。
func NewQuickLinkNotFoundError(linkID string) *APIError {
	return &APIError{
		Code:     ErrCodeQuickLinkNotFound,
		Message:  fmt.Sprintf("指定されたクイックリンクが見つかりません: %s", linkID),
		Category: "record",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewNetworkError は一時的な接続障害エラーを生成する。
// createオペレーションのリトライ対象となる唯一のエラー種別。
func NewNetworkError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeNetworkError,
		Message:  fmt.Sprintf("ネットワークエラーが発生しました: %s", reason),
		Category: "network",
		Action:   "接続状態を確認して再度お試しください。",
	}
}

// IsNotFound はエラーがレコード未検出を表すかを判定する。
// 削除操作の呼び出し側が「既に存在しない」として扱うために使用する。
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case ErrCodeTodoNotFound, ErrCodeTaskNotFound, ErrCodeQuickLinkNotFound, ErrCodeUserNotFound:
		return true
	}
	return false
}

// IsRetryable はエラーがリトライ対象の一時的な接続障害かを判定する。
// 検証エラーや認可エラーはリトライしない。
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrCodeNetworkError
	}
	return false
}

// ClassifyStorageError はストレージ層のエラーを分類する。
// 接続断・タイムアウトのような一時的な障害はNETWORK_ERRORとしてリトライ対象になり、
// それ以外はPERSISTENCE_FAILEDとして即座に返す。既に分類済みのAPIErrorはそのまま返す。
func ClassifyStorageError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewNetworkError(netErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewNetworkError("接続がタイムアウトしました")
	}
	return NewPersistenceFailedError(err.Error())
}
