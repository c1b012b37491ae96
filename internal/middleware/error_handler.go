package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
)

// stackPlaceholder は本番環境でスタックトレースの代わりに返す文字列。
const stackPlaceholder = "stack trace hidden in production"

// ErrorDetails は終端エラーレスポンスに含めるリクエスト情報。
type ErrorDetails struct {
	Path       string            `json:"path"`
	Method     string            `json:"method"`
	Params     map[string]string `json:"params"`
	ResourceID string            `json:"resourceId,omitempty"`
}

// TerminalErrorBody は未処理エラーの終端レスポンス。
// ステータスが未設定のエラーは500として扱う。
type TerminalErrorBody struct {
	Message      string       `json:"message"`
	Stack        string       `json:"stack"`
	ErrorDetails ErrorDetails `json:"errorDetails"`
}

// NotFoundBody は未登録ルートへのアクセスに対する404レスポンス。
type NotFoundBody struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// NewNotFoundHandler は全ルート登録後のcatch-allとして使用する404ハンドラーを返す。
// リクエストされたパスをレスポンスに含める。
func NewNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(NotFoundBody{
			Error: "Not Found",
			Path:  r.URL.Path,
		})
	}
}

// WriteTerminalError は未処理エラーの終端レスポンスを書き込む。
// statusCodeが0の場合は500を使用する。本番環境ではスタックトレースを
// プレースホルダーに置き換え、内部情報の漏洩を防ぐ。
func WriteTerminalError(w http.ResponseWriter, r *http.Request, statusCode int, message string, production bool) {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	stack := string(debug.Stack())
	if production {
		stack = stackPlaceholder
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(TerminalErrorBody{
		Message: message,
		Stack:   stack,
		ErrorDetails: ErrorDetails{
			Path:       r.URL.Path,
			Method:     r.Method,
			Params:     routeParams(r),
			ResourceID: chi.URLParam(r, "id"),
		},
	})
}

// routeParams はchiのルートパラメータをmapとして取り出す。
func routeParams(r *http.Request) map[string]string {
	params := map[string]string{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
