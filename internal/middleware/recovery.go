package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 終端エラーフォーマットで500レスポンスを返すミドルウェアを生成する。
// productionがtrueの場合、レスポンスのスタックトレースは伏せられる。
func NewRecoveryMiddleware(production bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					WriteTerminalError(w, r, http.StatusInternalServerError, fmt.Sprintf("%v", rec), production)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
