package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/deskhub/internal/link"
	"github.com/hitoshi/deskhub/internal/metrics"
	"github.com/hitoshi/deskhub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Production        bool
	Logger            *slog.Logger

	// メトリクス（nil可）
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// レコードサービス
	TodoService      TodoServiceInterface
	TaskService      TaskServiceInterface
	QuickLinkService QuickLinkServiceInterface
	FaviconProxy     link.FaviconProxyService
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//	→ （/api/* のみ）Session → RateLimit(General) → CSRF
//
// 認証ルート（/auth/*）とヘルスチェック、メトリクスはセッションチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(deps.Production))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Collector)
	todoHandler := NewTodoHandler(deps.TodoService, deps.Collector)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Collector)
	linkHandler := NewQuickLinkHandler(deps.QuickLinkService, deps.FaviconProxy, deps.Collector)
	resourceHandler := NewResourceHandler([]string{"1", "2", "3"})

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（OAuthフロー・サインイン）
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signup", authHandler.SignUp)
		r.Post("/session", authHandler.CreateSession)
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		writeLimit := deps.RateLimiter.WriteMiddleware()

		// ToDo管理
		r.Route("/api/todos", func(r chi.Router) {
			r.Get("/", todoHandler.List)
			r.With(writeLimit).Post("/", todoHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(writeLimit).Patch("/", todoHandler.Update)
				r.With(writeLimit).Delete("/", todoHandler.Delete)
			})
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.With(writeLimit).Post("/", taskHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(writeLimit).Patch("/", taskHandler.Update)
				r.With(writeLimit).Delete("/", taskHandler.Delete)
			})
		})

		// クイックリンク管理
		r.Route("/api/quick-links", func(r chi.Router) {
			r.Get("/", linkHandler.List)
			r.With(writeLimit).Post("/", linkHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(writeLimit).Delete("/", linkHandler.Delete)
				r.Get("/favicon", linkHandler.Favicon)
			})
		})

		// エラーハンドリング検証用のデモリソース
		r.Get("/api/resource/{id}", resourceHandler.Get)
	})

	r.NotFound(middleware.NewNotFoundHandler())

	return r
}
