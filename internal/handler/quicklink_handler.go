package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/deskhub/internal/link"
	"github.com/hitoshi/deskhub/internal/metrics"
	"github.com/hitoshi/deskhub/internal/middleware"
	"github.com/hitoshi/deskhub/internal/model"
)

// QuickLinkServiceInterface はクイックリンクハンドラーが必要とするサービスインターフェース。
type QuickLinkServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.QuickLink, error)
	Create(ctx context.Context, userID, title, rawURL string) (*model.QuickLink, error)
	Get(ctx context.Context, id, userID string) (*model.QuickLink, error)
	Delete(ctx context.Context, id, userID string) error
}

// QuickLinkHandler はクイックリンク関連のHTTPハンドラー。
type QuickLinkHandler struct {
	service      QuickLinkServiceInterface
	faviconProxy link.FaviconProxyService
	collector    metrics.MetricsCollector
}

// NewQuickLinkHandler はQuickLinkHandlerを生成する。faviconProxyとcollectorはnil可。
func NewQuickLinkHandler(service QuickLinkServiceInterface, faviconProxy link.FaviconProxyService, collector metrics.MetricsCollector) *QuickLinkHandler {
	return &QuickLinkHandler{
		service:      service,
		faviconProxy: faviconProxy,
		collector:    collector,
	}
}

type createQuickLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// List はユーザーのクイックリンク一覧を返す。
// GET /api/quick-links
func (h *QuickLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	links, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if links == nil {
		links = []*model.QuickLink{}
	}

	writeJSON(w, http.StatusOK, links)
}

// Create はクイックリンクを作成する。URLは正規化され、faviconが自動導出される。
// POST /api/quick-links
func (h *QuickLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createQuickLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	quickLink, err := h.service.Create(r.Context(), userID, req.Title, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordWrite("quick_link")
	}
	writeJSON(w, http.StatusCreated, quickLink)
}

// Delete はクイックリンクを削除する。
// DELETE /api/quick-links/{id}
func (h *QuickLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRecordDelete("quick_link")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Favicon はクイックリンクのfavicon画像をプロキシ経由で返す。
// 取得できない場合は404を返す（フロントエンドは既定アイコンを表示する）。
// GET /api/quick-links/{id}/favicon
func (h *QuickLinkHandler) Favicon(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	quickLink, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.faviconProxy == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, mimeType, err := h.faviconProxy.Fetch(r.Context(), quickLink.Favicon)
	if err != nil || data == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
