package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ResourceHandler はエラーハンドリング検証用のデモリソースハンドラー。
type ResourceHandler struct {
	knownIDs map[string]bool
}

// NewResourceHandler はResourceHandlerを生成する。
func NewResourceHandler(knownIDs []string) *ResourceHandler {
	ids := make(map[string]bool, len(knownIDs))
	for _, id := range knownIDs {
		ids[id] = true
	}
	return &ResourceHandler{knownIDs: ids}
}

type resourceResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ResourceID string `json:"resourceId"`
}

type resourceNotFoundResponse struct {
	Error      string `json:"error"`
	ResourceID string `json:"resourceId"`
}

// Get は指定IDのリソースを返す。未知のIDは404を返す。
// GET /api/resource/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.knownIDs[id] {
		writeJSON(w, http.StatusNotFound, resourceNotFoundResponse{
			Error:      "Resource not found",
			ResourceID: id,
		})
		return
	}

	writeJSON(w, http.StatusOK, resourceResponse{
		Success:    true,
		Message:    "リソースを取得しました。",
		ResourceID: id,
	})
}
