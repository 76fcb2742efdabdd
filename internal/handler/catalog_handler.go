package handler

import (
	"net/http"

	"github.com/hitoshi/meetdesk/internal/config"
)

// CatalogHandler は作成フォーム用の選択肢一覧を返すHTTPハンドラー。
type CatalogHandler struct {
	catalog config.Catalog
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(catalog config.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetCatalog はカタログを返す。
// GET /api/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Platforms:    nonNil(h.catalog.Platforms),
		Organizers:   nonNil(h.catalog.Organizers),
		Participants: nonNil(h.catalog.Participants),
		AIFeatures:   nonNil(h.catalog.AIFeatures),
	})
}

// catalogResponse はカタログのAPIレスポンス。
type catalogResponse struct {
	Platforms    []string `json:"platforms"`
	Organizers   []string `json:"organizers"`
	Participants []string `json:"participants"`
	AIFeatures   []string `json:"ai_features"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
