package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/meetdesk/internal/identity"
	"github.com/hitoshi/meetdesk/internal/middleware"
	"github.com/hitoshi/meetdesk/internal/model"
)

// IdentityHandler は閲覧者Identityの取得・設定・破棄のHTTPハンドラー。
// IdentityはIdentityMiddlewareがリクエストコンテキストに注入したものを使う。
type IdentityHandler struct {
	cookie middleware.CookieConfig
}

// NewIdentityHandler はIdentityHandlerを生成する。
func NewIdentityHandler(cookie middleware.CookieConfig) *IdentityHandler {
	return &IdentityHandler{cookie: cookie}
}

// GetIdentity は現在のIdentityを返す。
// GET /api/identity
func (h *IdentityHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityResponse{Email: viewerFrom(r).Email})
}

// SetIdentity はIdentityを設定してCookieを発行する。
// PUT /api/identity
func (h *IdentityHandler) SetIdentity(w http.ResponseWriter, r *http.Request) {
	ic := identity.FromContext(r.Context())
	if ic == nil {
		handleServiceError(w, errors.New("identity context not found"))
		return
	}

	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if err := ic.Set(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.SetIdentityCookie(w, ic.Key(), h.cookie)
	writeJSON(w, http.StatusOK, identityResponse{Email: ic.Get().Email})
}

// ClearIdentity はIdentityを破棄してCookieを削除する。
// DELETE /api/identity
func (h *IdentityHandler) ClearIdentity(w http.ResponseWriter, r *http.Request) {
	if ic := identity.FromContext(r.Context()); ic != nil {
		if err := ic.Clear(r.Context()); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	middleware.ClearIdentityCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}
