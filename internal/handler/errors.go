package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/meetdesk/internal/middleware"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/webhook"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed,
		model.ErrCodeInvalidQuery,
		model.ErrCodeInvalidIdentity,
		model.ErrCodeUploadFileMissing,
		model.ErrCodeUploadFileType:
		return http.StatusBadRequest
	case model.ErrCodeUploadForbidden:
		return http.StatusForbidden
	case model.ErrCodeMeetingNotFound:
		return http.StatusNotFound
	case model.ErrCodeFetchFailed, model.ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeRelay は上流のレスポンスをステータス・Content-Type・ボディともそのまま書き込む。
func writeRelay(w http.ResponseWriter, relay *webhook.Relay) {
	if relay.ContentType != "" {
		w.Header().Set("Content-Type", relay.ContentType)
	}
	w.WriteHeader(relay.StatusCode)
	w.Write(relay.Body)
}

// handleRelayError は書き込み系のエラーを処理する。
// ドメインエラーは統一フォーマット、それ以外は500 {"error","details"}で返す。
func handleRelayError(w http.ResponseWriter, message string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}
	slog.Error(message, slog.String("error", err.Error()))
	middleware.WriteUpstreamError(w, message, err)
}
