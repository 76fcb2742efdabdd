package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetdesk/internal/identity"
	"github.com/hitoshi/meetdesk/internal/meeting"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/webhook"
)

// maxPageSize はクエリで指定できるページサイズの上限。
const maxPageSize = 100

// MeetingServiceInterface は会議ハンドラーが必要とするサービスインターフェース。
type MeetingServiceInterface interface {
	List(ctx context.Context, viewer model.Identity, q meeting.ListQuery) (*meeting.ListResult, error)
	Detail(ctx context.Context, viewer model.Identity, id string, now time.Time) (*meeting.DetailResult, error)
	Calendar(ctx context.Context, viewer model.Identity, q meeting.CalendarQuery) (*meeting.CalendarResult, error)
	Visible(ctx context.Context, viewer model.Identity, now time.Time) ([]model.Meeting, error)
	Location() *time.Location

	Create(ctx context.Context, in meeting.CreateInput) (*webhook.Relay, error)
	Cancel(ctx context.Context, meetingID string) (*webhook.Relay, error)
	UploadAudio(ctx context.Context, viewer model.Identity, meetingID string, file webhook.File) (*webhook.Relay, error)
	UploadSlides(ctx context.Context, viewer model.Identity, meetingID string, file webhook.File) (*webhook.Relay, error)
}

// MeetingHandler は会議のHTTPハンドラー。
type MeetingHandler struct {
	service       MeetingServiceInterface
	uploadMaxSize int64
}

// NewMeetingHandler はMeetingHandlerを生成する。
func NewMeetingHandler(service MeetingServiceInterface, uploadMaxSize int64) *MeetingHandler {
	return &MeetingHandler{
		service:       service,
		uploadMaxSize: uploadMaxSize,
	}
}

// viewerFrom はリクエストコンテキストから閲覧者のIdentityを取り出す。
func viewerFrom(r *http.Request) model.Identity {
	return identity.FromContext(r.Context()).Get()
}

// ListMeetings は閲覧者に関係する会議の一覧を返す。
// GET /api/meetings?page=&page_size=
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	page, err := parseIntQuery(r, "page", 1)
	if err != nil || page < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQueryError("page"))
		return
	}
	pageSize, err := parseIntQuery(r, "page_size", 0)
	if err != nil || pageSize < 0 || pageSize > maxPageSize {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQueryError("page_size"))
		return
	}

	result, err := h.service.List(r.Context(), viewerFrom(r), meeting.ListQuery{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meetingListResponse{
		Items:          toMeetingResponses(result.Items),
		Page:           result.Page,
		PageSize:       result.PageSize,
		TotalPages:     result.TotalPages,
		Total:          result.Total,
		FirstPastIndex: result.FirstPastIndex,
	})
}

// GetMeeting は会議の詳細を返す。
// GET /api/meetings/{id}
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), viewerFrom(r), chi.URLParam(r, "id"), time.Time{})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingDetailResponse(detail))
}

// CreateMeeting は会議作成Webhookへ中継する。
// POST /api/meetings
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	relay, err := h.service.Create(r.Context(), meeting.CreateInput{
		Title:       req.Title,
		Platform:    req.Platform,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Attendees:   req.Attendees,
		Organizer:   req.Organizer,
		SendEmail:   req.SendEmail,
	})
	if err != nil {
		handleRelayError(w, "Failed to create meeting", err)
		return
	}
	writeRelay(w, relay)
}

// CancelMeeting は会議キャンセルWebhookへ中継する。
// POST /api/meetings/{id}/cancel
func (h *MeetingHandler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	relay, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleRelayError(w, "Failed to cancel meeting", err)
		return
	}
	writeRelay(w, relay)
}

// UploadAudio は録音ファイルをWebhookへ中継する。
// POST /api/meetings/{id}/audio (multipart/form-data, field "file")
func (h *MeetingHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "Failed to upload audio", h.service.UploadAudio)
}

// UploadSlides はスライドファイルをWebhookへ中継する。
// POST /api/meetings/{id}/slides (multipart/form-data, field "file")
func (h *MeetingHandler) UploadSlides(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "Failed to upload slides", h.service.UploadSlides)
}

type uploadFunc func(ctx context.Context, viewer model.Identity, meetingID string, file webhook.File) (*webhook.Relay, error)

func (h *MeetingHandler) upload(w http.ResponseWriter, r *http.Request, failMessage string, fn uploadFunc) {
	if h.uploadMaxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	}

	var file webhook.File
	f, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		file = webhook.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     f,
		}
	case isTooLarge(err):
		writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge,
			model.NewValidationError("ファイルサイズが上限を超えています"))
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// ファイル未指定はサービス層でUPLOAD_FILE_MISSINGとして扱う
	default:
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("マルチパートフォームの解析に失敗しました"))
		return
	}

	relay, err := fn(r.Context(), viewerFrom(r), chi.URLParam(r, "id"), file)
	if err != nil {
		handleRelayError(w, failMessage, err)
		return
	}
	writeRelay(w, relay)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// parseIntQuery はクエリパラメータを整数として読み取る。未指定の場合はdefを返す。
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
