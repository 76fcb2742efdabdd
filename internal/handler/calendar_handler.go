package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/meetdesk/internal/calendar"
	"github.com/hitoshi/meetdesk/internal/meeting"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/projection"
)

// CalendarHandler はカレンダー表示とiCalendarエクスポートのHTTPハンドラー。
type CalendarHandler struct {
	service MeetingServiceInterface
	now     func() time.Time
}

// NewCalendarHandler はCalendarHandlerを生成する。
func NewCalendarHandler(service MeetingServiceInterface) *CalendarHandler {
	return &CalendarHandler{service: service, now: time.Now}
}

// GetCalendar は月のカレンダーと選択日の会議を返す。
// GET /api/calendar?month=YYYY-MM&date=YYYY-MM-DD&tz=IANA
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var cq meeting.CalendarQuery

	loc, ok := parseTZ(w, r)
	if !ok {
		return
	}
	cq.Location = loc
	if month := q.Get("month"); month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQueryError("month"))
			return
		}
		cq.Year, cq.Month = t.Year(), t.Month()
	}
	if date := q.Get("date"); date != "" {
		d, err := projection.ParseLocalDate(date)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQueryError("date"))
			return
		}
		cq.Selected = d
	}

	result, err := h.service.Calendar(r.Context(), viewerFrom(r), cq)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(result))
}

// ExportICS は閲覧者に関係する会議をiCalendar形式で返す。
// オフセットのない時刻は表示タイムゾーン（tz指定時はそのタイムゾーン）の時刻として書き出す。
// GET /api/calendar.ics?tz=IANA
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	loc, ok := parseTZ(w, r)
	if !ok {
		return
	}
	if loc == nil {
		loc = h.service.Location()
	}
	now := h.now().In(loc)
	meetings, err := h.service.Visible(r.Context(), viewerFrom(r), now)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body, err := calendar.Export(meetings, now)
	if err != nil {
		slog.Error("failed to export calendar", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// parseTZ はtzクエリを読み込む。未指定の場合はnilを返す。
// 不正な値の場合は400を書き込みfalseを返す。
func parseTZ(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return nil, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidQueryError("tz"))
		return nil, false
	}
	return loc, true
}
