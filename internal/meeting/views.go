package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/projection"
)

// MeetingView は分類済みの会議。
type MeetingView struct {
	Meeting  model.Meeting
	Temporal model.TemporalState
	Role     model.Role
}

func classifyAll(meetings []model.Meeting, now time.Time, viewer model.Identity) []MeetingView {
	views := make([]MeetingView, 0, len(meetings))
	for _, m := range meetings {
		c := projection.Classify(m, now, viewer)
		views = append(views, MeetingView{Meeting: m, Temporal: c.Temporal, Role: c.Role})
	}
	return views
}

// ListQuery は一覧の取得条件。
type ListQuery struct {
	Page     int
	PageSize int
	Now      time.Time
}

// ListResult は一覧の1ページ分。
type ListResult struct {
	Items      []MeetingView
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	// FirstPastIndex はこのページ内で最初のPast会議の位置。
	// 全体で最初のPast会議がこのページに無い場合は-1。
	FirstPastIndex int
}

// List は閲覧者に関係する会議を表示順に並べてページ分割する。
func (s *Service) List(ctx context.Context, viewer model.Identity, q ListQuery) (*ListResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.resolveNow(q.Now)
	size := q.PageSize
	if size <= 0 {
		size = s.cfg.PageSize
	}
	page := q.Page
	if page == 0 {
		page = 1
	}

	ordered := projection.Order(projection.FilterForViewer(snap.Meetings, viewer), now)
	p := projection.Paginate(ordered, size, page)

	firstPast := -1
	if global := projection.FirstPastIndex(ordered, now); global >= 0 {
		start := (page - 1) * size
		if global >= start && global < start+len(p.Items) {
			firstPast = global - start
		}
	}

	return &ListResult{
		Items:          classifyAll(p.Items, now, viewer),
		Page:           page,
		PageSize:       size,
		TotalPages:     p.TotalPages,
		Total:          len(ordered),
		FirstPastIndex: firstPast,
	}, nil
}

// Visible は閲覧者に関係する会議を表示順で全件返す。
func (s *Service) Visible(ctx context.Context, viewer model.Identity, now time.Time) ([]model.Meeting, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return projection.Order(projection.FilterForViewer(snap.Meetings, viewer), s.resolveNow(now)), nil
}

// CalendarQuery はカレンダー表示の条件。
type CalendarQuery struct {
	Year     int
	Month    time.Month
	Selected projection.LocalDate
	Location *time.Location
	Now      time.Time
}

// DayCell はカレンダーの日セル。
type DayCell struct {
	Date       projection.LocalDate
	Count      int
	Highlight  model.DayHighlight
	IsToday    bool
	IsSelected bool
}

// CalendarResult は月表示と選択日の会議。
type CalendarResult struct {
	Year             int
	Month            time.Month
	Location         *time.Location
	Days             []DayCell
	Selected         projection.LocalDate
	SelectedMeetings []MeetingView
	// Undated は開始時刻をパースできずどの日にも表示されない会議の数。
	Undated int
}

// Calendar は指定月の日セルと選択日の会議を返す。絞り込みは行わない。
// 年月が未指定の場合は選択日、選択日も未指定の場合は今日の月を表示する。
func (s *Service) Calendar(ctx context.Context, viewer model.Identity, q CalendarQuery) (*CalendarResult, error) {
	loc := q.Location
	if loc == nil {
		loc = s.cfg.Location
	}
	now := s.resolveNow(q.Now).In(loc)
	today := projection.DateOf(now, loc)

	selected := q.Selected
	if selected.IsZero() {
		selected = today
	}
	year, month := q.Year, q.Month
	if year == 0 || month == 0 {
		year, month = selected.Year, selected.Month
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := projection.IndexByDay(snap.Meetings, loc)

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := make([]DayCell, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		date := projection.LocalDate{Year: d.Year(), Month: d.Month(), Day: d.Day()}
		days = append(days, DayCell{
			Date:       date,
			Count:      len(idx.Lookup(date)),
			Highlight:  idx.Highlight(date, viewer),
			IsToday:    date == today,
			IsSelected: date == selected,
		})
	}

	return &CalendarResult{
		Year:             year,
		Month:            month,
		Location:         loc,
		Days:             days,
		Selected:         selected,
		SelectedMeetings: classifyAll(projection.Order(idx.Lookup(selected), now), now, viewer),
		Undated:          len(idx.Lookup(projection.LocalDate{})),
	}, nil
}

// AttendeeView は詳細画面の参加者1名。
type AttendeeView struct {
	Email       string
	IsViewer    bool
	IsOrganizer bool
}

// DetailResult は会議の詳細。
type DetailResult struct {
	View            MeetingView
	Attendees       []AttendeeView
	NotesHTML       string
	TranscriptHTML  string
	SlideTextHTML   string
	CanUploadSlides bool
	CanUploadAudio  bool
}

// Detail は会議の詳細を返す。存在しない場合はMEETING_NOT_FOUNDを返す。
// アップロード可否は主催者のみtrueになる。表示上の制御であり認可ではない。
func (s *Service) Detail(ctx context.Context, viewer model.Identity, id string, now time.Time) (*DetailResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := findMeeting(snap, id)
	if !ok {
		return nil, model.NewMeetingNotFoundError(id)
	}

	now = s.resolveNow(now)
	c := projection.Classify(m, now, viewer)

	attendees := make([]AttendeeView, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		attendees = append(attendees, AttendeeView{
			Email:       a,
			IsViewer:    viewer.Matches(a),
			IsOrganizer: strings.EqualFold(strings.TrimSpace(a), m.Organizer),
		})
	}

	isOrganizer := c.Role == model.RoleOrganizer
	return &DetailResult{
		View:            MeetingView{Meeting: m, Temporal: c.Temporal, Role: c.Role},
		Attendees:       attendees,
		NotesHTML:       s.renderer.Render(m.MeetingNotes),
		TranscriptHTML:  s.renderer.Render(m.Transcript),
		SlideTextHTML:   s.renderer.Render(m.SlideText),
		CanUploadSlides: isOrganizer,
		CanUploadAudio:  isOrganizer,
	}, nil
}
