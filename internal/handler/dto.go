package handler

import (
	"github.com/hitoshi/meetdesk/internal/meeting"
)

// meetingResponse は会議1件のAPIレスポンス。
type meetingResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Platform          string   `json:"platform"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Description       string   `json:"description"`
	Attendees         []string `json:"attendees"`
	Organizer         string   `json:"organizer"`
	MeetingURL        string   `json:"meeting_url"`
	Project           string   `json:"project"`
	AIEnabled         bool     `json:"ai_enabled"`
	Cancelled         bool     `json:"cancelled"`
	UseSummaryFeature bool     `json:"use_summary_feature"`
	SummarySent       bool     `json:"summary_sent"`
	SlideFileName     string   `json:"slide_file_name"`
	Temporal          string   `json:"temporal"`
	Role              string   `json:"role"`
}

func toMeetingResponse(v meeting.MeetingView) meetingResponse {
	m := v.Meeting
	return meetingResponse{
		ID:                m.ID,
		Title:             m.Title,
		Platform:          m.Platform,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		Description:       m.Description,
		Attendees:         m.Attendees,
		Organizer:         m.Organizer,
		MeetingURL:        m.MeetingURL,
		Project:           m.Project,
		AIEnabled:         m.AIEnabled,
		Cancelled:         m.Cancelled,
		UseSummaryFeature: m.UseSummaryFeature,
		SummarySent:       m.SummarySent,
		SlideFileName:     m.SlideFileName,
		Temporal:          string(v.Temporal),
		Role:              string(v.Role),
	}
}

func toMeetingResponses(views []meeting.MeetingView) []meetingResponse {
	out := make([]meetingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toMeetingResponse(v))
	}
	return out
}

// meetingListResponse は会議一覧のAPIレスポンス。
type meetingListResponse struct {
	Items          []meetingResponse `json:"items"`
	Page           int               `json:"page"`
	PageSize       int               `json:"page_size"`
	TotalPages     int               `json:"total_pages"`
	Total          int               `json:"total"`
	FirstPastIndex int               `json:"first_past_index"`
}

// attendeeResponse は詳細画面の参加者。
type attendeeResponse struct {
	Email       string `json:"email"`
	IsViewer    bool   `json:"is_viewer"`
	IsOrganizer bool   `json:"is_organizer"`
}

// meetingDetailResponse は会議詳細のAPIレスポンス。
type meetingDetailResponse struct {
	Meeting         meetingResponse    `json:"meeting"`
	Attendees       []attendeeResponse `json:"attendees"`
	NotesHTML       string             `json:"notes_html"`
	TranscriptHTML  string             `json:"transcript_html"`
	SlideTextHTML   string             `json:"slide_text_html"`
	CanUploadSlides bool               `json:"can_upload_slides"`
	CanUploadAudio  bool               `json:"can_upload_audio"`
}

func toMeetingDetailResponse(d *meeting.DetailResult) meetingDetailResponse {
	attendees := make([]attendeeResponse, 0, len(d.Attendees))
	for _, a := range d.Attendees {
		attendees = append(attendees, attendeeResponse{
			Email:       a.Email,
			IsViewer:    a.IsViewer,
			IsOrganizer: a.IsOrganizer,
		})
	}
	return meetingDetailResponse{
		Meeting:         toMeetingResponse(d.View),
		Attendees:       attendees,
		NotesHTML:       d.NotesHTML,
		TranscriptHTML:  d.TranscriptHTML,
		SlideTextHTML:   d.SlideTextHTML,
		CanUploadSlides: d.CanUploadSlides,
		CanUploadAudio:  d.CanUploadAudio,
	}
}

// createMeetingRequest は会議作成リクエストのボディ。
type createMeetingRequest struct {
	Title       string   `json:"title"`
	Platform    string   `json:"platform"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Attendees   []string `json:"attendees"`
	Organizer   string   `json:"organizer"`
	SendEmail   bool     `json:"send_email"`
}

// dayCellResponse はカレンダーの日セル。
type dayCellResponse struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Highlight  string `json:"highlight"`
	IsToday    bool   `json:"is_today"`
	IsSelected bool   `json:"is_selected"`
}

// calendarResponse はカレンダーのAPIレスポンス。
type calendarResponse struct {
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	Timezone         string            `json:"timezone"`
	Days             []dayCellResponse `json:"days"`
	Selected         string            `json:"selected"`
	SelectedMeetings []meetingResponse `json:"selected_meetings"`
	Undated          int               `json:"undated"`
}

func toCalendarResponse(c *meeting.CalendarResult) calendarResponse {
	days := make([]dayCellResponse, 0, len(c.Days))
	for _, d := range c.Days {
		days = append(days, dayCellResponse{
			Date:       d.Date.String(),
			Count:      d.Count,
			Highlight:  string(d.Highlight),
			IsToday:    d.IsToday,
			IsSelected: d.IsSelected,
		})
	}
	return calendarResponse{
		Year:             c.Year,
		Month:            int(c.Month),
		Timezone:         c.Location.String(),
		Days:             days,
		Selected:         c.Selected.String(),
		SelectedMeetings: toMeetingResponses(c.SelectedMeetings),
		Undated:          c.Undated,
	}
}

// identityRequest はIdentity設定リクエストのボディ。
type identityRequest struct {
	Email string `json:"email"`
}

// identityResponse は現在のIdentity。未設定の場合はemailが空。
type identityResponse struct {
	Email string `json:"email"`
}
