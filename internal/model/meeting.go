// Package model はドメインモデルを定義する。
package model

// Meeting は外部ストアから取得した会議レコードを正規化したものを表す。
// 正規化後は全フィールドがデフォルト値で埋められており、
// 「フィールドが無い」と「フィールドが空」を区別しない。
type Meeting struct {
	ID          string
	Title       string
	Platform    string
	StartTime   string // ISO 8601。パース可否は検証しない
	EndTime     string // ISO 8601。パース可否は検証しない
	Description string
	Attendees   []string // nilにならない
	Organizer   string
	MeetingURL  string
	Project     string
	AIEnabled   bool
	Cancelled   bool

	UseSummaryFeature   bool
	SummarySent         bool
	SummaryTranscriptID string

	Transcript   string
	MeetingNotes string

	SlideText     string
	SlideFileName string
}

// RawRecord は外部ストアから取得した未正規化のレコード。
// Fieldsの型は保証されない（文字列・配列・真偽値・数値・欠損が混在する）。
type RawRecord struct {
	ID     string
	Fields map[string]any
}

// TemporalState は基準時刻に対する会議の時間的状態を表す。
type TemporalState string

const (
	// TemporalUpcoming は開始前の会議。
	TemporalUpcoming TemporalState = "upcoming"
	// TemporalOngoing は開始済みで終了していない会議。
	TemporalOngoing TemporalState = "ongoing"
	// TemporalPast は終了時刻が基準時刻より前の会議。
	TemporalPast TemporalState = "past"
)

// Role は閲覧者と会議の関係を表す。
// 優先順位は Organizer > Attendee > None。
type Role string

const (
	// RoleOrganizer は閲覧者が主催者であることを示す。
	RoleOrganizer Role = "organizer"
	// RoleAttendee は閲覧者が参加者であることを示す。
	RoleAttendee Role = "attendee"
	// RoleNone は閲覧者が会議に関係しないことを示す。
	RoleNone Role = "none"
)

// DayHighlight はカレンダーの日セルの強調種別を表す。
type DayHighlight string

const (
	// HighlightOrganizer はその日に閲覧者が主催する会議があることを示す。
	HighlightOrganizer DayHighlight = "organizer"
	// HighlightAttendee はその日に閲覧者が参加する会議があることを示す。
	HighlightAttendee DayHighlight = "attendee"
	// HighlightNone は強調なし。
	HighlightNone DayHighlight = "none"
)

// FetchState は会議コレクション取得の状態を表す。
type FetchState string

const (
	FetchLoading FetchState = "loading"
	FetchSuccess FetchState = "success"
	FetchError   FetchState = "error"
)
