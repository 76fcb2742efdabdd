package projection

import (
	"fmt"
	"slices"
	"time"

	"github.com/hitoshi/meetdesk/internal/model"
)

// LocalDate はタイムゾーン適用後の暦日を表す。
// ゼロ値は「日付なし」を意味し、開始時刻をパースできない会議のバケットキーになる。
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf は時刻tをlocで見たときの暦日を返す。locがnilの場合はtime.Localを使う。
func DateOf(t time.Time, loc *time.Location) LocalDate {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// ParseLocalDate は "2006-01-02" 形式の文字列をLocalDateに変換する。
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}, nil
}

// IsZero は日付なしかどうかを返す。
func (d LocalDate) IsZero() bool {
	return d == LocalDate{}
}

// String は "2006-01-02" 形式の文字列を返す。
func (d LocalDate) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare は日付の前後を比較する。
func (d LocalDate) Compare(o LocalDate) int {
	switch {
	case d.Year != o.Year:
		return compareInt(d.Year, o.Year)
	case d.Month != o.Month:
		return compareInt(int(d.Month), int(o.Month))
	default:
		return compareInt(d.Day, o.Day)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DayIndex は開始時刻の暦日ごとに会議をまとめた索引。
// 1回の描画で使うスナップショットから毎回作り直す。
type DayIndex struct {
	loc     *time.Location
	buckets map[LocalDate][]model.Meeting
}

// IndexByDay は会議を開始時刻の暦日（locで見た日付）でバケット化する。
// UTC日付ではなくloc上の日付を使うため、23:50と翌00:10の会議は別のバケットになる。
// バケット内の順序は入力順を維持する。開始時刻をパースできない会議は
// ゼロ値のLocalDateをキーとするバケットに入る。オフセットのない時刻はlocの時刻とみなす。
func IndexByDay(meetings []model.Meeting, loc *time.Location) DayIndex {
	if loc == nil {
		loc = time.Local
	}
	idx := DayIndex{
		loc:     loc,
		buckets: make(map[LocalDate][]model.Meeting),
	}
	for _, m := range meetings {
		var key LocalDate
		if start, ok := ParseTimeIn(m.StartTime, loc); ok {
			key = DateOf(start, loc)
		}
		idx.buckets[key] = append(idx.buckets[key], m)
	}
	return idx
}

// Location は索引作成に使ったタイムゾーンを返す。
func (idx DayIndex) Location() *time.Location {
	return idx.loc
}

// Lookup は指定日の会議を返す。該当がなければ空スライスを返す。
func (idx DayIndex) Lookup(date LocalDate) []model.Meeting {
	if ms, ok := idx.buckets[date]; ok {
		return ms
	}
	return []model.Meeting{}
}

// Dates は会議が存在する日付を昇順で返す。日付なしバケットは含まない。
func (idx DayIndex) Dates() []LocalDate {
	dates := make([]LocalDate, 0, len(idx.buckets))
	for d := range idx.buckets {
		if !d.IsZero() {
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, LocalDate.Compare)
	return dates
}

// Highlight は指定日の日セルの強調種別を返す。
func (idx DayIndex) Highlight(date LocalDate, identity model.Identity) model.DayHighlight {
	return HighlightOf(idx.Lookup(date), identity)
}

// HighlightOf は会議群に対するロールのOR集約を返す。
// 1件でも主催者の会議があればOrganizer、なければ参加者の会議があればAttendee。
func HighlightOf(meetings []model.Meeting, identity model.Identity) model.DayHighlight {
	highlight := model.HighlightNone
	for _, m := range meetings {
		switch RoleOf(m, identity) {
		case model.RoleOrganizer:
			return model.HighlightOrganizer
		case model.RoleAttendee:
			highlight = model.HighlightAttendee
		}
	}
	return highlight
}
