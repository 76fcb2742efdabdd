package projection

import (
	"time"

	"github.com/hitoshi/meetdesk/internal/model"
)

// Classification は会議の時間的状態と閲覧者ロールの組。
type Classification struct {
	Temporal model.TemporalState
	Role     model.Role
}

// Classify は基準時刻nowと閲覧者identityに対する会議の分類を返す。
func Classify(m model.Meeting, now time.Time, identity model.Identity) Classification {
	return Classification{
		Temporal: TemporalOf(m, now),
		Role:     RoleOf(m, identity),
	}
}

// TemporalOf は会議の時間的状態を返す。
//
//   - Past: endTime < now（endTime == now はまだPastではない）
//   - Ongoing: Pastでなく startTime <= now
//   - Upcoming: Pastでなく startTime > now
//
// endTimeがstartTimeより前の不正な会議は、Pastになるまで常にOngoingとする。
// パースできない時刻は「判定不能」として扱い、終了時刻が不明な会議はPastにならず、
// 開始時刻が不明な会議はUpcomingになる。
// オフセットのない時刻はnowのタイムゾーンで解釈する。
func TemporalOf(m model.Meeting, now time.Time) model.TemporalState {
	start, startOK := ParseTimeIn(m.StartTime, now.Location())
	end, endOK := ParseTimeIn(m.EndTime, now.Location())

	if endOK && end.Before(now) {
		return model.TemporalPast
	}
	if startOK && endOK && end.Before(start) {
		return model.TemporalOngoing
	}
	if startOK && !start.After(now) {
		return model.TemporalOngoing
	}
	return model.TemporalUpcoming
}

// IsPast は会議がPastかどうかを返す。
func IsPast(m model.Meeting, now time.Time) bool {
	return TemporalOf(m, now) == model.TemporalPast
}

// RoleOf は閲覧者と会議の関係を返す。主催者の判定が参加者より優先される。
func RoleOf(m model.Meeting, identity model.Identity) model.Role {
	if identity.Matches(m.Organizer) {
		return model.RoleOrganizer
	}
	for _, a := range m.Attendees {
		if identity.Matches(a) {
			return model.RoleAttendee
		}
	}
	return model.RoleNone
}
