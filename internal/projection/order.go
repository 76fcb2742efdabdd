package projection

import (
	"slices"
	"time"

	"github.com/hitoshi/meetdesk/internal/model"
)

// keyedMeeting はソート用に開始時刻をパース済みで保持する。
type keyedMeeting struct {
	meeting model.Meeting
	start   time.Time
	valid   bool
}

// Order は会議を表示順に並べ替えた新しいスライスを返す。
//
// Pastでない会議（upcoming/ongoing）を開始時刻の昇順で先頭に、
// Pastの会議を開始時刻の降順でその後ろに並べる。
// 同一開始時刻は入力順を維持する（安定ソート）。
// 開始時刻をパースできない会議は各区分の末尾に入力順で置く。
// オフセットのない時刻はnowのタイムゾーンで解釈する。
func Order(meetings []model.Meeting, now time.Time) []model.Meeting {
	var upcoming, past []keyedMeeting
	for _, m := range meetings {
		start, ok := ParseTimeIn(m.StartTime, now.Location())
		k := keyedMeeting{meeting: m, start: start, valid: ok}
		if IsPast(m, now) {
			past = append(past, k)
		} else {
			upcoming = append(upcoming, k)
		}
	}

	slices.SortStableFunc(upcoming, func(a, b keyedMeeting) int {
		return compareStart(a, b, false)
	})
	slices.SortStableFunc(past, func(a, b keyedMeeting) int {
		return compareStart(a, b, true)
	})

	ordered := make([]model.Meeting, 0, len(meetings))
	for _, k := range upcoming {
		ordered = append(ordered, k.meeting)
	}
	for _, k := range past {
		ordered = append(ordered, k.meeting)
	}
	return ordered
}

// compareStart は開始時刻を比較する。無効な時刻は常に後ろに置く。
func compareStart(a, b keyedMeeting, descending bool) int {
	switch {
	case a.valid && !b.valid:
		return -1
	case !a.valid && b.valid:
		return 1
	case !a.valid && !b.valid:
		return 0
	}
	c := a.start.Compare(b.start)
	if descending {
		return -c
	}
	return c
}

// FirstPastIndex は表示順の会議列で最初にPastとなる要素の位置を返す。
// 一覧の区切り線の挿入位置として使う。Pastが無い場合は-1を返す。
func FirstPastIndex(ordered []model.Meeting, now time.Time) int {
	for i, m := range ordered {
		if IsPast(m, now) {
			return i
		}
	}
	return -1
}
