package projection

import (
	"strings"
	"time"
)

// timeLayouts はParseTimeInが受け付けるレイアウト。
// オフセットを持たないレイアウトは呼び出し側が指定したタイムゾーンの壁時計時刻として解釈する。
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimeIn はISO 8601形式のタイムスタンプをパースする。
// オフセットのない値はlocの時刻とみなす。locがnilの場合はtime.Local。
// パースできない場合は第2戻り値にfalseを返し、panicやエラーは発生させない。
func ParseTimeIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
