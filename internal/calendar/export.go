// Package calendar は会議をiCalendar(.ics)形式で書き出す。
package calendar

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/projection"
)

const (
	productID    = "-//meetdesk//meetings//JA"
	calendarName = "Meetings"
	// uidDomain はUIDの右辺。ストアのレコードIDと組み合わせて一意にする。
	uidDomain = "meetdesk"
)

// Export は会議をVCALENDARにエンコードする。
// 開始時刻をパースできない会議は出力しない。終了時刻をパースできない場合はDTENDを省略する。
func Export(meetings []model.Meeting, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", calendarName)

	for _, m := range meetings {
		event, ok := toEvent(m, now)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func toEvent(m model.Meeting, now time.Time) (*ical.Event, bool) {
	start, ok := projection.ParseTimeIn(m.StartTime, now.Location())
	if !ok {
		return nil, false
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, m.ID+"@"+uidDomain)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	if end, ok := projection.ParseTimeIn(m.EndTime, now.Location()); ok && !end.Before(start) {
		event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	}

	event.Props.SetText(ical.PropSummary, m.Title)
	if desc := describe(m); desc != "" {
		event.Props.SetText(ical.PropDescription, desc)
	}
	if m.MeetingURL != "" {
		prop := ical.NewProp(ical.PropURL)
		prop.Value = m.MeetingURL
		event.Props.Set(prop)
		event.Props.SetText(ical.PropLocation, m.MeetingURL)
	} else if m.Platform != "" {
		event.Props.SetText(ical.PropLocation, m.Platform)
	}

	if m.Organizer != "" {
		prop := ical.NewProp(ical.PropOrganizer)
		prop.Value = "mailto:" + m.Organizer
		event.Props.Set(prop)
	}
	for _, a := range m.Attendees {
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + a
		event.Props.Add(prop)
	}

	if m.Cancelled {
		event.Props.SetText(ical.PropStatus, "CANCELLED")
	} else {
		event.Props.SetText(ical.PropStatus, "CONFIRMED")
	}
	if m.Project != "" {
		event.Props.SetText(ical.PropCategories, m.Project)
	}

	return event, true
}

// describe は説明文にプラットフォーム名を添える。
func describe(m model.Meeting) string {
	var parts []string
	if d := strings.TrimSpace(m.Description); d != "" {
		parts = append(parts, d)
	}
	if m.Platform != "" {
		parts = append(parts, "Platform: "+m.Platform)
	}
	return strings.Join(parts, "\n\n")
}
