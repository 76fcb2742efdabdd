package projection

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/hitoshi/meetdesk/internal/model"
)

func fullRecord() model.RawRecord {
	return model.RawRecord{
		ID: "rec001",
		Fields: map[string]any{
			"Summary":               "Q2 planning",
			"Platform":              []any{"Zoom"},
			"Start":                 "2024-06-01T09:00:00Z",
			"End":                   "2024-06-01T10:00:00Z",
			"Description":           "roadmap review",
			"Participants":          []any{"a@example.com", "b@example.com"},
			"Organizer":             "owner@example.com",
			"URL":                   "https://zoom.us/j/1",
			"Project":               "Apollo",
			"AI Enabled":            true,
			"Cancelled":             true,
			"Use Summary Feature":   true,
			"Summary Sent":          true,
			"Summary Transcript ID": "tr-9",
			"Transcript":            "hello",
			"Meeting Notes":         "## Notes",
			"Slide Text":            "slide 1",
			"Slide File Name":       "deck.pptx",
		},
	}
}

func TestNormalizeRecord_AllFields(t *testing.T) {
	m := NormalizeRecord(fullRecord())

	want := model.Meeting{
		ID:                  "rec001",
		Title:               "Q2 planning",
		Platform:            "Zoom",
		StartTime:           "2024-06-01T09:00:00Z",
		EndTime:             "2024-06-01T10:00:00Z",
		Description:         "roadmap review",
		Attendees:           []string{"a@example.com", "b@example.com"},
		Organizer:           "owner@example.com",
		MeetingURL:          "https://zoom.us/j/1",
		Project:             "Apollo",
		AIEnabled:           true,
		Cancelled:           true,
		UseSummaryFeature:   true,
		SummarySent:         true,
		SummaryTranscriptID: "tr-9",
		Transcript:          "hello",
		MeetingNotes:        "## Notes",
		SlideText:           "slide 1",
		SlideFileName:       "deck.pptx",
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("NormalizeRecord() =\n%+v\nwant\n%+v", m, want)
	}
}

func TestNormalizeRecord_StrippedOptionalFieldsUseDefaults(t *testing.T) {
	full := NormalizeRecord(fullRecord())

	stripped := NormalizeRecord(model.RawRecord{
		ID: "rec001",
		Fields: map[string]any{
			"Summary":  "Q2 planning",
			"Platform": []any{"Zoom"},
			"Start":    "2024-06-01T09:00:00Z",
			"End":      "2024-06-01T10:00:00Z",
		},
	})

	want := full
	want.Description = ""
	want.Attendees = []string{}
	want.Organizer = ""
	want.MeetingURL = ""
	want.Project = ""
	want.AIEnabled = false
	want.Cancelled = false
	want.UseSummaryFeature = false
	want.SummarySent = false
	want.SummaryTranscriptID = ""
	want.Transcript = ""
	want.MeetingNotes = ""
	want.SlideText = ""
	want.SlideFileName = ""

	if !reflect.DeepEqual(stripped, want) {
		t.Errorf("stripped =\n%+v\nwant\n%+v", stripped, want)
	}
}

func TestNormalizeRecord_EmptyFields(t *testing.T) {
	m := NormalizeRecord(model.RawRecord{ID: "rec002"})

	if m.Platform != "Airtable" {
		t.Errorf("Platform = %q, want %q", m.Platform, "Airtable")
	}
	if m.Attendees == nil {
		t.Error("Attendees must not be nil")
	}
	if len(m.Attendees) != 0 {
		t.Errorf("Attendees = %v, want empty", m.Attendees)
	}
	if m.Title != "" || m.StartTime != "" || m.EndTime != "" || m.Organizer != "" {
		t.Errorf("unexpected non-empty scalar fields: %+v", m)
	}
	if m.Cancelled || m.SummarySent || m.UseSummaryFeature {
		t.Errorf("flags must default to false: %+v", m)
	}
}

func TestNormalizeRecord_ArrayWrappedScalars(t *testing.T) {
	tests := []struct {
		name     string
		platform any
		want     string
	}{
		{"1要素の配列は先頭要素", []any{"MS Teams"}, "MS Teams"},
		{"複数要素の配列も先頭要素", []any{"Zoom", "Google Meet"}, "Zoom"},
		{"空配列は既定値", []any{}, "Airtable"},
		{"任意のラベル", "Webex", "Webex"},
		{"文字列スライス", []string{"Google Meet"}, "Google Meet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NormalizeRecord(model.RawRecord{ID: "r", Fields: map[string]any{"Platform": tt.platform}})
			if m.Platform != tt.want {
				t.Errorf("Platform = %q, want %q", m.Platform, tt.want)
			}
		})
	}
}

func TestNormalizeRecord_Booleans(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"false", false},
		{"", false},
		{float64(1), true},
		{float64(0), false},
		{[]any{true}, true},
		{[]any{}, false},
		{map[string]any{"x": 1}, false},
	}

	for _, tt := range tests {
		m := NormalizeRecord(model.RawRecord{ID: "r", Fields: map[string]any{"Cancelled": tt.value}})
		if m.Cancelled != tt.want {
			t.Errorf("Cancelled(%#v) = %v, want %v", tt.value, m.Cancelled, tt.want)
		}
	}
}

func TestNormalizeRecord_Attendees(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"配列", []any{"a@example.com", " b@example.com "}, []string{"a@example.com", "b@example.com"}},
		{"空要素は除去", []any{"a@example.com", "", nil}, []string{"a@example.com"}},
		{"カンマ区切り文字列", "a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{"コラボレーター型", []any{map[string]any{"email": "c@example.com", "name": "C"}}, []string{"c@example.com"}},
		{"欠損", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NormalizeRecord(model.RawRecord{ID: "r", Fields: map[string]any{"Participants": tt.value}})
			if !reflect.DeepEqual(m.Attendees, tt.want) {
				t.Errorf("Attendees = %#v, want %#v", m.Attendees, tt.want)
			}
		})
	}
}

func TestNormalizeRecord_UnparseableTimestampPassedThrough(t *testing.T) {
	m := NormalizeRecord(model.RawRecord{ID: "r", Fields: map[string]any{
		"Start": "not-a-date",
		"End":   []any{"tomorrow-ish"},
	}})
	if m.StartTime != "not-a-date" {
		t.Errorf("StartTime = %q, want %q", m.StartTime, "not-a-date")
	}
	if m.EndTime != "tomorrow-ish" {
		t.Errorf("EndTime = %q, want %q", m.EndTime, "tomorrow-ish")
	}
}

func TestNormalizeRecord_JSONDecodedFields(t *testing.T) {
	raw := `{"Summary":"Sync","Platform":["Google Meet"],"Summary Transcript ID":42,"Organizer":{"id":"usr1","email":"o@example.com","name":"O"}}`
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	m := NormalizeRecord(model.RawRecord{ID: "r", Fields: fields})
	if m.SummaryTranscriptID != "42" {
		t.Errorf("SummaryTranscriptID = %q, want %q", m.SummaryTranscriptID, "42")
	}
	if m.Organizer != "o@example.com" {
		t.Errorf("Organizer = %q, want %q", m.Organizer, "o@example.com")
	}
	if m.Platform != "Google Meet" {
		t.Errorf("Platform = %q, want %q", m.Platform, "Google Meet")
	}
}

func TestNormalize_PreservesOrderAndIsDeterministic(t *testing.T) {
	records := []model.RawRecord{
		{ID: "c", Fields: map[string]any{"Summary": "third"}},
		{ID: "a", Fields: map[string]any{"Summary": "first"}},
		{ID: "b", Fields: map[string]any{"Summary": "second"}},
	}

	first := Normalize(records)
	second := Normalize(records)

	if !reflect.DeepEqual(first, second) {
		t.Error("Normalize must be deterministic")
	}
	for i, rec := range records {
		if first[i].ID != rec.ID {
			t.Errorf("meetings[%d].ID = %q, want %q", i, first[i].ID, rec.ID)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	got := Normalize(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Normalize(nil) = %#v, want empty non-nil slice", got)
	}
}
