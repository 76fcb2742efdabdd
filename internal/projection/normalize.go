// Package projection は外部ストアから取得した会議コレクションの読み取り側射影を提供する。
//
// レコードの正規化、時間的状態と閲覧者ロールの分類、表示順の決定、
// 日付ごとのバケット化、閲覧者による絞り込み、ページ分割を行う。
// すべての関数は純粋関数であり、どのような入力に対しても panic せず結果を返す。
package projection

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hitoshi/meetdesk/internal/model"
)

// defaultPlatform はPlatformフィールドが欠損している場合の既定値。
const defaultPlatform = "Airtable"

// 外部ストアのフィールド名。
const (
	fieldSummary             = "Summary"
	fieldPlatform            = "Platform"
	fieldStart               = "Start"
	fieldEnd                 = "End"
	fieldDescription         = "Description"
	fieldParticipants        = "Participants"
	fieldOrganizer           = "Organizer"
	fieldURL                 = "URL"
	fieldProject             = "Project"
	fieldAIEnabled           = "AI Enabled"
	fieldCancelled           = "Cancelled"
	fieldUseSummaryFeature   = "Use Summary Feature"
	fieldSummarySent         = "Summary Sent"
	fieldSummaryTranscriptID = "Summary Transcript ID"
	fieldTranscript          = "Transcript"
	fieldMeetingNotes        = "Meeting Notes"
	fieldSlideText           = "Slide Text"
	fieldSlideFileName       = "Slide File Name"
)

// Normalize は生レコード列をMeeting列に変換する。
// 出力順は入力順と同じで、同一入力に対して常に同一出力を返す。
func Normalize(records []model.RawRecord) []model.Meeting {
	meetings := make([]model.Meeting, 0, len(records))
	for _, rec := range records {
		meetings = append(meetings, NormalizeRecord(rec))
	}
	return meetings
}

// NormalizeRecord は1件の生レコードをMeetingに変換する。
// 欠損・型違いのフィールドはすべて既定値（空文字列・空スライス・false）になる。
func NormalizeRecord(rec model.RawRecord) model.Meeting {
	f := rec.Fields

	platform := stringField(f[fieldPlatform])
	if platform == "" {
		platform = defaultPlatform
	}

	return model.Meeting{
		ID:          rec.ID,
		Title:       stringField(f[fieldSummary]),
		Platform:    platform,
		StartTime:   stringField(f[fieldStart]),
		EndTime:     stringField(f[fieldEnd]),
		Description: stringField(f[fieldDescription]),
		Attendees:   listField(f[fieldParticipants]),
		Organizer:   strings.TrimSpace(stringField(f[fieldOrganizer])),
		MeetingURL:  stringField(f[fieldURL]),
		Project:     stringField(f[fieldProject]),
		AIEnabled:   boolField(f[fieldAIEnabled]),
		Cancelled:   boolField(f[fieldCancelled]),

		UseSummaryFeature:   boolField(f[fieldUseSummaryFeature]),
		SummarySent:         boolField(f[fieldSummarySent]),
		SummaryTranscriptID: stringField(f[fieldSummaryTranscriptID]),

		Transcript:   stringField(f[fieldTranscript]),
		MeetingNotes: stringField(f[fieldMeetingNotes]),

		SlideText:     stringField(f[fieldSlideText]),
		SlideFileName: stringField(f[fieldSlideFileName]),
	}
}

// stringField はスカラーとして期待されるフィールドを文字列に変換する。
// 1要素以上の配列は先頭要素を採用し、空配列は空文字列とする。
// コラボレーター型（{"email": ...}）はemail、なければnameを採用する。
func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return stringField(t[0])
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case map[string]any:
		if email := stringField(t["email"]); email != "" {
			return email
		}
		return stringField(t["name"])
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// listField はリストとして期待されるフィールドを文字列スライスに変換する。
// 単一の文字列はカンマ区切りとして分割する。空要素は除去し、順序は保持する。
// 戻り値はnilにならない。
func listField(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case nil:
	case []any:
		for _, e := range t {
			if s := strings.TrimSpace(stringField(e)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, e := range strings.Split(t, ",") {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(stringField(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// boolField はフラグとして期待されるフィールドを真偽値に変換する。
// falsyな値・欠損・解釈できない値はすべてfalseとする。
func boolField(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "checked":
			return true
		}
		return false
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case []any:
		if len(t) == 0 {
			return false
		}
		return boolField(t[0])
	default:
		return false
	}
}
