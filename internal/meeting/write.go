package meeting

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/meetdesk/internal/identity"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/projection"
	"github.com/hitoshi/meetdesk/internal/webhook"
)

// DefaultPlatform は作成時にプラットフォームが未指定の場合の既定値。
const DefaultPlatform = "Google Meet"

var (
	audioExtensions = []string{".mp3", ".wav", ".m4a"}
	audioMIMETypes  = []string{"audio/mp3", "audio/wav", "audio/m4a", "audio/mpeg", "audio/x-m4a"}
	slideExtensions = []string{".ppt", ".pptx"}
)

// CreateInput は会議作成の入力。
type CreateInput struct {
	Title       string
	Platform    string
	Description string
	StartTime   string
	EndTime     string
	Attendees   []string
	Organizer   string
	SendEmail   bool
}

// Create は入力を検証して会議作成Webhookを呼び出す。
// オフセットのない日時は表示タイムゾーンの時刻とみなし、UTCのRFC 3339で送信する。
// 検証に失敗した場合はWebhookを呼び出さずにVALIDATION_FAILEDを返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*webhook.Relay, error) {
	payload, err := s.buildCreatePayload(in)
	if err != nil {
		return nil, s.reject(err)
	}

	relay, err := s.hooks.CreateMeeting(ctx, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meeting create relayed",
		slog.String("correlation_id", payload.ID),
		slog.Int("status", relay.StatusCode),
	)
	return relay, nil
}

func (s *Service) buildCreatePayload(in CreateInput) (webhook.CreatePayload, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return webhook.CreatePayload{}, model.NewValidationError("タイトルは必須です")
	}

	start, ok := projection.ParseTimeIn(in.StartTime, s.cfg.Location)
	if !ok {
		return webhook.CreatePayload{}, model.NewValidationError("開始日時が不正です")
	}
	end, ok := projection.ParseTimeIn(in.EndTime, s.cfg.Location)
	if !ok {
		return webhook.CreatePayload{}, model.NewValidationError("終了日時が不正です")
	}
	if !end.After(start) {
		return webhook.CreatePayload{}, model.NewValidationError("終了日時は開始日時より後である必要があります")
	}

	organizer := strings.TrimSpace(in.Organizer)
	if organizer == "" {
		return webhook.CreatePayload{}, model.NewValidationError("主催者は必須です")
	}
	if identity.ValidateEmail(organizer) != nil {
		return webhook.CreatePayload{}, model.NewValidationError("主催者のメールアドレスが不正です")
	}

	platform := strings.TrimSpace(in.Platform)
	if platform == "" {
		platform = DefaultPlatform
	}

	return webhook.CreatePayload{
		ID:          s.newID(),
		Platform:    platform,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartTime:   start.UTC().Format(time.RFC3339),
		EndTime:     end.UTC().Format(time.RFC3339),
		Attendees:   normalizeAttendees(in.Attendees),
		Organizer:   organizer,
		SendEmail:   in.SendEmail,
	}, nil
}

// normalizeAttendees は空白を除去し、大文字小文字を区別せずに重複を除く。
func normalizeAttendees(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// Cancel は会議キャンセルWebhookを呼び出す。
// キャンセルの反映は確認せず、次回の取得まで一覧には元の状態が表示される。
func (s *Service) Cancel(ctx context.Context, meetingID string) (*webhook.Relay, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return nil, s.reject(model.NewValidationError("会議IDは必須です"))
	}

	relay, err := s.hooks.CancelMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meeting cancel relayed",
		slog.String("meeting_id", meetingID),
		slog.Int("status", relay.StatusCode),
	)
	return relay, nil
}

// UploadAudio は録音ファイルをアップロードする。
// ファイルの有無と種類、閲覧者が主催者であることを確認してからWebhookを呼び出す。
func (s *Service) UploadAudio(ctx context.Context, viewer model.Identity, meetingID string, file webhook.File) (*webhook.Relay, error) {
	if err := checkFile(file); err != nil {
		return nil, s.reject(err)
	}
	if !IsAudioFile(file.Name, file.ContentType) {
		return nil, s.reject(model.NewUploadFileTypeError(".mp3, .wav, .m4a"))
	}
	if err := s.requireOrganizer(ctx, viewer, meetingID); err != nil {
		return nil, err
	}
	return s.hooks.UploadAudio(ctx, meetingID, file)
}

// UploadSlides はスライドファイルをアップロードする。
func (s *Service) UploadSlides(ctx context.Context, viewer model.Identity, meetingID string, file webhook.File) (*webhook.Relay, error) {
	if err := checkFile(file); err != nil {
		return nil, s.reject(err)
	}
	if !IsSlideFile(file.Name) {
		return nil, s.reject(model.NewUploadFileTypeError(".ppt, .pptx"))
	}
	if err := s.requireOrganizer(ctx, viewer, meetingID); err != nil {
		return nil, err
	}
	return s.hooks.UploadSlides(ctx, meetingID, file)
}

func checkFile(file webhook.File) error {
	if file.Content == nil || strings.TrimSpace(file.Name) == "" {
		return model.NewUploadFileMissingError()
	}
	return nil
}

// requireOrganizer は最新のスナップショットで閲覧者が主催者であることを確認する。
func (s *Service) requireOrganizer(ctx context.Context, viewer model.Identity, meetingID string) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	m, ok := findMeeting(snap, meetingID)
	if !ok {
		return s.reject(model.NewMeetingNotFoundError(meetingID))
	}
	if projection.RoleOf(m, viewer) != model.RoleOrganizer {
		return s.reject(model.NewUploadForbiddenError())
	}
	return nil
}

// reject は拒否した書き込みを記録してエラーをそのまま返す。
func (s *Service) reject(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		s.metrics.RecordWriteRejected(apiErr.Code)
		s.logger.Info("write rejected",
			slog.String("code", apiErr.Code),
		)
	}
	return err
}

// IsAudioFile は拡張子またはMIMEタイプが録音ファイルとして許可されているかを返す。
func IsAudioFile(name, contentType string) bool {
	if hasExtension(name, audioExtensions) {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, allowed := range audioMIMETypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// IsSlideFile は拡張子がスライドとして許可されているかを返す。
func IsSlideFile(name string) bool {
	return hasExtension(name, slideExtensions)
}

func hasExtension(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
