// Package meeting は会議コレクションの取得・表示用射影と書き込み操作を提供する。
//
// 表示系の操作は呼び出しのたびにストアから最新のスナップショットを取得し、
// そのスナップショットから純粋関数で射影を再計算する。
// 書き込み系の操作は検証に通った場合のみWebhookを呼び出し、ローカル状態は変更しない。
package meeting

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/meetdesk/internal/metrics"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/projection"
	"github.com/hitoshi/meetdesk/internal/webhook"
)

// RecordFetcher は外部ストアから生レコードを取得する。
type RecordFetcher interface {
	ListRecords(ctx context.Context) ([]model.RawRecord, error)
}

// WebhookClient は書き込み系のWebhookを呼び出す。
type WebhookClient interface {
	CreateMeeting(ctx context.Context, payload webhook.CreatePayload) (*webhook.Relay, error)
	CancelMeeting(ctx context.Context, meetingID string) (*webhook.Relay, error)
	UploadAudio(ctx context.Context, meetingID string, file webhook.File) (*webhook.Relay, error)
	UploadSlides(ctx context.Context, meetingID string, file webhook.File) (*webhook.Relay, error)
}

// NotesRenderer はMarkdownを安全なHTMLに変換する。
type NotesRenderer interface {
	Render(markdown string) string
}

// Config はServiceの設定。
type Config struct {
	// PageSize は一覧の既定ページサイズ。0以下の場合はprojection.DefaultPageSize。
	PageSize int
	// Location は暦日を決めるタイムゾーン。nilの場合はtime.Local。
	Location *time.Location
}

// Service は会議のサービス層。
type Service struct {
	store    RecordFetcher
	hooks    WebhookClient
	renderer NotesRenderer
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	cfg      Config

	now   func() time.Time
	newID func() string
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	store RecordFetcher,
	hooks WebhookClient,
	renderer NotesRenderer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = projection.DefaultPageSize
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		store:    store,
		hooks:    hooks,
		renderer: renderer,
		metrics:  collector,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Location は既定の表示タイムゾーンを返す。
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Snapshot は1回の取得で得た会議コレクション。取得後は変更しない。
type Snapshot struct {
	Meetings  []model.Meeting
	FetchedAt time.Time
}

// Snapshot はストアから会議コレクションを取得して正規化する。
// キャッシュは持たず、呼び出しごとに取得する。
// 取得に失敗した場合はFETCH_FAILEDを返し、部分的なデータは返さない。
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.logger.Debug("meeting fetch",
		slog.String("state", string(model.FetchLoading)),
	)

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		s.logger.Error("meeting fetch",
			slog.String("state", string(model.FetchError)),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFetchFailedError(err.Error())
	}

	meetings := projection.Normalize(records)
	s.metrics.RecordRecordsNormalized(len(meetings))
	s.logger.Debug("meeting fetch",
		slog.String("state", string(model.FetchSuccess)),
		slog.Int("records", len(meetings)),
	)

	return &Snapshot{Meetings: meetings, FetchedAt: s.now()}, nil
}

// findMeeting はスナップショットから指定IDの会議を探す。
func findMeeting(snap *Snapshot, id string) (model.Meeting, bool) {
	for _, m := range snap.Meetings {
		if m.ID == id {
			return m, true
		}
	}
	return model.Meeting{}, false
}

// resolveNow はクエリで指定された基準時刻を表示タイムゾーンで返す。ゼロ値なら現在時刻。
// オフセットのない会議時刻はこのタイムゾーンで解釈される。
func (s *Service) resolveNow(now time.Time) time.Time {
	if now.IsZero() {
		now = s.now()
	}
	return now.In(s.cfg.Location)
}
