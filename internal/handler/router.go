package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetdesk/internal/config"
	"github.com/hitoshi/meetdesk/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	IdentityLoader    middleware.IdentityLoader
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	CookieConfig      middleware.CookieConfig
	Logger            *slog.Logger

	// 会議
	MeetingService MeetingServiceInterface
	UploadMaxSize  int64

	// カタログ
	Catalog config.Catalog

	// Prometheusのスクレイプ用ハンドラー。nilの場合は /metrics を公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Identity → RateLimit(General) → CSRF
//
// 書き込み系（会議作成・キャンセル・アップロード）には書き込み用レート制限を追加する。
// /health と /metrics はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- ミドルウェア不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	meetingHandler := NewMeetingHandler(deps.MeetingService, deps.UploadMaxSize)
	calendarHandler := NewCalendarHandler(deps.MeetingService)
	identityHandler := NewIdentityHandler(deps.CookieConfig)
	catalogHandler := NewCatalogHandler(deps.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(middleware.NewLoggingMiddleware(logger))
		r.Use(middleware.NewIdentityMiddleware(deps.IdentityLoader))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// Identity
		r.Route("/api/identity", func(r chi.Router) {
			r.Get("/", identityHandler.GetIdentity)
			r.Put("/", identityHandler.SetIdentity)
			r.Delete("/", identityHandler.ClearIdentity)
		})

		r.Get("/api/catalog", catalogHandler.GetCatalog)

		// 会議
		r.Route("/api/meetings", func(r chi.Router) {
			r.Get("/", meetingHandler.ListMeetings)
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", meetingHandler.CreateMeeting)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", meetingHandler.GetMeeting)

				r.Group(func(r chi.Router) {
					r.Use(deps.RateLimiter.WriteMiddleware())
					r.Post("/cancel", meetingHandler.CancelMeeting)
					r.Post("/audio", meetingHandler.UploadAudio)
					r.Post("/slides", meetingHandler.UploadSlides)
				})
			})
		})

		// カレンダー
		r.Get("/api/calendar", calendarHandler.GetCalendar)
		r.Get("/api/calendar.ics", calendarHandler.ExportICS)
	})

	return r
}
