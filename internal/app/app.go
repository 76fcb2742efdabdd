package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/meetdesk/internal/airtable"
	"github.com/hitoshi/meetdesk/internal/config"
	"github.com/hitoshi/meetdesk/internal/database"
	"github.com/hitoshi/meetdesk/internal/handler"
	"github.com/hitoshi/meetdesk/internal/identity"
	"github.com/hitoshi/meetdesk/internal/logger"
	"github.com/hitoshi/meetdesk/internal/meeting"
	"github.com/hitoshi/meetdesk/internal/metrics"
	"github.com/hitoshi/meetdesk/internal/middleware"
	"github.com/hitoshi/meetdesk/internal/notes"
	"github.com/hitoshi/meetdesk/internal/repository"
	"github.com/hitoshi/meetdesk/internal/security"
	"github.com/hitoshi/meetdesk/internal/webhook"
	"github.com/hitoshi/meetdesk/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHelp {
		return WriteUsage(w)
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("timezone", cfg.DisplayTimezone.String()),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// rateLimiterConfig は設定のreq/min値をRateLimiterConfigのreq/secに変換する。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitWrite > 0 {
		rlCfg.WriteRate = rate.Limit(float64(cfg.RateLimitWrite) / 60.0)
		rlCfg.WriteBurst = cfg.RateLimitWrite
	}
	return rlCfg
}

// newRegistry はアプリケーションのメトリクスを登録したPrometheusレジストリを返す。
func newRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// buildRouter は設定と依存からHTTPハンドラーを組み立てる。
func buildRouter(cfg *config.Config, db handler.HealthChecker, store identity.Store, reg *prometheus.Registry, collector metrics.MetricsCollector, rl *middleware.RateLimiter) http.Handler {
	log := slog.Default()

	// 1. 外部クライアントの初期化
	storeClient := airtable.NewClient(
		&http.Client{Timeout: cfg.StoreTimeout},
		log, collector, cfg.AirtableURL, cfg.AirtableToken,
	)
	hooks := webhook.NewClient(
		&http.Client{Timeout: cfg.WebhookTimeout},
		log, collector,
		webhook.Endpoints{
			Create: cfg.WebhookCreateURL,
			Cancel: cfg.WebhookCancelURL,
			Audio:  cfg.WebhookAudioURL,
			Slides: cfg.WebhookSlidesURL,
		},
	)

	// 2. ドメインサービスの初期化
	renderer := notes.NewRenderer(security.NewContentSanitizer())
	meetingService := meeting.NewService(storeClient, hooks, renderer, collector, log, meeting.Config{
		PageSize: cfg.PageSize,
		Location: cfg.DisplayTimezone,
	})
	identityService := identity.NewService(store, cfg.IdentityMaxAge)

	// 3. ルーターの構築
	return handler.NewRouter(&handler.RouterDeps{
		HealthChecker:     db,
		IdentityLoader:    identityService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CookieConfig: middleware.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
			MaxAge: identityService.MaxAge(),
		},
		Logger:         log,
		MeetingService: meetingService,
		UploadMaxSize:  cfg.UploadMaxSize,
		Catalog:        cfg.Catalog,
		MetricsHandler: metrics.Handler(reg),
	})
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリとメトリクスの初期化
	identityRepo := repository.NewPostgresViewerIdentityRepo(db)
	reg, collector := newRegistry()

	rl := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	defer rl.Stop()

	router := buildRouter(cfg, db, identityRepo, reg, collector, rl)

	// 3. HTTPサーバーの起動
	// アップロードの中継を待つため、書き込みタイムアウトはWebhookのタイムアウトより長くする
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15*time.Second + cfg.WebhookTimeout,
		WriteTimeout: 15*time.Second + cfg.WebhookTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、期限切れIdentityのクリーンアップを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(repository.NewPostgresViewerIdentityRepo(db), slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// クリーンアップジョブをメインgoroutineで実行（ブロッキング）
	cleanupJob.Start(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
