// Package config は環境変数とカタログファイルからアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 外部ストア
	AirtableURL   string
	AirtableToken string
	StoreTimeout  time.Duration

	// Webhook
	WebhookCreateURL string
	WebhookCancelURL string
	WebhookAudioURL  string
	WebhookSlidesURL string
	WebhookTimeout   time.Duration
	UploadMaxSize    int64

	// 表示
	DisplayTimezone *time.Location
	PageSize        int

	// Identity
	IdentityMaxAge  time.Duration
	CleanupInterval time.Duration

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitWrite   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string

	// Catalog
	Catalog Catalog
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、値の形式が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	required := []struct {
		key string
		dst *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"AIRTABLE_URL", &cfg.AirtableURL},
		{"AIRTABLE_TOKEN", &cfg.AirtableToken},
		{"WEBHOOK_CREATE_URL", &cfg.WebhookCreateURL},
		{"WEBHOOK_CANCEL_URL", &cfg.WebhookCancelURL},
		{"WEBHOOK_AUDIO_URL", &cfg.WebhookAudioURL},
		{"WEBHOOK_SLIDES_URL", &cfg.WebhookSlidesURL},
	}

	var missing []string
	for _, r := range required {
		*r.dst = os.Getenv(r.key)
		if *r.dst == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.PageSize = getEnvInt("PAGE_SIZE", 5)
	cfg.IdentityMaxAge = getEnvDuration("IDENTITY_MAX_AGE", 30*24*time.Hour)
	cfg.StoreTimeout = getEnvDuration("STORE_TIMEOUT", 10*time.Second)
	cfg.WebhookTimeout = getEnvDuration("WEBHOOK_TIMEOUT", 60*time.Second)
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 104857600)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", 10)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	tz := getEnvString("DISPLAY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tz, err)
	}
	cfg.DisplayTimezone = loc

	catalog, err := LoadCatalog(os.Getenv("CATALOG_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Catalog = catalog

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
