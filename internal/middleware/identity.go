// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hitoshi/meetdesk/internal/identity"
)

// IdentityCookieName は閲覧者Identityのキーを保持するCookieの名前。
const IdentityCookieName = "viewer_session"

// IdentityLoader はCookieのキーからIdentity Contextを構築する。
// identity.Serviceの部分集合として定義する。
type IdentityLoader interface {
	Load(ctx context.Context, key string) (*identity.Context, error)
	Anonymous() *identity.Context
}

// CookieConfig はIdentity Cookieの設定。
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

// NewIdentityMiddleware はCookieからIdentity Contextを構築して
// リクエストコンテキストに注入するミドルウェアを返す。
// Identityは認証ではないため、Cookieが無い・無効な場合も匿名として処理を続ける。
func NewIdentityMiddleware(loader IdentityLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ic := loader.Anonymous()
			if cookie, err := r.Cookie(IdentityCookieName); err == nil && cookie.Value != "" {
				loaded, err := loader.Load(r.Context(), cookie.Value)
				if err != nil {
					slog.Error("failed to load identity",
						slog.String("error", err.Error()),
					)
				} else {
					ic = loaded
				}
			}

			next.ServeHTTP(w, r.WithContext(identity.NewContext(r.Context(), ic)))
		})
	}
}

// SetIdentityCookie はIdentityのキーをHTTP Only Cookieに設定する。
func SetIdentityCookie(w http.ResponseWriter, key string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    key,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   int(config.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearIdentityCookie はIdentity Cookieを削除する。
func ClearIdentityCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClientKey はレート制限に使うクライアントの識別子を返す。
// Identityのキーがあればそれを、なければ接続元IPを使う。
func ClientKey(r *http.Request) string {
	if key := identity.FromContext(r.Context()).Key(); key != "" {
		return "viewer:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
