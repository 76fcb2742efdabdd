// Package identity は閲覧者のIdentity Contextを提供する。
//
// Identityは認証ではなく表示のための自己申告メールアドレスであり、
// Cookieに保存した不透明なキーでStoreに永続化する。
// Contextはリクエストごとに構築し、各射影処理に明示的に渡す。
package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/meetdesk/internal/model"
)

// DefaultMaxAge はIdentityの既定の保持期間。
const DefaultMaxAge = 30 * 24 * time.Hour

// Store はIdentityの永続化インターフェース。
type Store interface {
	// Find は指定キーのメールアドレスを返す。存在しないか期限切れの場合は空文字列を返す。
	Find(ctx context.Context, key string) (string, error)
	// Save はキーにメールアドレスを保存する。既存の値は上書きする。
	Save(ctx context.Context, key, email string, expiresAt time.Time) error
	// Delete は指定キーを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error
}

// Service はIdentity Contextの生成と永続化を担う。
type Service struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
	newKey func() string
}

// NewService はServiceを生成する。maxAgeが0以下の場合はDefaultMaxAgeを使う。
func NewService(store Store, maxAge time.Duration) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Service{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
		newKey: uuid.NewString,
	}
}

// MaxAge はIdentityの保持期間を返す。Cookieの有効期限に使う。
func (s *Service) MaxAge() time.Duration {
	return s.maxAge
}

// Load はキーに紐づくContextを構築する。
// キーが空、またはStoreに有効なIdentityが無い場合はキーを持たない空のContextを返す。
// 次のSetで新しいキーが発行される。
func (s *Service) Load(ctx context.Context, key string) (*Context, error) {
	if key == "" {
		return s.Anonymous(), nil
	}
	email, err := s.store.Find(ctx, key)
	if err != nil {
		return s.Anonymous(), fmt.Errorf("failed to load identity: %w", err)
	}
	if email == "" {
		return s.Anonymous(), nil
	}
	return &Context{svc: s, key: key, identity: model.NewIdentity(email)}, nil
}

// Anonymous はStoreに紐づかない空のContextを返す。
func (s *Service) Anonymous() *Context {
	return &Context{svc: s}
}

// Context はセッションに束縛されたIdentityのハンドル。
type Context struct {
	svc *Service

	mu       sync.RWMutex
	key      string
	identity model.Identity
}

// Get は現在のIdentityを返す。
func (c *Context) Get() model.Identity {
	if c == nil {
		return model.Identity{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Key はStore上のキーを返す。まだ保存されていない場合は空文字列。
func (c *Context) Key() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// Matches は候補のメールアドレスが現在のIdentityと一致するかを返す。
func (c *Context) Matches(candidate string) bool {
	return c.Get().Matches(candidate)
}

// Set はメールアドレスを検証して保存する。
// キーが未発行の場合は新しいキーを発行する。検証に失敗した場合は何も書き込まない。
func (c *Context) Set(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.key
	if key == "" {
		key = c.svc.newKey()
	}
	expiresAt := c.svc.now().Add(c.svc.maxAge)
	if err := c.svc.store.Save(ctx, key, email, expiresAt); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	c.key = key
	c.identity = model.NewIdentity(email)
	return nil
}

// Clear はIdentityを破棄する。以降のGetは空のIdentityを返す。
func (c *Context) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key != "" {
		if err := c.svc.store.Delete(ctx, c.key); err != nil {
			return fmt.Errorf("failed to clear identity: %w", err)
		}
	}
	c.key = ""
	c.identity = model.Identity{}
	return nil
}

// ValidateEmail はメールアドレスがlocal@domain.tldの形式かを検証する。
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.NewInvalidIdentityError(email)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return model.NewInvalidIdentityError(email)
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if at <= 0 || !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return model.NewInvalidIdentityError(email)
	}
	return nil
}

type contextKey struct{}

// NewContext はContextをcontext.Contextに格納する。
func NewContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext はcontext.ContextからContextを取り出す。
// 格納されていない場合はnilを返す。nilのContextに対するGetは空のIdentityを返す。
func FromContext(ctx context.Context) *Context {
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}
