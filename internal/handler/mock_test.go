package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetdesk/internal/identity"
	"github.com/hitoshi/meetdesk/internal/meeting"
	"github.com/hitoshi/meetdesk/internal/model"
	"github.com/hitoshi/meetdesk/internal/webhook"
)

// --- モック定義 ---

// mockMeetingService はMeetingServiceInterfaceのモック実装。
type mockMeetingService struct {
	listFn         func(ctx context.Context, viewer model.Identity, q meeting.ListQuery) (*meeting.ListResult, error)
	detailFn       func(ctx context.Context, viewer model.Identity, id string) (*meeting.DetailResult, error)
	calendarFn     func(ctx context.Context, viewer model.Identity, q meeting.CalendarQuery) (*meeting.CalendarResult, error)
	visibleFn      func(ctx context.Context, viewer model.Identity) ([]model.Meeting, error)
	createFn       func(ctx context.Context, in meeting.CreateInput) (*webhook.Relay, error)
	cancelFn       func(ctx context.Context, id string) (*webhook.Relay, error)
	uploadAudioFn  func(ctx context.Context, viewer model.Identity, id string, file webhook.File) (*webhook.Relay, error)
	uploadSlidesFn func(ctx context.Context, viewer model.Identity, id string, file webhook.File) (*webhook.Relay, error)
	location       *time.Location
}

func (m *mockMeetingService) Location() *time.Location {
	if m.location != nil {
		return m.location
	}
	return time.UTC
}

func (m *mockMeetingService) List(ctx context.Context, viewer model.Identity, q meeting.ListQuery) (*meeting.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewer, q)
	}
	return &meeting.ListResult{Page: 1, TotalPages: 1, FirstPastIndex: -1}, nil
}

func (m *mockMeetingService) Detail(ctx context.Context, viewer model.Identity, id string, _ time.Time) (*meeting.DetailResult, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, viewer, id)
	}
	return nil, model.NewMeetingNotFoundError(id)
}

func (m *mockMeetingService) Calendar(ctx context.Context, viewer model.Identity, q meeting.CalendarQuery) (*meeting.CalendarResult, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ctx, viewer, q)
	}
	return &meeting.CalendarResult{Location: time.UTC}, nil
}

func (m *mockMeetingService) Visible(ctx context.Context, viewer model.Identity, _ time.Time) ([]model.Meeting, error) {
	if m.visibleFn != nil {
		return m.visibleFn(ctx, viewer)
	}
	return nil, nil
}

func (m *mockMeetingService) Create(ctx context.Context, in meeting.CreateInput) (*webhook.Relay, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return okRelay(), nil
}

func (m *mockMeetingService) Cancel(ctx context.Context, id string) (*webhook.Relay, error) {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id)
	}
	return okRelay(), nil
}

func (m *mockMeetingService) UploadAudio(ctx context.Context, viewer model.Identity, id string, file webhook.File) (*webhook.Relay, error) {
	if m.uploadAudioFn != nil {
		return m.uploadAudioFn(ctx, viewer, id, file)
	}
	return okRelay(), nil
}

func (m *mockMeetingService) UploadSlides(ctx context.Context, viewer model.Identity, id string, file webhook.File) (*webhook.Relay, error) {
	if m.uploadSlidesFn != nil {
		return m.uploadSlidesFn(ctx, viewer, id, file)
	}
	return okRelay(), nil
}

func okRelay() *webhook.Relay {
	return &webhook.Relay{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
}

// memIdentityStore はidentity.Storeのインメモリ実装。
type memIdentityStore struct {
	mu     sync.Mutex
	emails map[string]string
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{emails: map[string]string{}}
}

func (s *memIdentityStore) Find(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails[key], nil
}

func (s *memIdentityStore) Save(_ context.Context, key, email string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[key] = email
	return nil
}

func (s *memIdentityStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.emails, key)
	return nil
}

// --- テストヘルパー ---

// withViewer はテスト用にリクエストコンテキストへIdentity Contextを注入する。
// emailが空の場合は匿名のContextを注入する。
func withViewer(t *testing.T, r *http.Request, email string) *http.Request {
	t.Helper()
	store := newMemIdentityStore()
	svc := identity.NewService(store, time.Hour)
	ic := svc.Anonymous()
	if email != "" {
		store.emails["viewer-key"] = email
		loaded, err := svc.Load(r.Context(), "viewer-key")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		ic = loaded
	}
	return r.WithContext(identity.NewContext(r.Context(), ic))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
