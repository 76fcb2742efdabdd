// Package webhook は会議の作成・キャンセル・ファイルアップロードを受け付ける
// 外部Webhookのクライアントを提供する。
//
// クライアントは上流のステータスコード・Content-Type・ボディを加工せずに返す。
// 再試行は行わない。
package webhook

import "io"

// Kind はWebhookの種別。メトリクスとログのラベルに使う。
type Kind string

const (
	KindCreate Kind = "create"
	KindCancel Kind = "cancel"
	KindAudio  Kind = "audio"
	KindSlides Kind = "slides"
)

// Endpoints は種別ごとのWebhook URL。
type Endpoints struct {
	Create string
	Cancel string
	Audio  string
	Slides string
}

// CreatePayload は会議作成Webhookに送るペイロード。
type CreatePayload struct {
	ID          string   `json:"id"`
	Platform    string   `json:"platform"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Attendees   []string `json:"attendees"`
	Organizer   string   `json:"organizer"`
	SendEmail   bool     `json:"sendEmail"`
}

// cancelPayload は会議キャンセルWebhookに送るペイロード。
type cancelPayload struct {
	ID string `json:"id"`
}

// File はアップロードするファイル。
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Relay は上流のレスポンスをそのまま保持する。
type Relay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK は上流が2xxを返したかどうかを返す。
func (r *Relay) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}
