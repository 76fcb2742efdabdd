package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/meetdesk/internal/metrics"
)

// maxRelayBody は中継する上流レスポンスボディの最大バイト数。
const maxRelayBody = 10 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client はWebhookクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	endpoints  Endpoints
}

// NewClient はClientを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, endpoints Endpoints) *Client {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		endpoints:  endpoints,
	}
}

// CreateMeeting は会議作成Webhookを呼び出す。
func (c *Client) CreateMeeting(ctx context.Context, payload CreatePayload) (*Relay, error) {
	if payload.Attendees == nil {
		payload.Attendees = []string{}
	}
	return c.postJSON(ctx, KindCreate, c.endpoints.Create, payload)
}

// CancelMeeting は会議キャンセルWebhookを呼び出す。
// キャンセルが反映されたかは検証せず、上流の応答をそのまま返す。
func (c *Client) CancelMeeting(ctx context.Context, meetingID string) (*Relay, error) {
	return c.postJSON(ctx, KindCancel, c.endpoints.Cancel, cancelPayload{ID: meetingID})
}

// UploadAudio は録音ファイルをアップロードする。
func (c *Client) UploadAudio(ctx context.Context, meetingID string, file File) (*Relay, error) {
	return c.postFile(ctx, KindAudio, c.endpoints.Audio, meetingID, file)
}

// UploadSlides はスライドファイルをアップロードする。
func (c *Client) UploadSlides(ctx context.Context, meetingID string, file File) (*Relay, error) {
	return c.postFile(ctx, KindSlides, c.endpoints.Slides, meetingID, file)
}

func (c *Client) postJSON(ctx context.Context, kind Kind, endpoint string, body any) (*Relay, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(kind, req)
}

func (c *Client) postFile(ctx context.Context, kind Kind, endpoint, meetingID string, file File) (*Relay, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s endpoint: %w", kind, err)
	}
	q := reqURL.Query()
	q.Set("meetingId", meetingID)
	reqURL.RawQuery = q.Encode()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", kind, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(kind, req)
}

// do はリクエストを送信し、上流の応答をRelayに詰めて返す。
// 2xx以外のステータスはエラーではなくRelayとして返す。
func (c *Client) do(kind Kind, req *http.Request) (*Relay, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordWebhookCall(string(kind), 0, time.Since(start))
		c.logger.Error("Webhookの呼び出しに失敗しました",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s webhook request failed: %w", kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	c.metrics.RecordWebhookCall(string(kind), resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s webhook response: %w", kind, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Webhookがエラーステータスを返しました",
			slog.String("kind", string(kind)),
			slog.Int("http_status", resp.StatusCode),
		)
	}

	return &Relay{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
