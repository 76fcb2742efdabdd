// Package airtable は会議レコードを保持する外部表形式ストアのクライアントを提供する。
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/meetdesk/internal/metrics"
	"github.com/hitoshi/meetdesk/internal/model"
)

const (
	// maxPages はoffsetページングで辿る最大ページ数。
	maxPages = 100
	// maxErrorBody はエラー時に保持するレスポンスボディの最大バイト数。
	maxErrorBody = 4 << 10
	// maxResponseBody は1ページあたりのレスポンスボディ上限。
	maxResponseBody = 16 << 20
)

// ErrTooManyPages はoffsetページングがmaxPagesを超えたことを表す。
// 一部のレコードだけを返すことはしない。
var ErrTooManyPages = errors.New("store pagination exceeded page limit")

// FetchError はストアが2xx以外のステータスを返したことを表す。
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("store returned status %d", e.StatusCode)
}

// listResponse はレコード一覧APIのレスポンス。
type listResponse struct {
	Records []struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// Client は外部ストアのレコード一覧APIクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	endpoint   string
	token      string
}

// NewClient はClientを生成する。endpointはテーブルのレコード一覧URL。
// collectorがnilの場合はメトリクスを記録しない。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, endpoint, token string) *Client {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		endpoint:   endpoint,
		token:      token,
	}
}

// ListRecords は全レコードを取得する。offsetが返される限り次ページを取得する。
// 2xx以外のステータスは*FetchError、ページ数が上限を超えた場合はErrTooManyPagesを返す。途中のページで失敗した場合は
// それまでに取得したレコードを破棄してエラーを返す。
func (c *Client) ListRecords(ctx context.Context) ([]model.RawRecord, error) {
	start := time.Now()
	records, err := c.listAll(ctx)
	c.metrics.RecordFetchLatency(time.Since(start))

	if err != nil {
		c.metrics.RecordFetchFailure(failureReason(err))
		return nil, err
	}
	c.metrics.RecordFetchSuccess(len(records))
	return records, nil
}

func (c *Client) listAll(ctx context.Context) ([]model.RawRecord, error) {
	records := []model.RawRecord{}
	offset := ""
	for page := 0; page < maxPages; page++ {
		resp, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range resp.Records {
			records = append(records, model.RawRecord{ID: r.ID, Fields: r.Fields})
		}
		if resp.Offset == "" {
			return records, nil
		}
		offset = resp.Offset
	}

	c.logger.Warn("ストアのページ数が上限に達しました",
		slog.Int("max_pages", maxPages),
		slog.Int("records", len(records)),
	)
	return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, maxPages)
}

func (c *Client) fetchPage(ctx context.Context, offset string) (*listResponse, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	if offset != "" {
		q := reqURL.Query()
		q.Set("offset", offset)
		reqURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ストアの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("ストアの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordHTTPStatus(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("ストアがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result listResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&result); err != nil {
		c.logger.Error("ストアのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return &result, nil
}

// failureReason はメトリクスのラベルに使う失敗理由を返す。
func failureReason(err error) string {
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		return "status"
	case errors.Is(err, ErrTooManyPages):
		return "pagination"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "network"
	}
}
