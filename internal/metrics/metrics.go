// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 外部ストアクライアント、Webhookクライアント、会議サービスから利用する。
type MetricsCollector interface {
	RecordFetchSuccess(records int)
	RecordFetchFailure(reason string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordRecordsNormalized(count int)
	RecordWebhookCall(kind string, statusCode int, duration time.Duration)
	RecordWriteRejected(code string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess      prometheus.Counter
	fetchFail         *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	fetchLatency      prometheus.Histogram
	recordsNormalized prometheus.Counter
	webhookCalls      *prometheus.CounterVec
	webhookLatency    *prometheus.HistogramVec
	writeRejected     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetdesk_store_fetch_success_total",
			Help: "会議ストア取得成功の合計数",
		}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetdesk_store_fetch_fail_total",
			Help: "会議ストア取得失敗の合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetdesk_store_http_status_total",
			Help: "会議ストアのHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetdesk_store_fetch_latency_seconds",
			Help:    "会議ストア取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetdesk_records_normalized_total",
			Help: "正規化したレコードの合計数",
		}),
		webhookCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetdesk_webhook_calls_total",
			Help: "Webhook呼び出しの種別・ステータスコード別の合計数",
		}, []string{"kind", "status_code"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meetdesk_webhook_latency_seconds",
			Help:    "Webhook呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		writeRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetdesk_write_rejected_total",
			Help: "外部呼び出し前に拒否した書き込み操作の合計数",
		}, []string{"code"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.httpStatus,
		c.fetchLatency,
		c.recordsNormalized,
		c.webhookCalls,
		c.webhookLatency,
		c.writeRejected,
	)

	return c
}

// RecordFetchSuccess は取得成功を記録する。
func (c *Collector) RecordFetchSuccess(records int) {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure は取得失敗を理由別に記録する。
func (c *Collector) RecordFetchFailure(reason string) {
	c.fetchFail.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はストアのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency は取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordRecordsNormalized は正規化したレコード数を記録する。
func (c *Collector) RecordRecordsNormalized(count int) {
	c.recordsNormalized.Add(float64(count))
}

// RecordWebhookCall はWebhook呼び出しを記録する。
// 通信エラーでステータスが得られなかった場合はstatusCodeに0を渡す。
func (c *Collector) RecordWebhookCall(kind string, statusCode int, duration time.Duration) {
	c.webhookCalls.WithLabelValues(kind, strconv.Itoa(statusCode)).Inc()
	c.webhookLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordWriteRejected は検証で拒否した書き込みをエラーコード別に記録する。
func (c *Collector) RecordWriteRejected(code string) {
	c.writeRejected.WithLabelValues(code).Inc()
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordFetchSuccess(int)                       {}
func (NopCollector) RecordFetchFailure(string)                    {}
func (NopCollector) RecordHTTPStatus(int)                         {}
func (NopCollector) RecordFetchLatency(time.Duration)             {}
func (NopCollector) RecordRecordsNormalized(int)                  {}
func (NopCollector) RecordWebhookCall(string, int, time.Duration) {}
func (NopCollector) RecordWriteRejected(string)                   {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
