package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordFetchSuccess_IncrementsCounter は取得成功カウンタが増加することを検証する。
func TestRecordFetchSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchSuccess(10)
	c.RecordFetchSuccess(3)

	if got := testutil.ToFloat64(c.fetchSuccess); got != 2 {
		t.Errorf("store_fetch_success_total = %v, want 2", got)
	}
}

// TestRecordFetchFailure_LabelsByReason は取得失敗が理由ラベル付きで記録されることを検証する。
func TestRecordFetchFailure_LabelsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchFailure("status")
	c.RecordFetchFailure("status")
	c.RecordFetchFailure("network")

	if got := testutil.ToFloat64(c.fetchFail.WithLabelValues("status")); got != 2 {
		t.Errorf("store_fetch_fail_total{reason=status} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetchFail.WithLabelValues("network")); got != 1 {
		t.Errorf("store_fetch_fail_total{reason=network} = %v, want 1", got)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(401)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "meetdesk_store_http_status_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "200":
					if val != 2 {
						t.Errorf("status_code=200 = %v, want 2", val)
					}
				case "401":
					if val != 1 {
						t.Errorf("status_code=401 = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("meetdesk_store_http_status_total metric not found")
	}
}

// TestRecordFetchLatency_ObservesHistogram はレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordFetchLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchLatency(100 * time.Millisecond)
	c.RecordFetchLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "meetdesk_store_fetch_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("meetdesk_store_fetch_latency_seconds metric not found")
	}
}

func TestRecordRecordsNormalized_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecordsNormalized(10)
	c.RecordRecordsNormalized(5)

	if got := testutil.ToFloat64(c.recordsNormalized); got != 15 {
		t.Errorf("records_normalized_total = %v, want 15", got)
	}
}

// TestRecordWebhookCall_LabelsByKindAndStatus はWebhook呼び出しが種別とステータスで記録されることを検証する。
func TestRecordWebhookCall_LabelsByKindAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWebhookCall("create", 200, 50*time.Millisecond)
	c.RecordWebhookCall("create", 500, 80*time.Millisecond)
	c.RecordWebhookCall("cancel", 0, time.Second)

	if got := testutil.ToFloat64(c.webhookCalls.WithLabelValues("create", "200")); got != 1 {
		t.Errorf("webhook_calls_total{create,200} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.webhookCalls.WithLabelValues("cancel", "0")); got != 1 {
		t.Errorf("webhook_calls_total{cancel,0} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.webhookLatency); n != 2 {
		t.Errorf("webhook_latency series = %d, want 2", n)
	}
}

func TestRecordWriteRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWriteRejected("VALIDATION_FAILED")

	if got := testutil.ToFloat64(c.writeRejected.WithLabelValues("VALIDATION_FAILED")); got != 1 {
		t.Errorf("write_rejected_total = %v, want 1", got)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchSuccess(1)
	c.RecordFetchFailure("status")
	c.RecordHTTPStatus(200)
	c.RecordFetchLatency(500 * time.Millisecond)
	c.RecordRecordsNormalized(3)
	c.RecordWebhookCall("slides", 200, time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"meetdesk_store_fetch_success_total",
		"meetdesk_store_fetch_fail_total",
		"meetdesk_store_http_status_total",
		"meetdesk_store_fetch_latency_seconds",
		"meetdesk_records_normalized_total",
		"meetdesk_webhook_calls_total",
		"meetdesk_webhook_latency_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
	var _ MetricsCollector = NopCollector{}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	c1 := NewCollector(prometheus.NewRegistry())
	c2 := NewCollector(prometheus.NewRegistry())

	c1.RecordFetchSuccess(1)
	c2.RecordFetchSuccess(1)
	c2.RecordFetchSuccess(1)

	if got := testutil.ToFloat64(c1.fetchSuccess); got != 1 {
		t.Errorf("c1 fetch_success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c2.fetchSuccess); got != 2 {
		t.Errorf("c2 fetch_success = %v, want 2", got)
	}
}
