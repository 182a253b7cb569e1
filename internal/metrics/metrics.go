// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は許可判定とHTTPのPrometheusメトリクスを収集する。
type Collector struct {
	admissionGranted *prometheus.CounterVec
	admissionDenied  *prometheus.CounterVec
	admissionLatency *prometheus.HistogramVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		admissionGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanman_admission_granted_total",
			Help: "許可された貸出・返却・予約の合計数",
		}, []string{"operation"}),
		admissionDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanman_admission_denied_total",
			Help: "拒否された貸出・返却・予約の理由別合計数",
		}, []string{"operation", "reason"}),
		admissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loanman_admission_latency_seconds",
			Help:    "許可判定のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.admissionGranted,
		c.admissionDenied,
		c.admissionLatency,
		c.httpStatus,
	)

	return c
}

// RecordAdmissionGranted は許可を記録する。
func (c *Collector) RecordAdmissionGranted(operation string) {
	c.admissionGranted.WithLabelValues(operation).Inc()
}

// RecordAdmissionDenied は理由付きの拒否を記録する。
func (c *Collector) RecordAdmissionDenied(operation string, reason string) {
	c.admissionDenied.WithLabelValues(operation, reason).Inc()
}

// RecordAdmissionLatency は許可判定のレイテンシを記録する。
func (c *Collector) RecordAdmissionLatency(operation string, d time.Duration) {
	c.admissionLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
