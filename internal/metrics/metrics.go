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
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSignIn(method string)
	RecordSignInFailure(method string)
	RecordRecordWrite(recordType string)
	RecordRecordDelete(recordType string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signInSuccess  *prometheus.CounterVec
	signInFail     *prometheus.CounterVec
	recordWrites   *prometheus.CounterVec
	recordDeletes  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signInSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhub_signin_success_total",
			Help: "サインイン成功の合計数（認証方式別）",
		}, []string{"method"}),
		signInFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhub_signin_fail_total",
			Help: "サインイン失敗の合計数（認証方式別）",
		}, []string{"method"}),
		recordWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhub_record_writes_total",
			Help: "レコード作成・更新の合計数（種別別）",
		}, []string{"record_type"}),
		recordDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhub_record_deletes_total",
			Help: "レコード削除の合計数（種別別）",
		}, []string{"record_type"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deskhub_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signInSuccess,
		c.signInFail,
		c.recordWrites,
		c.recordDeletes,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignIn はサインイン成功を記録する。methodは "password" または "google"。
func (c *Collector) RecordSignIn(method string) {
	c.signInSuccess.WithLabelValues(method).Inc()
}

// RecordSignInFailure はサインイン失敗を記録する。
func (c *Collector) RecordSignInFailure(method string) {
	c.signInFail.WithLabelValues(method).Inc()
}

// RecordRecordWrite はレコードの作成・更新を記録する。recordTypeは "todo", "task", "quick_link"。
func (c *Collector) RecordRecordWrite(recordType string) {
	c.recordWrites.WithLabelValues(recordType).Inc()
}

// RecordRecordDelete はレコードの削除を記録する。
func (c *Collector) RecordRecordDelete(recordType string) {
	c.recordDeletes.WithLabelValues(recordType).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
