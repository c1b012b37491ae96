package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/deskhub/internal/metrics"
)

// NewMetricsMiddleware はHTTPステータスコードとレイテンシをメトリクスに記録するミドルウェアを生成する。
// collectorがnilの場合は何もしない。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			collector.RecordHTTPStatus(recorder.statusCode)
			collector.RecordRequestLatency(time.Since(start))
		})
	}
}
