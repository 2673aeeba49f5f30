// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値
const (
	ResultSuccess   = "success"
	ResultInvalid   = "validation_failed"
	ResultDuplicate = "duplicate"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordOperation(operation, result string)
	RecordHTTPStatus(statusCode int)
	SetLiveRecords(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	operations  *prometheus.CounterVec
	httpStatus  *prometheus.CounterVec
	liveRecords prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "personreg_operations_total",
			Help: "人物レコード操作の結果別合計数",
		}, []string{"operation", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "personreg_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		liveRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "personreg_live_records",
			Help: "現在登録されている人物レコード数",
		}),
	}

	reg.MustRegister(
		c.operations,
		c.httpStatus,
		c.liveRecords,
	)

	return c
}

// RecordOperation は操作の結果を記録する。
func (c *Collector) RecordOperation(operation, result string) {
	c.operations.WithLabelValues(operation, result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetLiveRecords は生存レコード数を設定する。
func (c *Collector) SetLiveRecords(count int) {
	c.liveRecords.Set(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
