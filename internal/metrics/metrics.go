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
	RecordRegistration(accountClass string)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordVehicleCreated()
	RecordSaleCompleted()
	RecordCheckoutCancelled()
	RecordSuggestionLatency(duration time.Duration)
	RecordSuggestionFailure()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations     *prometheus.CounterVec
	loginSuccess      prometheus.Counter
	loginFail         prometheus.Counter
	vehiclesCreated   prometheus.Counter
	salesCompleted    prometheus.Counter
	checkoutCancelled prometheus.Counter
	suggestLatency    prometheus.Histogram
	suggestFail       prometheus.Counter
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carhub_registrations_total",
			Help: "アカウント種別ごとの登録数",
		}, []string{"account_class"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		vehiclesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_vehicles_created_total",
			Help: "出品された車両の合計数",
		}),
		salesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_sales_completed_total",
			Help: "成立した売買取引の合計数",
		}),
		checkoutCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_checkout_cancelled_total",
			Help: "キャンセルされた購入手続きの合計数",
		}),
		suggestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carhub_suggestion_latency_seconds",
			Help:    "AI提案生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		suggestFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carhub_suggestion_fail_total",
			Help: "AI提案生成失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.vehiclesCreated,
		c.salesCompleted,
		c.checkoutCancelled,
		c.suggestLatency,
		c.suggestFail,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はアカウント登録を記録する。
func (c *Collector) RecordRegistration(accountClass string) {
	c.registrations.WithLabelValues(accountClass).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordVehicleCreated は車両の出品を記録する。
func (c *Collector) RecordVehicleCreated() {
	c.vehiclesCreated.Inc()
}

// RecordSaleCompleted は売買取引の成立を記録する。
func (c *Collector) RecordSaleCompleted() {
	c.salesCompleted.Inc()
}

// RecordCheckoutCancelled は購入手続きのキャンセルを記録する。
func (c *Collector) RecordCheckoutCancelled() {
	c.checkoutCancelled.Inc()
}

// RecordSuggestionLatency はAI提案生成のレイテンシを記録する。
func (c *Collector) RecordSuggestionLatency(duration time.Duration) {
	c.suggestLatency.Observe(duration.Seconds())
}

// RecordSuggestionFailure はAI提案生成の失敗を記録する。
func (c *Collector) RecordSuggestionFailure() {
	c.suggestFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
