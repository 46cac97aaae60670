package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// HTTPRequestDuration 接口耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cellar_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: requestBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// PromoValidations 优惠码校验结果
	PromoValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_promo_validations_total",
			Help: "Promo code validations by outcome",
		},
		[]string{"outcome"},
	)

	// PaystackRequestDuration 网关调用耗时
	PaystackRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cellar_paystack_request_duration_seconds",
			Help:    "Duration of Paystack API calls in seconds",
			Buckets: requestBuckets,
		},
		[]string{"operation", "status"},
	)

	// OrderConfirmations 订单确认结果
	OrderConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_order_confirmations_total",
			Help: "Order confirmations by result",
		},
		[]string{"result"},
	)
)

// 订单确认结果标签
const (
	ConfirmResultCreated       = "created"
	ConfirmResultDuplicate     = "duplicate"
	ConfirmResultPromoExhaust  = "promo_exhausted"
	ConfirmResultPersistFailed = "persistence_failed"
)

// RecordHTTPRequest 记录接口耗时
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordPromoValidation 记录优惠码校验结果
func RecordPromoValidation(outcome string) {
	PromoValidations.WithLabelValues(outcome).Inc()
}

// RecordPaystackRequest 记录网关调用耗时
func RecordPaystackRequest(operation, status string, seconds float64) {
	PaystackRequestDuration.WithLabelValues(operation, status).Observe(seconds)
}

// RecordOrderConfirmation 记录订单确认结果
func RecordOrderConfirmation(result string) {
	OrderConfirmations.WithLabelValues(result).Inc()
}
