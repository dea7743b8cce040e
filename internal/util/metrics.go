package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Total number of orders created",
	}, []string{"order_type"})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_failed_total",
		Help: "Total number of rejected order creations",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_status_updates_total",
		Help: "Total number of order status changes",
	}, []string{"status"})

	OrderTokenRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_token_retries_total",
		Help: "Total number of order transactions rerun after a token collision",
	})

	OrderTokenFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_token_fallbacks_total",
		Help: "Total number of fallback order tokens issued",
	}, []string{"reason"})

	PaymentsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_payments_settled_total",
		Help: "Total number of settled payments",
	}, []string{"payment_method"})

	PaymentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_payments_rejected_total",
		Help: "Total number of rejected settlements",
	}, []string{"reason"})

	PaymentSettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_payment_settlement_latency_seconds",
		Help:    "Latency of payment settlement",
		Buckets: prometheus.DefBuckets,
	})

	ReportCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_report_cache_requests_total",
		Help: "Report cache lookups by outcome",
	}, []string{"report", "result"})

	ReportCacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_report_cache_invalidations_total",
		Help: "Report cache invalidations by triggering event",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
