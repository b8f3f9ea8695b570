package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_denied_total",
		Help: "Total number of order requests rejected before persistence",
	}, []string{"reason"})

	StockCheckLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_check_latency_seconds",
		Help:    "Latency of catalog stock check RPCs",
		Buckets: prometheus.DefBuckets,
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_published_total",
		Help: "Total number of order events published to the broker",
	}, []string{"event_type"})

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_dropped_total",
		Help: "Total number of order events dropped while the broker was unreachable",
	}, []string{"event_type"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_consumed_total",
		Help: "Total number of order events consumed from the broker",
	}, []string{"event_type"})

	BrokerReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_reconnect_attempts_total",
		Help: "Total number of broker reconnect attempts by role and outcome",
	}, []string{"role", "outcome"})

	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of order notifications delivered",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of order notifications that failed to deliver",
	})

	EnrichmentFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_enrichment_fallbacks_total",
		Help: "Total number of enrichment lookups degraded to placeholders",
	}, []string{"field"})

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
