package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of successfully placed orders",
		},
	)

	ordersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Total number of rejected order requests",
		},
		[]string{"reason"},
	)

	ordersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Total number of cancelled orders",
		},
	)
)

var (
	shipmentEventsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "kafka_consumer",
			Name:      "shipment_events_processed_total",
			Help:      "Total number of successfully processed shipment events",
		},
	)

	shipmentEventsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "kafka_consumer",
			Name:      "shipment_events_failed_total",
			Help:      "Total number of failed shipment event handling attempts",
		},
	)

	shipmentEventsDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Subsystem: "kafka_consumer",
			Name:      "shipment_events_dlq_total",
			Help:      "Total number of shipment events written to DLQ",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		ordersPlaced,
		ordersRejected,
		ordersCancelled,

		shipmentEventsProcessed,
		shipmentEventsFailed,
		shipmentEventsDLQ,
	)
}
