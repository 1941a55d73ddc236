package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders persisted by checkout, by payment integration mode",
		},
		[]string{"payments"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_gateway_request_duration_seconds",
			Help:    "Duration of payment intent requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"outcome"},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_verifications_total",
			Help: "Payment verification attempts by result",
		},
		[]string{"result"},
	)
)
