package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Total paid transactions",
		},
		[]string{"item_type"},
	)
	PaymentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_failed_total",
			Help: "Total failed transactions",
		},
	)
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Total gateway webhook deliveries",
		},
		[]string{"status"},
	)
	NotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total notifications written",
		},
	)
	ExpiredTransactionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "expired_transactions_total",
			Help: "Pending transactions swept to failed by the worker",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(PaymentsTotal)
	prometheus.MustRegister(PaymentsFailed)
	prometheus.MustRegister(WebhooksTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(ExpiredTransactionsTotal)
}
