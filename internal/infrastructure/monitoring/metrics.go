package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersDeletedTotal prometheus.Counter
	CreditTransitions     *prometheus.CounterVec
	Customers             *prometheus.GaugeVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

var DB = DBMetrics{
	QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "customer_service_db_query_duration_seconds",
		Help:    "Histogram of database query latencies.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"query_name", "status"}),
}

var Business = BusinessMetrics{
	CustomersCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
		Name: "customer_service_customers_created_total",
		Help: "Total number of customers created.",
	}),
	CustomersDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
		Name: "customer_service_customers_deleted_total",
		Help: "Total number of customer delete requests that removed a record.",
	}),
	CreditTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "customer_service_credit_transitions_total",
		Help: "Total number of credit level transitions by direction.",
	}, []string{"direction"}),
	Customers: promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "customer_service_customers",
		Help: "Number of stored customers by validity, refreshed by the statistics job.",
	}, []string{"validity"}),
}

func RecordCreditTransition(direction string) {
	Business.CreditTransitions.WithLabelValues(direction).Inc()
}

func SetCustomerCounts(valid, invalid int64) {
	Business.Customers.WithLabelValues("valid").Set(float64(valid))
	Business.Customers.WithLabelValues("invalid").Set(float64(invalid))
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}
