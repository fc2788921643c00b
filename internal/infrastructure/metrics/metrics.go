package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionsUpdated *prometheus.CounterVec
	TransactionsDeleted *prometheus.CounterVec
	PaymentsRecorded    *prometheus.CounterVec
	PaymentsReversed    *prometheus.CounterVec
	PaymentAmount       prometheus.Histogram
	InterestAccrued     prometheus.Histogram

	// Cash book metrics
	CashBalance prometheus.Gauge

	// Sync metrics
	SyncUploads       *prometheus.CounterVec
	SyncSweeps        *prometheus.CounterVec
	SyncSweepDuration prometheus.Histogram
	SyncPushed        prometheus.Counter
	SyncPulled        prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_transactions_created_total",
				Help: "Total number of ledger transactions created",
			},
			[]string{"type"},
		),
		TransactionsUpdated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_transactions_updated_total",
				Help: "Total number of ledger transactions edited",
			},
			[]string{"type"},
		),
		TransactionsDeleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_transactions_deleted_total",
				Help: "Total number of ledger transactions deleted",
			},
			[]string{"type"},
		),
		PaymentsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_payments_recorded_total",
				Help: "Total number of payments recorded by transaction type",
			},
			[]string{"type"},
		),
		PaymentsReversed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_payments_reversed_total",
				Help: "Total number of payments reversed by transaction type",
			},
			[]string{"type"},
		),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mandiledger_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		}),
		InterestAccrued: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mandiledger_interest_accrued",
			Help:    "Interest amounts accrued at lend settlements",
			Buckets: []float64{10, 100, 1000, 10000},
		}),
		CashBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mandiledger_cash_balance",
			Help: "Current running cash balance",
		}),
		SyncUploads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_sync_uploads_total",
				Help: "Fire-and-forget mirror uploads by outcome",
			},
			[]string{"outcome"},
		),
		SyncSweeps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_sync_sweeps_total",
				Help: "Bulk reconciliation sweeps by status",
			},
			[]string{"status"},
		),
		SyncSweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mandiledger_sync_sweep_duration_seconds",
			Help:    "Duration of bulk reconciliation sweeps",
			Buckets: prometheus.DefBuckets,
		}),
		SyncPushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandiledger_sync_pushed_total",
			Help: "Transactions pushed to the remote mirror",
		}),
		SyncPulled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandiledger_sync_pulled_total",
			Help: "Transactions pulled from the remote mirror",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mandiledger_http_requests_total",
				Help: "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mandiledger_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}
