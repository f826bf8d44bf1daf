package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records the outcome of ledger operations.
type LedgerMetrics struct {
	duration       *prometheus.HistogramVec
	success        *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	purchaseVolume prometheus.Counter
	withdrawals    *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duration of ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operation_success",
		Help: "Committed ledger operations.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operation_rejected",
		Help: "Ledger operations rejected with no state change.",
	}, []string{"operation", "code"})
	purchaseVolume := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_purchase_volume_cents",
		Help: "Total accepted payment volume in cents.",
	})
	withdrawals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawal_volume_cents",
		Help: "Total withdrawn volume in cents.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, rejected, purchaseVolume, withdrawals)
	return &LedgerMetrics{
		duration:       duration,
		success:        success,
		rejected:       rejected,
		purchaseVolume: purchaseVolume,
		withdrawals:    withdrawals,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *LedgerMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the committed-operation counter.
func (m *LedgerMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRejected increments the rejection counter for the given error code.
func (m *LedgerMetrics) IncRejected(operation, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// AddPurchaseVolume adds the accepted tendered amount of a purchase.
func (m *LedgerMetrics) AddPurchaseVolume(amountCents int64) {
	if m == nil || m.purchaseVolume == nil || amountCents <= 0 {
		return
	}
	m.purchaseVolume.Add(float64(amountCents))
}

// AddWithdrawal adds a completed withdrawal amount for the given kind.
func (m *LedgerMetrics) AddWithdrawal(kind string, amountCents int64) {
	if m == nil || m.withdrawals == nil || amountCents <= 0 {
		return
	}
	m.withdrawals.WithLabelValues(normalizeLabel(kind)).Add(float64(amountCents))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
