// Package metrics counts export runs and writes them in the node
// exporter textfile format, so a cron-driven CLI can still be scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fjacquet/sepa-export/internal/models"
)

// Recorder collects the counters of one process.
type Recorder struct {
	registry *prometheus.Registry

	exports      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	transactions *prometheus.CounterVec
	messages     *prometheus.CounterVec
	amount       *prometheus.CounterVec
	marks        prometheus.Counter
}

// NewRecorder registers the export collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sepa_exports_total",
			Help: "Counter of successful SEPA exports",
		}, []string{"rule"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sepa_export_failures_total",
			Help: "Counter of aborted SEPA exports by failure kind",
		}, []string{"rule", "kind"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sepa_transactions_total",
			Help: "Counter of transactions written, by message variant",
		}, []string{"rule", "variant"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sepa_messages_total",
			Help: "Counter of pain messages written, by message variant",
		}, []string{"rule", "variant"}),
		amount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sepa_amount_total",
			Help: "Sum of instructed amounts written",
		}, []string{"rule", "currency"}),
		marks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sepa_mandates_marked_total",
			Help: "Counter of mandates flagged as used after a first collection",
		}),
	}
	r.registry.MustRegister(r.exports, r.failures, r.transactions, r.messages, r.amount, r.marks)
	return r
}

// MessageWritten records one generated message. variant is "TRF" for
// credit transfers or the bucket key, e.g. "B2B-FRST".
func (r *Recorder) MessageWritten(rule models.PaymentRule, variant string, count int, sum models.Money) {
	r.messages.WithLabelValues(string(rule), variant).Inc()
	r.transactions.WithLabelValues(string(rule), variant).Add(float64(count))
	f, _ := sum.Amount.Round(2).Float64()
	r.amount.WithLabelValues(string(rule), sum.Currency).Add(f)
}

// MandatesMarked records persisted "already used" flags.
func (r *Recorder) MandatesMarked(n int) {
	r.marks.Add(float64(n))
}

// ExportSucceeded records a finished export.
func (r *Recorder) ExportSucceeded(rule models.PaymentRule) {
	r.exports.WithLabelValues(string(rule)).Inc()
}

// ExportFailed records an aborted export.
func (r *Recorder) ExportFailed(rule models.PaymentRule, kind string) {
	r.failures.WithLabelValues(string(rule), kind).Inc()
}

// Gatherer exposes the registry, mostly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all counters to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

