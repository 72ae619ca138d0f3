package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments on the default registry.
type Metrics struct {
	requestTransitions *prometheus.CounterVec
	tokensIssued       prometheus.Counter
	paymentEvents      *prometheus.CounterVec
	quotaRejections    prometheus.Counter
}

// New registers the domain counters.
func New() (*Metrics, error) {
	m := &Metrics{
		requestTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltvend_request_transitions_total",
			Help: "Token request state transitions by resulting status.",
		}, []string{"to_status"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voltvend_tokens_issued_total",
			Help: "Tokens recorded in the issuance ledger.",
		}),
		paymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voltvend_payment_events_total",
			Help: "Inbound payment gateway events by result.",
		}, []string{"provider", "result"}),
		quotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voltvend_quota_rejections_total",
			Help: "Customer registrations rejected by vendor quota.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.requestTransitions, m.tokensIssued, m.paymentEvents, m.quotaRejections,
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, err
		}
	}

	return m, nil
}

// RecordTransition increments the transition counter for a resulting status.
func (m *Metrics) RecordTransition(toStatus string) {
	if m == nil {
		return
	}
	m.requestTransitions.WithLabelValues(strings.TrimSpace(toStatus)).Inc()
}

// RecordTokenIssued increments the issued-token counter.
func (m *Metrics) RecordTokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

// RecordPaymentEvent increments gateway event counts.
func (m *Metrics) RecordPaymentEvent(provider, result string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(strings.TrimSpace(provider), strings.TrimSpace(result)).Inc()
}

// RecordQuotaRejection increments quota rejection counts.
func (m *Metrics) RecordQuotaRejection() {
	if m == nil {
		return
	}
	m.quotaRejections.Inc()
}
