// Package metrics exposes Prometheus counters for the reset flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reset-flow counters. A nil *Metrics records nothing.
type Metrics struct {
	ResetRequests    *prometheus.CounterVec
	TokenValidations *prometheus.CounterVec
	PasswordResets   *prometheus.CounterVec
	ExpiredPurged    prometheus.Counter
}

// New creates and registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResetRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_requests_total",
				Help: "Password reset requests by outcome",
			},
			[]string{"outcome"},
		),
		TokenValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_token_validations_total",
				Help: "Reset token validations by outcome",
			},
			[]string{"outcome"},
		),
		PasswordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passreset_password_resets_total",
				Help: "Password reset executions by outcome",
			},
			[]string{"outcome"},
		),
		ExpiredPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "passreset_expired_tokens_purged_total",
				Help: "Expired reset tokens removed on access or by cleanup",
			},
		),
	}

	reg.MustRegister(m.ResetRequests)
	reg.MustRegister(m.TokenValidations)
	reg.MustRegister(m.PasswordResets)
	reg.MustRegister(m.ExpiredPurged)

	return m
}

func (m *Metrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.ResetRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordValidation(outcome string) {
	if m == nil {
		return
	}
	m.TokenValidations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReset(outcome string) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.ExpiredPurged.Add(float64(n))
}
