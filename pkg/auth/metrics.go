package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	opLogin          = "login"
	opLoginChallenge = "login_challenge"
	opSetup          = "2fa_setup"
	opEnable         = "2fa_enable"
	opDisable        = "2fa_disable"
	opEmergencyReset = "emergency_reset"
	opAdminReset     = "admin_2fa_reset"
)

// Metrics counts auth outcomes. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	accounts *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels:
		//   - operation: login, login_challenge, 2fa_setup, 2fa_enable, 2fa_disable, emergency_reset, admin_2fa_reset
		//   - outcome: success, challenge, or the error kind
		attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "venuehub",
				Subsystem: "auth",
				Name:      "attempts_total",
				Help:      "Authentication and 2FA operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		accounts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "venuehub",
				Subsystem: "auth",
				Name:      "account_changes_total",
				Help:      "Account administration changes",
			},
			[]string{"action"},
		),
	}
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.attempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) observeOutcome(op, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) accountChanged(action string) {
	if m == nil {
		return
	}
	m.accounts.WithLabelValues(action).Inc()
}
