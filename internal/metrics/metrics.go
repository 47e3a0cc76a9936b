// Package metrics registers the entitlement counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	InvitationAccepts *prometheus.CounterVec
	SeatsConsumed     *prometheus.CounterVec
	StarterGrants     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		InvitationAccepts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heirloom",
			Name:      "invitation_accepts_total",
			Help:      "Invitation accept attempts by outcome.",
		}, []string{"result"}),
		SeatsConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heirloom",
			Name:      "seats_consumed_total",
			Help:      "Seats and vouchers consumed by resource type.",
		}, []string{"resource"}),
		StarterGrants: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "heirloom",
			Name:      "starter_grants_total",
			Help:      "Starter allotments applied to all-zero wallets.",
		}),
	}
}

func (m *Metrics) RecordAccept(result string) {
	if m == nil {
		return
	}
	m.InvitationAccepts.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordConsume(resource string) {
	if m == nil {
		return
	}
	m.SeatsConsumed.WithLabelValues(resource).Inc()
}

func (m *Metrics) RecordStarterGrant() {
	if m == nil {
		return
	}
	m.StarterGrants.Inc()
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
