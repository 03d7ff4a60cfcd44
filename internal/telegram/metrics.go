package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sellbot",
		Name:      "updates_total",
		Help:      "Inbound telegram updates by type.",
	}, []string{"type"})

	gateBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sellbot",
		Name:      "gate_blocked_total",
		Help:      "Updates swallowed by the access gate.",
	})

	routeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sellbot",
		Name:      "route_errors_total",
		Help:      "Routing failures by route.",
	}, []string{"route"})
)
