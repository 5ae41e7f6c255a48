package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MutationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldflow_mutations_applied_total",
		Help: "Committed task mutations by action.",
	}, []string{"action"})

	MutationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldflow_mutations_rejected_total",
		Help: "Rejected task mutations by reason.",
	}, []string{"reason"})
)
