package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	objectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "conn",
			Name:      "objects_total",
			Help:      "Entities sent or received.",
		},
		[]string{"peer", "direction"},
	)
	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "conn",
			Name:      "bytes_total",
			Help:      "Encoded bytes sent or received.",
		},
		[]string{"peer", "direction"},
	)
	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "conn",
			Name:      "failures_total",
			Help:      "Connection failures by kind.",
		},
		[]string{"peer", "kind"},
	)
	reconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "conn",
			Name:      "reconnect_attempts_total",
			Help:      "Dial attempts made after a failed or lost connection.",
		},
		[]string{"peer"},
	)
)

const (
	DirectionSend    = "send"
	DirectionReceive = "receive"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(objectsTotal, bytesTotal, failuresTotal, reconnectsTotal)
	})
}

// RecordTransfer counts one entity of n encoded bytes moving in direction.
func RecordTransfer(peer, direction string, n int64) {
	RegisterMetrics()
	objectsTotal.WithLabelValues(peer, direction).Inc()
	bytesTotal.WithLabelValues(peer, direction).Add(float64(n))
}

func RecordFailure(peer, kind string) {
	RegisterMetrics()
	failuresTotal.WithLabelValues(peer, kind).Inc()
}

func RecordReconnect(peer string) {
	RegisterMetrics()
	reconnectsTotal.WithLabelValues(peer).Inc()
}
