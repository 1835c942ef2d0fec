package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the coordinator. A single
// struct keeps wiring explicit instead of scattering package-level globals.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	BroadcastsTotal   prometheus.Counter
	FramesDropped     prometheus.Counter
	MessagesDecoded   prometheus.Counter
	DecodeFailures    prometheus.Counter
	VotesAccepted     prometheus.Counter
	VotesDuplicate    prometheus.Counter
	AuditDropped      prometheus.Counter
}

// New creates and registers all instruments with reg. Tests pass a private
// registry so suites don't collide on the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "plenum_connections_active",
			Help: "Number of currently registered websocket connections.",
		}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_broadcasts_total",
			Help: "Total events fanned out to all connections.",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_frames_dropped_total",
			Help: "Outbound frames dropped because a connection's send queue was full.",
		}),
		MessagesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_messages_decoded_total",
			Help: "Inbound wire messages decoded successfully.",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_decode_failures_total",
			Help: "Inbound wire messages rejected as malformed.",
		}),
		VotesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_votes_accepted_total",
			Help: "Votes persisted by the ledger.",
		}),
		VotesDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_votes_duplicate_total",
			Help: "Votes rejected by the per-(user, issue) uniqueness invariant.",
		}),
		AuditDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "plenum_audit_dropped_total",
			Help: "Audit events dropped because the worker queue was full.",
		}),
	}
}
