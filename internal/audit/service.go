package audit

import (
	"context"
	"log/slog"
	"time"

	"plenum/internal/platform/metrics"
)

// Store is the persistence sink for audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Service accepts events from hot paths without blocking them: Record is a
// bounded, non-blocking enqueue and the Worker drains to the store. A full
// queue drops the event and counts it rather than stalling a connection.
type Service struct {
	inbox   chan Event
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(queueSize int, log *slog.Logger, m *metrics.Metrics) *Service {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Service{
		inbox:   make(chan Event, queueSize),
		log:     log,
		metrics: m,
	}
}

// Record enqueues an event, stamping OccurredAt when unset. Never blocks.
func (s *Service) Record(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case s.inbox <- event:
	default:
		s.metrics.AuditDropped.Inc()
		s.log.Warn("audit queue full, dropping event", "event_type", event.Type)
	}
}

// Inbox exposes the queue to the worker.
func (s *Service) Inbox() <-chan Event {
	return s.inbox
}
