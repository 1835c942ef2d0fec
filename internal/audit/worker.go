package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the service inbox and persists them.
// Persistence failures are logged and skipped; the audit trail is best-effort
// and must never take down the process.
type Worker struct {
	store Store
	inbox <-chan Event
	log   *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, log *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.log.Error("append audit event", "event_type", event.Type, "err", err)
			}
		}
	}
}
