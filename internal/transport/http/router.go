package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plenum/internal/domain"
	"plenum/internal/issue"
	"plenum/internal/platform/metrics"
	"plenum/internal/realtime"
	"plenum/pkg/sentinel"
)

// Handler is the thin HTTP layer: the websocket entry point plus liveness,
// metrics, and the trusted issue-state endpoint. Everything else happens over
// the socket.
type Handler struct {
	hub       *realtime.Hub
	services  realtime.Services
	issues    *issue.Service
	metrics   *metrics.Metrics
	log       *slog.Logger
	sendQueue int
}

func NewHandler(hub *realtime.Hub, services realtime.Services, issues *issue.Service, m *metrics.Metrics, log *slog.Logger, sendQueue int) *Handler {
	return &Handler{
		hub:       hub,
		services:  services,
		issues:    issues,
		metrics:   m,
		log:       log,
		sendQueue: sendQueue,
	}
}

// NewRouter wires all endpoints.
func NewRouter(h *Handler, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", h.handleWS)
	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Trusted administrative surface: no auth by design, deploy behind a
	// private listener.
	r.Post("/issues/{id}/state", h.handleSetIssueState)
	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "connections": h.hub.Len()})
}

// handleSetIssueState applies an explicit lifecycle transition and broadcasts
// the refreshed snapshot to every connection.
func (h *Handler) handleSetIssueState(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "id")
	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	snapshot, err := h.issues.SetState(r.Context(), issueID, domain.IssueState(body.State))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			http.Error(w, "issue not found", http.StatusNotFound)
		case errors.Is(err, sentinel.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.log.Error("set issue state", "issue_id", issueID, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	h.hub.Broadcast(realtime.NewIssueEvent(*snapshot))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": snapshot.ID, "state": string(snapshot.State)})
}
