package httptransport

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"plenum/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins; identity comes from
	// the session protocol, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS upgrades the connection and runs one client session until the
// transport closes. The read loop is the actor: it feeds inbound frames to
// the session strictly in arrival order. A separate write loop drains the
// bounded outbox so broadcasts never block on this connection's socket.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	client := realtime.NewClient(uuid.NewString(), h.sendQueue)
	session := realtime.NewClientSession(client, h.hub, h.services, h.metrics, h.log)
	log := h.log.With("conn_id", client.ID)
	log.Info("client connected", "remote", r.RemoteAddr)

	go func() {
		defer conn.Close()
		for {
			select {
			case frame := <-client.Outbox():
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					log.Debug("write failed", "err", err)
					return
				}
			case <-client.Done():
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}()

	ctx := r.Context()
	session.OnConnect(ctx)
	for {
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		session.Handle(ctx, raw)
	}

	session.OnDisconnect()
	log.Info("client disconnected")
}
