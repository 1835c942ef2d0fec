package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plenum/internal/platform/metrics"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(log, metrics.New(prometheus.NewRegistry()))
}

func receiveFrame(t *testing.T, client *Client) map[string]any {
	t.Helper()
	select {
	case frame := <-client.Outbox():
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(frame, &decoded))
		return decoded
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestHubBroadcastFanOut(t *testing.T) {
	hub := newTestHub(t)
	first := NewClient("c1", 4)
	second := NewClient("c2", 4)
	hub.Register(first)
	hub.Register(second)
	require.Equal(t, 2, hub.Len())

	hub.Broadcast(map[string]string{"type": "ping"})

	assert.Equal(t, "ping", receiveFrame(t, first)["type"])
	assert.Equal(t, "ping", receiveFrame(t, second)["type"])
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient("c1", 4)
	hub.Register(client)
	hub.Unregister(client)
	require.Equal(t, 0, hub.Len())

	hub.Broadcast(map[string]string{"type": "ping"})

	select {
	case <-client.Outbox():
		t.Fatal("unregistered client received a frame")
	default:
	}
}

func TestHubUnregisterAbsentIsNoop(t *testing.T) {
	hub := newTestHub(t)
	hub.Unregister(NewClient("never-registered", 4))
	assert.Equal(t, 0, hub.Len())
}

func TestHubDropsFramesForFullQueue(t *testing.T) {
	hub := newTestHub(t)
	slow := NewClient("slow", 1)
	healthy := NewClient("healthy", 4)
	hub.Register(slow)
	hub.Register(healthy)

	// First frame fills the slow client's queue; the second must be dropped
	// for it without affecting the healthy client.
	hub.Broadcast(map[string]string{"type": "first"})
	hub.Broadcast(map[string]string{"type": "second"})

	assert.Equal(t, "first", receiveFrame(t, slow)["type"])
	select {
	case <-slow.Outbox():
		t.Fatal("overflow frame should have been dropped")
	default:
	}

	assert.Equal(t, "first", receiveFrame(t, healthy)["type"])
	assert.Equal(t, "second", receiveFrame(t, healthy)["type"])
}

func TestHubClosedClientDropsFrames(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient("c1", 4)
	hub.Register(client)
	client.Close()

	hub.Broadcast(map[string]string{"type": "ping"})

	select {
	case <-client.Outbox():
		t.Fatal("closed client received a frame")
	default:
	}
}

func TestHubUnicastTargetsOneClient(t *testing.T) {
	hub := newTestHub(t)
	target := NewClient("target", 4)
	other := NewClient("other", 4)
	hub.Register(target)
	hub.Register(other)

	hub.Unicast(target, map[string]string{"type": "ping"})

	assert.Equal(t, "ping", receiveFrame(t, target)["type"])
	select {
	case <-other.Outbox():
		t.Fatal("unicast leaked to another client")
	default:
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client := NewClient("c1", 4)
	client.Close()
	client.Close()
	select {
	case <-client.Done():
	default:
		t.Fatal("done channel not closed")
	}
}
