package realtime

import "sync"

// Client is the hub's handle on one connected websocket session: a bounded
// outbox plus a done signal. The transport owns the actual connection; the
// hub holds only this non-owning reference.
//
// The outbox channel is never closed by the broadcaster so concurrent sends
// can never panic; writers observe shutdown through Done instead.
type Client struct {
	// ID correlates log lines for this connection's lifetime.
	ID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a Client with a bounded send queue.
func NewClient(id string, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		ID:   id,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Outbox is drained by the transport's write loop.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// Done is closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close signals shutdown (idempotent). It does not close the outbox.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// enqueue attempts a non-blocking send and reports whether the frame was
// queued. A full queue or a closed client drops the frame; a slow connection
// must never stall the broadcaster.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}
