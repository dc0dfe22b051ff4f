package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// outboundQueueSize bounds the per-client send buffer. A client that falls
// further behind starts losing frames instead of blocking the rest.
const outboundQueueSize = 16

var errQueueFull = errors.New("outbound queue full")

// Client is the handle for one live connection. Outbound frames go through
// a buffered queue drained by a single writer goroutine, so broadcasts are
// delivered in order per client and a slow or dead connection never blocks
// delivery to the others.
type Client struct {
	id  string
	out chan frame

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(id string, w io.Writer) *Client {
	c := &Client{
		id:   id,
		out:  make(chan frame, outboundQueueSize),
		done: make(chan struct{}),
	}
	go c.writeLoop(json.NewEncoder(w))
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) writeLoop(enc *json.Encoder) {
	for {
		select {
		case f := <-c.out:
			if err := enc.Encode(f); err != nil {
				// the read loop notices the broken connection and
				// unregisters the client; keep draining until then
				continue
			}
		case <-c.done:
			return
		}
	}
}

// send enqueues a frame without blocking. A full queue drops the frame.
func (c *Client) send(f frame) error {
	select {
	case <-c.done:
		return io.ErrClosedPipe
	case c.out <- f:
		return nil
	default:
		return errQueueFull
	}
}

// close stops the writer goroutine. It does not close the underlying
// connection; that belongs to the read loop that owns it.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
