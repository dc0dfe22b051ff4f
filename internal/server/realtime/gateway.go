package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/akarpovs/livegate/internal/logging"
)

// Channel event names.
const (
	EventClientsUpdated    = "clients-updated"
	EventMessageFromClient = "message-from-client"
)

// maxDecodeErrorsPerConn limits how many malformed frames a connection may
// send before it is dropped.
const maxDecodeErrorsPerConn = 3

// frame is the wire envelope for channel events in both directions.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClientMessage is the payload of a message-from-client event.
type ClientMessage struct {
	Message string `json:"message"`
}

// Gateway binds connect, disconnect, and message events on the websocket
// channel to registry mutations and count broadcasts.
//
// Per connection the state machine is Connected → Disconnected, terminal,
// with no intermediate states.
type Gateway struct {
	registry *Registry
	logger   logging.Logger

	// OnClientMessage is the extension hook for inbound client messages.
	// When nil the event is only logged; nothing is echoed, persisted, or
	// rebroadcast.
	OnClientMessage func(clientID string, msg ClientMessage)
}

func NewGateway(registry *Registry, logger logging.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		logger:   logger.With("module", "realtime_gateway"),
	}
}

// Handler returns the HTTP handler that upgrades requests to websocket
// sessions.
func (g *Gateway) Handler() http.Handler {
	return websocket.Handler(g.handleConn)
}

func (g *Gateway) handleConn(conn *websocket.Conn) {
	ctx := context.Background()
	if r := conn.Request(); r != nil {
		ctx = r.Context()
	}

	id := uuid.NewString()
	client := newClient(id, conn)

	if replaced := g.registry.Register(id, client); replaced != nil {
		replaced.close()
	}
	g.logger.Info(ctx, "client connected", "client_id", id, "count", g.registry.Count())
	g.broadcastCount(ctx)

	defer func() {
		_ = conn.Close()
		g.registry.Remove(id)
		client.close()
		g.logger.Info(ctx, "client disconnected", "client_id", id, "count", g.registry.Count())
		g.broadcastCount(ctx)
	}()

	decoder := json.NewDecoder(conn)
	decodeErrors := 0

	for {
		var f frame
		if err := decoder.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			decodeErrors++
			g.logger.Warn(ctx, "invalid frame", "client_id", id, "error", err)
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		switch f.Event {
		case EventMessageFromClient:
			g.handleClientMessage(ctx, id, f.Payload)
		default:
			g.logger.Warn(ctx, "unsupported event", "client_id", id, "event", f.Event)
		}
	}
}

func (g *Gateway) handleClientMessage(ctx context.Context, clientID string, payload json.RawMessage) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		g.logger.Warn(ctx, "invalid message payload", "client_id", clientID, "error", err)
		return
	}

	if g.OnClientMessage != nil {
		g.OnClientMessage(clientID, msg)
		return
	}
	g.logger.Info(ctx, "message from client", "client_id", clientID, "message", msg.Message)
}

// broadcastCount sends the current connection count to every registered
// client, including the one whose event triggered it. Delivery is best
// effort: a failed enqueue is logged and the rest proceed.
func (g *Gateway) broadcastCount(ctx context.Context) {
	payload, err := json.Marshal(g.registry.Count())
	if err != nil {
		g.logger.Error(ctx, "failed to encode count", "error", err)
		return
	}
	f := frame{Event: EventClientsUpdated, Payload: payload}

	for _, c := range g.registry.Clients() {
		if err := c.send(f); err != nil {
			g.logger.Warn(ctx, "dropped broadcast", "client_id", c.ID(), "error", err)
		}
	}
}
