/*
Package handler provides the HTTP and WebSocket surface of the relay.

This file defines the Client, one live WebSocket connection. It runs the read
and write pumps, decodes inbound event frames, dispatches them to the
lifecycle handler, and maps each typed result back to an ack frame.
*/
package handler

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatrelay/internal/app/relay"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size in bytes of an inbound frame.
	maxFrameSize = 4096

	// capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// joinPayload is the inbound join event body.
type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// sendMessagePayload is the inbound sendMessage event body.
type sendMessagePayload struct {
	Text string `json:"text"`
}

// sendLocationPayload is the inbound sendLocation event body.
type sendLocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client represents one live WebSocket connection bound to a connection ID.
type Client struct {
	connectionID string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// lifecycle is the per-event entry point into the relay core.
	lifecycle *relay.Handler

	gateway *ConnGateway

	// send is the buffered queue of outbound frames, closed by the gateway.
	send chan []byte

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(connectionID string, conn *websocket.Conn, lifecycle *relay.Handler, gateway *ConnGateway) *Client {
	clientLogger := logx.Logger().With().
		Str("connection_id", connectionID).
		Logger()

	return &Client{
		connectionID: connectionID,
		conn:         conn,
		lifecycle:    lifecycle,
		gateway:      gateway,
		send:         make(chan []byte, sendQueueSize),
		logger:       clientLogger,
	}
}

// ReadPump reads inbound frames until the connection drops, dispatching each
// to the lifecycle handler. On exit the connection is disconnected from the
// registry and unregistered from the gateway, in that order, so departure
// notices are delivered before the send queue closes.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.dispatchInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect tears the connection down exactly once from the read
// side: registry removal (with room notices) first, then gateway removal.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.lifecycle.Disconnect(c.connectionID)
	c.gateway.Unregister(c.connectionID)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// dispatchInboundFrame decodes one inbound frame and routes it by event name.
func (c *Client) dispatchInboundFrame(frameBytes []byte) {
	var inbound struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data,omitempty"`
	}

	if err := json.Unmarshal(frameBytes, &inbound); err != nil {
		// No event name to acknowledge against; drop the frame.
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Event {
	case relay.EventJoin:
		c.handleJoin(inbound.Data)

	case relay.EventSendMessage:
		c.handleSendMessage(inbound.Data)

	case relay.EventSendLocation:
		c.handleSendLocation(inbound.Data)

	default:
		c.logger.Warn().Str("event", inbound.Event).Msg("Client sent unsupported event")
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
		c.ack(relay.EventJoin, errs.NewError(errs.ErrInvalidFrameFormat))
		return
	}

	c.ack(relay.EventJoin, c.lifecycle.Join(c.connectionID, payload.Username, payload.Room))
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
		c.ack(relay.EventSendMessage, errs.NewError(errs.ErrInvalidFrameFormat))
		return
	}

	result := c.lifecycle.SendMessage(c.connectionID, payload.Text)
	if result != nil && result.Code == errs.ErrUnknownConnection {
		// Event raced past the connection's own disconnect; ignored.
		return
	}

	c.ack(relay.EventSendMessage, result)
}

func (c *Client) handleSendLocation(data json.RawMessage) {
	var payload sendLocationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendLocation payload")
		c.ack(relay.EventSendLocation, errs.NewError(errs.ErrInvalidFrameFormat))
		return
	}

	result := c.lifecycle.SendLocation(c.connectionID, payload.Latitude, payload.Longitude)
	if result != nil && result.Code == errs.ErrUnknownConnection {
		return
	}

	c.ack(relay.EventSendLocation, result)
}

// ack sends the acknowledgement frame for one inbound event back to this
// connection. A nil result acknowledges success; the error field is omitted.
func (c *Client) ack(event string, result *errs.CustomError) {
	payload := relay.AckPayload{For: event}
	if result != nil {
		payload.Error = result.Message
	}

	c.gateway.Send(c.connectionID, relay.Frame{Event: relay.EventAck, Data: payload})
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to maintain the heartbeat.
// Returns false when the write pump should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
