/*
Package handler provides the HTTP and WebSocket surface of the relay.

This file defines the ConnGateway, the outbound half of the transport: a map
from connection ID to live client. It implements relay.Gateway; a send to an
unknown or already-gone connection is a logged no-op, never an error.
*/
package handler

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/relay"
	"chatrelay/internal/pkg/logx"
)

// ConnGateway tracks live WebSocket clients by connection ID and delivers
// frames to them, fire-and-forget.
type ConnGateway struct {
	// mu protects concurrent access to the clients map.
	mu sync.RWMutex

	// clients maps a connection ID to its active Client.
	clients map[string]*Client

	logger zerolog.Logger
}

// NewConnGateway constructs an empty ConnGateway.
func NewConnGateway() *ConnGateway {
	return &ConnGateway{
		clients: make(map[string]*Client),
		logger:  logx.Logger().With().Str("component", "Gateway").Logger(),
	}
}

// Register adds a client under its connection ID.
func (g *ConnGateway) Register(client *Client) {
	g.mu.Lock()
	g.clients[client.connectionID] = client
	total := len(g.clients)
	g.mu.Unlock()

	g.logger.Info().
		Str("connection_id", client.connectionID).
		Int("total_connections", total).
		Msg("Connection registered.")
}

// Unregister removes the client for the given connection ID and closes its
// send queue. Safe to call more than once. The close happens under the write
// lock so it can never race a queued Send.
func (g *ConnGateway) Unregister(connectionID string) {
	g.mu.Lock()

	client, ok := g.clients[connectionID]
	if ok {
		delete(g.clients, connectionID)
		close(client.send)
	}
	total := len(g.clients)

	g.mu.Unlock()

	if !ok {
		return
	}

	g.logger.Info().
		Str("connection_id", connectionID).
		Int("total_connections", total).
		Msg("Connection unregistered.")
}

// Send implements relay.Gateway. The frame is marshaled and queued on the
// client's buffered send channel; a missing client or a full queue drops the
// frame. The read lock is held across the queueing so the channel cannot be
// closed mid-send.
func (g *ConnGateway) Send(connectionID string, frame relay.Frame) {
	frameBytes, err := json.Marshal(frame)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("connection_id", connectionID).
			Str("event", frame.Event).
			Msg("Error marshaling frame for client.")
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	client, ok := g.clients[connectionID]
	if !ok {
		g.logger.Debug().
			Str("connection_id", connectionID).
			Str("event", frame.Event).
			Msg("Send to unknown connection dropped.")
		return
	}

	select {
	case client.send <- frameBytes:
	default:
		g.logger.Warn().
			Str("connection_id", connectionID).
			Str("event", frame.Event).
			Msg("Client send queue full, dropping frame.")
	}
}

// Shutdown closes every live connection. Used during graceful shutdown after
// the HTTP server has stopped accepting upgrades.
func (g *ConnGateway) Shutdown() {
	g.mu.Lock()
	clients := make([]*Client, 0, len(g.clients))
	for _, client := range g.clients {
		clients = append(clients, client)
		close(client.send)
	}
	g.clients = make(map[string]*Client)
	g.mu.Unlock()

	for _, client := range clients {
		if err := client.conn.Close(); err != nil {
			g.logger.Debug().
				Err(err).
				Str("connection_id", client.connectionID).
				Msg("Connection close error during shutdown.")
		}
	}

	g.logger.Info().Int("closed", len(clients)).Msg("Gateway shutdown complete.")
}
