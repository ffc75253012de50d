/*
Package handler provides the HTTP and WebSocket surface of the relay.

This file contains the HandleWebSocket function: rate limiting, upgrading the
HTTP connection, minting the connection identifier, and starting the client
pumps. Everything after the upgrade is event-driven through the relay core.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/randx"
	"chatrelay/internal/pkg/resp"
)

// HandleWebSocket creates the HandlerFunc for WebSocket connection requests.
// The connection identifier is assigned here, at the transport edge; the core
// treats it as opaque.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connectionID := randx.ConnectionID()

		client := NewClient(connectionID, conn, deps.Lifecycle, deps.Gateway)

		deps.Gateway.Register(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "connection_id", connectionID)

		client.ReadPump()
	}
}
