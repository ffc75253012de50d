/*
Package relay contains the core logic of the room relay.

This file defines the Handler, the state machine driving one connection
through join, active messaging, and disconnect. The transport gateway invokes
it per inbound event; each operation returns a typed result the transport
maps to an acknowledgement.
*/
package relay

import (
	"fmt"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// Handler orchestrates the registry, pipeline, and broadcaster for every
// connection event. It holds no per-connection state; the registry is the
// single source of membership truth.
type Handler struct {
	registry    *session.Registry
	broadcaster *Broadcaster
	filter      *Filter
	logger      zerolog.Logger
}

// NewHandler constructs a Handler over an explicitly owned registry and
// gateway, keeping the core testable without a live transport.
func NewHandler(registry *session.Registry, gateway Gateway) *Handler {
	return &Handler{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, gateway),
		filter:      NewFilter(),
		logger:      logx.Logger().With().Str("component", "Lifecycle").Logger(),
	}
}

// Join moves a connection from pending to active. On validation or duplicate
// failure the error is returned for the sender's acknowledgement and the
// connection stays unjoined. On success the sender is welcomed, the rest of
// the room is notified, and everyone receives the updated roster.
func (h *Handler) Join(connectionID, username, room string) *errs.CustomError {
	user, err := h.registry.Add(connectionID, username, room)
	if err != nil {
		h.logger.Warn().
			Str("connection_id", connectionID).
			Int("code", err.Code).
			Msg("Join rejected.")
		return err
	}

	h.broadcaster.SendToSender(connectionID, EventMessage, NewChatMessage(AdminUser, "Welcome!"))
	h.broadcaster.AnnounceToRoomExcept(user.Room, connectionID, EventMessage,
		NewChatMessage(AdminUser, fmt.Sprintf("%s has joined!", user.Username)))
	h.broadcaster.AnnounceRoomRoster(user.Room)

	h.logger.Info().
		Str("connection_id", connectionID).
		Str("username", user.Username).
		Str("room", user.Room).
		Msg("User joined room.")

	return nil
}

// SendMessage validates a chat message and broadcasts it to the sender's
// whole room, sender included. A rejected message is acknowledged to the
// sender only and never reaches the room. An unknown connection (the event
// raced past its own disconnect) returns ErrUnknownConnection, which the
// transport drops without acknowledging.
func (h *Handler) SendMessage(connectionID, text string) *errs.CustomError {
	user, ok := h.registry.Get(connectionID)
	if !ok {
		h.logger.Debug().
			Str("connection_id", connectionID).
			Msg("Message from unknown connection ignored.")
		return errs.NewError(errs.ErrUnknownConnection)
	}

	if err := h.filter.Check(text); err != nil {
		h.logger.Info().
			Str("connection_id", connectionID).
			Str("room", user.Room).
			Int("code", err.Code).
			Msg("Message rejected by content policy.")
		return err
	}

	h.broadcaster.AnnounceToRoom(user.Room, EventMessage, NewChatMessage(user.Username, text))

	return nil
}

// SendLocation formats a map-link message for the given coordinates and
// broadcasts it to the sender's room. Always succeeds once the user is
// resolved. A coarse regional classification of the coordinates is logged as
// an informational observation only; it never affects routing or the payload.
func (h *Handler) SendLocation(connectionID string, latitude, longitude float64) *errs.CustomError {
	user, ok := h.registry.Get(connectionID)
	if !ok {
		h.logger.Debug().
			Str("connection_id", connectionID).
			Msg("Location share from unknown connection ignored.")
		return errs.NewError(errs.ErrUnknownConnection)
	}

	url := MapsURL(latitude, longitude)
	h.broadcaster.AnnounceToRoom(user.Room, EventLocationMessage, NewLocationMessage(user.Username, url))

	h.logger.Debug().
		Str("connection_id", connectionID).
		Str("room", user.Room).
		Str("region", coarseRegion(latitude, longitude)).
		Msg("Location shared.")

	return nil
}

// Disconnect removes the connection from the registry and, when a user was
// present, notifies the remaining room members and refreshes their roster.
// Idempotent: a second disconnect for the same connection is a no-op.
func (h *Handler) Disconnect(connectionID string) {
	user, ok := h.registry.Remove(connectionID)
	if !ok {
		return
	}

	h.broadcaster.AnnounceToRoom(user.Room, EventMessage,
		NewChatMessage(AdminUser, fmt.Sprintf("%s has left!", user.Username)))
	h.broadcaster.AnnounceRoomRoster(user.Room)

	h.logger.Info().
		Str("connection_id", connectionID).
		Str("username", user.Username).
		Str("room", user.Room).
		Msg("User left room.")
}
