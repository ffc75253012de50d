/*
Package relay contains the core logic of the room relay.

This file defines the Broadcaster, which fans an event out to every
connection currently registered in a room. It holds no membership state of
its own: the registry is consulted fresh on every call, so a user who left
between two broadcasts is simply absent from the next one.
*/
package relay

import (
	"github.com/rs/zerolog"

	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/logx"
)

// Gateway is the outbound side of the transport layer. Delivery is
// best-effort and fire-and-forget: sending to a connection that has already
// disconnected is a no-op, not an error.
type Gateway interface {
	Send(connectionID string, frame Frame)
}

// RoomData is the roster snapshot broadcast after any membership change.
type RoomData struct {
	Room  string         `json:"room"`
	Users []session.User `json:"users"`
}

// Broadcaster delivers events to room members through the Gateway.
type Broadcaster struct {
	registry *session.Registry
	gateway  Gateway
	logger   zerolog.Logger
}

// NewBroadcaster constructs a Broadcaster over the given registry and gateway.
func NewBroadcaster(registry *session.Registry, gateway Gateway) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		gateway:  gateway,
		logger:   logx.Logger().With().Str("component", "Broadcaster").Logger(),
	}
}

// AnnounceToRoom delivers the event to every current member of the room,
// including the sender if registered there.
func (b *Broadcaster) AnnounceToRoom(room, event string, payload any) {
	b.announce(room, "", event, payload)
}

// AnnounceToRoomExcept delivers the event to every current member of the
// room except the given connection. Used for join notices, which the joining
// client does not receive itself.
func (b *Broadcaster) AnnounceToRoomExcept(room, exceptConnectionID, event string, payload any) {
	b.announce(room, exceptConnectionID, event, payload)
}

func (b *Broadcaster) announce(room, exceptConnectionID, event string, payload any) {
	members := b.registry.ListByRoom(room)

	frame := Frame{Event: event, Data: payload}

	delivered := 0
	for _, member := range members {
		if member.ConnectionID == exceptConnectionID {
			continue
		}
		b.gateway.Send(member.ConnectionID, frame)
		delivered++
	}

	b.logger.Debug().
		Str("room", session.NormalizeRoom(room)).
		Str("event", event).
		Int("recipients", delivered).
		Msg("Room announcement delivered.")
}

// AnnounceRoomRoster delivers the current {room, users} snapshot to every
// member of the room, so all clients converge on the same view after a join
// or leave.
func (b *Broadcaster) AnnounceRoomRoster(room string) {
	roomKey := session.NormalizeRoom(room)

	b.AnnounceToRoom(roomKey, EventRoomData, RoomData{
		Room:  roomKey,
		Users: b.registry.ListByRoom(roomKey),
	})
}

// SendToSender delivers an event to a single connection, the direct response
// channel used for welcomes and acknowledgements.
func (b *Broadcaster) SendToSender(connectionID, event string, payload any) {
	b.gateway.Send(connectionID, Frame{Event: event, Data: payload})
}
