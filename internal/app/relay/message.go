/*
Package relay contains the core logic of the room relay: message validation
and formatting, room-wide fan-out, and the per-connection lifecycle.

This file defines the wire frame and the ephemeral message envelopes. An
envelope exists only for the duration of one broadcast call; nothing here is
ever persisted.
*/
package relay

import (
	"fmt"
	"time"
)

// AdminUser is the sender name carried by system notices (welcome, join,
// leave). Part of the client-facing contract.
const AdminUser = "Admin"

// Outbound event names. Payload shapes are the bit-exact client contract.
const (
	// EventMessage carries a chat Message, for both user chat and Admin notices.
	EventMessage = "message"

	// EventLocationMessage carries a LocationMessage with a map-link URL.
	EventLocationMessage = "locationMessage"

	// EventRoomData carries a RoomData roster snapshot after membership changes.
	EventRoomData = "roomData"

	// EventAck acknowledges one inbound event back to its sender.
	EventAck = "ack"
)

// Inbound event names accepted from clients.
const (
	EventJoin         = "join"
	EventSendMessage  = "sendMessage"
	EventSendLocation = "sendLocation"
)

// Frame is the JSON envelope exchanged with clients in both directions.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Message is the chat envelope broadcast to a room.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage is the location-share envelope broadcast to a room.
type LocationMessage struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// AckPayload acknowledges an inbound event. Error is empty on success and
// omitted from the wire, matching the "undefined on success" contract.
type AckPayload struct {
	For   string `json:"for"`
	Error string `json:"error,omitempty"`
}

// NewChatMessage builds a chat envelope stamped with the current time in
// epoch milliseconds. It performs no filtering; content policy is the
// caller's responsibility and is enforced before formatting.
func NewChatMessage(sender, text string) Message {
	return Message{
		Username:  sender,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// NewLocationMessage builds a location envelope around a pre-formatted URL.
func NewLocationMessage(sender, url string) LocationMessage {
	return LocationMessage{
		Username:  sender,
		URL:       url,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// MapsURL formats a Google Maps link for the given coordinates.
func MapsURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", latitude, longitude)
}
