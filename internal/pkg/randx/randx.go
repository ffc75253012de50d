/*
Package randx generates the opaque identifiers used by the transport layer.

Connection identifiers are UUID v4 strings minted when an HTTP request is
upgraded to a WebSocket session. They are unique for the lifetime of one
connection and carry no meaning beyond identity.
*/
package randx

import "github.com/google/uuid"

// ConnectionID generates a UUID v4 string identifying one live connection.
func ConnectionID() string {
	return uuid.New().String()
}
