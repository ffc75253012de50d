/*
Package session owns the in-memory membership state of the relay.

It defines the Registry, the single writer of the connection-to-user table.
Rooms have no stored identity of their own: a room exists exactly as long as
at least one registered user references its name, and membership is always
computed fresh from the table.
*/
package session

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// User represents one active participant: a live connection bound to a
// display name and a room. Users are immutable once registered; changing
// name or room requires disconnecting and rejoining.
type User struct {
	// ConnectionID is the opaque transport-assigned identifier, stable for
	// the lifetime of one connection. Never serialized to clients.
	ConnectionID string `json:"-"`

	// Username is the trimmed display name supplied at join time.
	Username string `json:"username"`

	// Room is the normalized room name the user belongs to.
	Room string `json:"room"`
}

// Registry is the in-memory table mapping connection identifiers to users,
// with a per-room index of connection IDs in insertion order.
type Registry struct {
	// mu serializes mutations; reads share the lock.
	mu sync.RWMutex

	// users maps a connection ID to its registered User.
	users map[string]User

	// rooms maps a normalized room key to member connection IDs in join order.
	rooms map[string][]string

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry. State lives only in memory and
// is rebuilt empty on process restart.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]User),
		rooms:  make(map[string][]string),
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// NormalizeRoom applies the single normalization rule used everywhere a room
// name is compared: trim surrounding whitespace and case-fold. The normalized
// form is also what clients see in roster snapshots, so the displayed room
// always equals the key members were grouped under.
func NormalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

// Add registers a user for the given connection. It fails with
// ErrJoinValidation when username or room is empty after trimming, and with
// ErrDuplicateConnection when the connection is already registered (the
// first registration is retained). The insert is atomic: a concurrent read
// never observes a half-inserted user.
func (r *Registry) Add(connectionID, username, room string) (User, *errs.CustomError) {
	username = strings.TrimSpace(username)
	roomKey := NormalizeRoom(room)

	if username == "" || roomKey == "" {
		return User{}, errs.NewError(errs.ErrJoinValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[connectionID]; exists {
		r.logger.Warn().
			Str("connection_id", connectionID).
			Msg("Join attempt on already registered connection.")
		return User{}, errs.NewError(errs.ErrDuplicateConnection)
	}

	u := User{
		ConnectionID: connectionID,
		Username:     username,
		Room:         roomKey,
	}

	r.users[connectionID] = u
	r.rooms[roomKey] = append(r.rooms[roomKey], connectionID)

	r.logger.Info().
		Str("connection_id", connectionID).
		Str("room", roomKey).
		Int("room_size", len(r.rooms[roomKey])).
		Msg("User registered.")

	return u, nil
}

// Remove deletes and returns the user for the given connection. A missing
// connection is not an error: disconnect-before-join and double-disconnect
// are tolerated silently, reported through the boolean.
func (r *Registry) Remove(connectionID string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[connectionID]
	if !ok {
		return User{}, false
	}

	delete(r.users, connectionID)

	members := r.rooms[u.Room]
	for i, id := range members {
		if id == connectionID {
			r.rooms[u.Room] = append(members[:i], members[i+1:]...)
			break
		}
	}

	// The room disappears with its last member.
	if len(r.rooms[u.Room]) == 0 {
		delete(r.rooms, u.Room)
	}

	r.logger.Info().
		Str("connection_id", connectionID).
		Str("room", u.Room).
		Int("room_size", len(r.rooms[u.Room])).
		Msg("User removed.")

	return u, true
}

// Get looks up the user for a connection. Not-found is a normal outcome the
// caller must handle, e.g. an event arriving after disconnect.
func (r *Registry) Get(connectionID string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[connectionID]
	return u, ok
}

// ListByRoom returns the current members of the room in join order, applying
// the same normalization as Add. An unknown or empty room yields an empty
// slice, not an error.
func (r *Registry) ListByRoom(room string) []User {
	roomKey := NormalizeRoom(room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	memberIDs := r.rooms[roomKey]

	users := make([]User, 0, len(memberIDs))
	for _, id := range memberIDs {
		if u, ok := r.users[id]; ok {
			users = append(users, u)
		}
	}

	return users
}

// Count returns the total number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
