package relay

import (
	"sync"
	"testing"

	"chatrelay/internal/app/session"
	"chatrelay/internal/pkg/errs"
)

// fakeGateway records every frame delivered per connection, standing in for
// the WebSocket transport.
type fakeGateway struct {
	mu     sync.Mutex
	frames map[string][]Frame
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{frames: make(map[string][]Frame)}
}

func (g *fakeGateway) Send(connectionID string, frame Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frames[connectionID] = append(g.frames[connectionID], frame)
}

// framesFor returns the frames with the given event name delivered to a
// connection so far.
func (g *fakeGateway) framesFor(connectionID, event string) []Frame {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Frame
	for _, f := range g.frames[connectionID] {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frames = make(map[string][]Frame)
}

func newTestHandler() (*Handler, *fakeGateway) {
	gw := newFakeGateway()
	return NewHandler(session.NewRegistry(), gw), gw
}

func lastMessage(t *testing.T, gw *fakeGateway, connectionID string) Message {
	t.Helper()
	frames := gw.framesFor(connectionID, EventMessage)
	if len(frames) == 0 {
		t.Fatalf("no message frames delivered to %s", connectionID)
	}
	msg, ok := frames[len(frames)-1].Data.(Message)
	if !ok {
		t.Fatalf("message frame carries %T, want Message", frames[len(frames)-1].Data)
	}
	return msg
}

func lastRoster(t *testing.T, gw *fakeGateway, connectionID string) RoomData {
	t.Helper()
	frames := gw.framesFor(connectionID, EventRoomData)
	if len(frames) == 0 {
		t.Fatalf("no roomData frames delivered to %s", connectionID)
	}
	roster, ok := frames[len(frames)-1].Data.(RoomData)
	if !ok {
		t.Fatalf("roomData frame carries %T, want RoomData", frames[len(frames)-1].Data)
	}
	return roster
}

func TestJoinWelcomesSenderAndNotifiesRoom(t *testing.T) {
	h, gw := newTestHandler()

	if err := h.Join("conn-a", "alice", "lobby"); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}

	welcome := lastMessage(t, gw, "conn-a")
	if welcome.Username != AdminUser || welcome.Text != "Welcome!" {
		t.Errorf("welcome = %+v", welcome)
	}
	if roster := lastRoster(t, gw, "conn-a"); len(roster.Users) != 1 {
		t.Errorf("roster after first join has %d users, want 1", len(roster.Users))
	}

	if err := h.Join("conn-b", "bob", "lobby"); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}

	// The existing member sees the join notice; the joining client does not.
	notice := lastMessage(t, gw, "conn-a")
	if notice.Username != AdminUser || notice.Text != "bob has joined!" {
		t.Errorf("join notice = %+v", notice)
	}
	if msg := lastMessage(t, gw, "conn-b"); msg.Text != "Welcome!" {
		t.Errorf("joining client's last message = %+v, want its welcome", msg)
	}

	// Both converge on the same two-user roster.
	for _, conn := range []string{"conn-a", "conn-b"} {
		roster := lastRoster(t, gw, conn)
		if roster.Room != "lobby" {
			t.Errorf("roster room = %q, want lobby", roster.Room)
		}
		if len(roster.Users) != 2 {
			t.Errorf("roster for %s has %d users, want 2", conn, len(roster.Users))
		}
	}
}

func TestJoinValidationKeepsConnectionPending(t *testing.T) {
	h, gw := newTestHandler()

	err := h.Join("conn-a", "   ", "lobby")
	if err == nil {
		t.Fatal("Join with blank username succeeded")
	}
	if err.Code != errs.ErrJoinValidation {
		t.Errorf("Join returned code %d, want ErrJoinValidation", err.Code)
	}

	// Nothing was broadcast and the connection may retry.
	if frames := gw.framesFor("conn-a", EventMessage); len(frames) != 0 {
		t.Errorf("failed join delivered %d message frames", len(frames))
	}
	if err := h.Join("conn-a", "alice", "lobby"); err != nil {
		t.Errorf("retry after validation failure returned error: %v", err)
	}
}

func TestJoinDuplicateConnection(t *testing.T) {
	h, _ := newTestHandler()

	if err := h.Join("conn-a", "alice", "lobby"); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}

	err := h.Join("conn-a", "alice2", "kitchen")
	if err == nil {
		t.Fatal("second Join on same connection succeeded")
	}
	if err.Code != errs.ErrDuplicateConnection {
		t.Errorf("Join returned code %d, want ErrDuplicateConnection", err.Code)
	}
}

func TestSendMessageBroadcastsToWholeRoom(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	h.Join("conn-b", "bob", "lobby")
	h.Join("conn-c", "carol", "kitchen")
	gw.reset()

	if err := h.SendMessage("conn-b", "hello"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}

	// Both lobby members receive it, the sender included.
	for _, conn := range []string{"conn-a", "conn-b"} {
		msg := lastMessage(t, gw, conn)
		if msg.Username != "bob" || msg.Text != "hello" {
			t.Errorf("message for %s = %+v", conn, msg)
		}
	}

	// The other room hears nothing.
	if frames := gw.framesFor("conn-c", EventMessage); len(frames) != 0 {
		t.Errorf("other room received %d message frames", len(frames))
	}
}

func TestSendMessageRestrictedWordNeverBroadcast(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	h.Join("conn-b", "bob", "lobby")
	gw.reset()

	err := h.SendMessage("conn-a", "this is confidential")
	if err == nil {
		t.Fatal("SendMessage accepted restricted text")
	}
	if err.Message != "Your message contains restricted words!" {
		t.Errorf("rejection message = %q", err.Message)
	}

	// No partial broadcast: nobody received anything.
	for _, conn := range []string{"conn-a", "conn-b"} {
		if frames := gw.framesFor(conn, EventMessage); len(frames) != 0 {
			t.Errorf("%s received %d message frames for a rejected message", conn, len(frames))
		}
	}
}

func TestSendMessageProfanityRejected(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	gw.reset()

	err := h.SendMessage("conn-a", "well shit")
	if err == nil {
		t.Fatal("SendMessage accepted profanity")
	}
	if err.Message != "Profanity is not allowed!" {
		t.Errorf("rejection message = %q", err.Message)
	}
	if frames := gw.framesFor("conn-a", EventMessage); len(frames) != 0 {
		t.Errorf("rejected message was broadcast")
	}
}

func TestSendMessageUnknownConnectionIgnored(t *testing.T) {
	h, gw := newTestHandler()

	err := h.SendMessage("conn-ghost", "hello")
	if err == nil {
		t.Fatal("SendMessage from unknown connection succeeded")
	}
	if err.Code != errs.ErrUnknownConnection {
		t.Errorf("SendMessage returned code %d, want ErrUnknownConnection", err.Code)
	}
	if frames := gw.framesFor("conn-ghost", EventMessage); len(frames) != 0 {
		t.Error("unknown connection received frames")
	}
}

func TestSendLocationBroadcastsMapLink(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	h.Join("conn-b", "bob", "lobby")
	gw.reset()

	if err := h.SendLocation("conn-a", 51.5, -0.1); err != nil {
		t.Fatalf("SendLocation returned error: %v", err)
	}

	for _, conn := range []string{"conn-a", "conn-b"} {
		frames := gw.framesFor(conn, EventLocationMessage)
		if len(frames) != 1 {
			t.Fatalf("%s received %d locationMessage frames, want 1", conn, len(frames))
		}
		loc, ok := frames[0].Data.(LocationMessage)
		if !ok {
			t.Fatalf("locationMessage frame carries %T", frames[0].Data)
		}
		if loc.Username != "alice" {
			t.Errorf("location sender = %q, want alice", loc.Username)
		}
		if loc.URL != "https://www.google.com/maps?q=51.5,-0.1" {
			t.Errorf("location URL = %q", loc.URL)
		}
	}
}

func TestSendLocationUnknownConnection(t *testing.T) {
	h, _ := newTestHandler()

	err := h.SendLocation("conn-ghost", 1, 2)
	if err == nil || err.Code != errs.ErrUnknownConnection {
		t.Errorf("SendLocation returned %v, want ErrUnknownConnection", err)
	}
}

func TestDisconnectNotifiesRemainingMembers(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	h.Join("conn-b", "bob", "lobby")
	gw.reset()

	h.Disconnect("conn-b")

	notice := lastMessage(t, gw, "conn-a")
	if notice.Username != AdminUser || notice.Text != "bob has left!" {
		t.Errorf("departure notice = %+v", notice)
	}

	roster := lastRoster(t, gw, "conn-a")
	if len(roster.Users) != 1 || roster.Users[0].Username != "alice" || roster.Users[0].Room != "lobby" {
		t.Errorf("roster after departure = %+v", roster.Users)
	}

	// The departed connection receives nothing.
	if frames := gw.framesFor("conn-b", EventMessage); len(frames) != 0 {
		t.Errorf("departed connection received %d message frames", len(frames))
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h, gw := newTestHandler()

	h.Join("conn-a", "alice", "lobby")
	h.Join("conn-b", "bob", "lobby")

	h.Disconnect("conn-b")
	gw.reset()

	h.Disconnect("conn-b")

	if frames := gw.framesFor("conn-a", EventMessage); len(frames) != 0 {
		t.Errorf("second disconnect delivered %d message frames", len(frames))
	}
	if frames := gw.framesFor("conn-a", EventRoomData); len(frames) != 0 {
		t.Errorf("second disconnect delivered %d roomData frames", len(frames))
	}
}

// Full scenario from the relay's contract: two users in a lobby, a chat
// exchange, then a departure.
func TestLobbyScenario(t *testing.T) {
	h, gw := newTestHandler()

	if err := h.Join("conn-a", "alice", "lobby"); err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if err := h.Join("conn-b", "bob", "lobby"); err != nil {
		t.Fatalf("bob join: %v", err)
	}

	if err := h.SendMessage("conn-b", "hello"); err != nil {
		t.Fatalf("bob send: %v", err)
	}
	for _, conn := range []string{"conn-a", "conn-b"} {
		msg := lastMessage(t, gw, conn)
		if msg.Username != "bob" || msg.Text != "hello" {
			t.Errorf("chat envelope for %s = %+v", conn, msg)
		}
	}

	gw.reset()
	h.Disconnect("conn-b")

	if msg := lastMessage(t, gw, "conn-a"); msg.Text != "bob has left!" {
		t.Errorf("departure notice = %+v", msg)
	}
	roster := lastRoster(t, gw, "conn-a")
	if len(roster.Users) != 1 || roster.Users[0].Username != "alice" || roster.Users[0].Room != "lobby" {
		t.Errorf("final roster = %+v", roster.Users)
	}
}
