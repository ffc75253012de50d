package relay

import (
	"testing"
	"time"
)

func TestNewChatMessage(t *testing.T) {
	before := time.Now().UnixMilli()
	msg := NewChatMessage("bob", "hello")
	after := time.Now().UnixMilli()

	if msg.Username != "bob" {
		t.Errorf("Username = %q, want bob", msg.Username)
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q, want hello", msg.Text)
	}
	if msg.CreatedAt < before || msg.CreatedAt > after {
		t.Errorf("CreatedAt = %d, outside [%d, %d]", msg.CreatedAt, before, after)
	}
}

func TestNewLocationMessage(t *testing.T) {
	msg := NewLocationMessage("alice", "https://www.google.com/maps?q=1,2")

	if msg.Username != "alice" {
		t.Errorf("Username = %q, want alice", msg.Username)
	}
	if msg.URL != "https://www.google.com/maps?q=1,2" {
		t.Errorf("URL = %q", msg.URL)
	}
	if msg.CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}
}

func TestMapsURL(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     string
	}{
		{51.5, -0.1, "https://www.google.com/maps?q=51.5,-0.1"},
		{0, 0, "https://www.google.com/maps?q=0,0"},
		{-33.8688, 151.2093, "https://www.google.com/maps?q=-33.8688,151.2093"},
	}

	for _, tc := range cases {
		if got := MapsURL(tc.lat, tc.lng); got != tc.want {
			t.Errorf("MapsURL(%v, %v) = %q, want %q", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestCoarseRegion(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     string
	}{
		{30, 100, "east-asia"},
		{39.9, 116.4, "east-asia"},
		{48.85, 2.35, "other"},
		{3, 100, "other"},  // bounds are exclusive
		{30, 135, "other"}, // bounds are exclusive
	}

	for _, tc := range cases {
		if got := coarseRegion(tc.lat, tc.lng); got != tc.want {
			t.Errorf("coarseRegion(%v, %v) = %q, want %q", tc.lat, tc.lng, got, tc.want)
		}
	}
}
