package discovery

import (
	"testing"
	"time"
)

func TestPresenceRoundTrip(t *testing.T) {
	msg := Message{
		Kind:      KindPresence,
		PeerID:    "peer-1",
		Port:      7878,
		Hostname:  "host-a",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	data, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Kind != KindPresence {
		t.Errorf("expected kind %s, got %s", KindPresence, decoded.Kind)
	}
	if decoded.PeerID != "peer-1" {
		t.Errorf("expected peer-1, got %s", decoded.PeerID)
	}
	if decoded.Port != 7878 {
		t.Errorf("expected port 7878, got %d", decoded.Port)
	}
	if decoded.Hostname != "host-a" {
		t.Errorf("expected hostname host-a, got %s", decoded.Hostname)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", msg.Timestamp, decoded.Timestamp)
	}
	if decoded.Text != "" {
		t.Errorf("presence message should carry no text, got %q", decoded.Text)
	}
}

func TestTextRoundTrip(t *testing.T) {
	msg := Message{
		Kind:      KindText,
		PeerID:    "peer-2",
		Port:      7878,
		Timestamp: time.Now().UTC(),
		Text:      "hello over there",
	}

	data, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Kind != KindText {
		t.Errorf("expected kind %s, got %s", KindText, decoded.Kind)
	}
	if decoded.Text != "hello over there" {
		t.Errorf("expected text to survive the round trip, got %q", decoded.Text)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json at all")); err == nil {
		t.Error("expected an error decoding garbage")
	}
	if _, err := Decode(nil); err == nil {
		t.Error("expected an error decoding an empty payload")
	}
}

func TestDecodeForeignButValidJSON(t *testing.T) {
	// Valid JSON from some other protocol on the same port decodes into a
	// message with an unknown kind; classification happens downstream.
	msg, err := Decode([]byte(`{"op":"ping","seq":3}`))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.Kind == KindPresence || msg.Kind == KindText {
		t.Errorf("foreign payload should not map to a known kind, got %s", msg.Kind)
	}
}
