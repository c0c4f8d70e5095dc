package discovery

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the discovery message type
type Kind string

const (
	// KindPresence is broadcast periodically to announce presence
	KindPresence Kind = "PeerDiscovery"
	// KindText carries a short text payload addressed to one or all peers
	KindText Kind = "TextMessage"
)

const (
	// MaxDatagramSize bounds the serialized envelope (stay within safe UDP limits)
	MaxDatagramSize = 8192
	// MaxTextLen caps outgoing text so the envelope always fits in one datagram
	MaxTextLen = 6000
)

// Message is the UDP payload (JSON encoded). Text is only set for KindText;
// an empty Text on a KindText message is a no-op downstream, not an error.
type Message struct {
	Kind      Kind      `json:"message_type"`
	PeerID    string    `json:"peer_id"`
	Port      uint16    `json:"port"`
	Hostname  string    `json:"hostname,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text,omitempty"`
}

// Encode serializes the message for the wire
func (m *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Kind, err)
	}
	return data, nil
}

// Decode parses a received datagram. The discovery port is unauthenticated,
// so callers must treat a decode error as noise, not as a fault.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}
