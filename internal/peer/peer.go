// Package peer defines the model for a node discovered on the local network
package peer

import (
	"fmt"
	"net"
	"time"
)

// Peer is one discovered node. Addr always comes from the observed source of
// the announcement packet; Port is whatever the peer advertised in its
// payload (the UDP source port is ephemeral and useless for addressing).
type Peer struct {
	ID       string    `json:"id"`
	Addr     net.IP    `json:"ip"`
	Port     uint16    `json:"port"`
	Hostname string    `json:"hostname,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// New creates a Peer with LastSeen set to now
func New(id string, addr net.IP, port uint16, hostname string) Peer {
	return Peer{
		ID:       id,
		Addr:     addr,
		Port:     port,
		Hostname: hostname,
		LastSeen: time.Now(),
	}
}

// Stale reports whether the peer has gone quiet for longer than timeout.
// The boundary is exclusive: a peer seen exactly timeout ago is not stale.
func (p Peer) Stale(timeout time.Duration) bool {
	return time.Since(p.LastSeen) > timeout
}

// Endpoint returns the address for sending directly to this peer
func (p Peer) Endpoint() *net.UDPAddr {
	return &net.UDPAddr{IP: p.Addr, Port: int(p.Port)}
}

// String returns a short human-readable form used in logs
func (p Peer) String() string {
	return fmt.Sprintf("%s@%s:%d", p.ID, p.Addr, p.Port)
}
