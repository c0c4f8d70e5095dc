package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RushitSolanki/lanshare/internal/identity"
)

// Broadcaster announces this process's presence to the subnet at a fixed
// cadence. It sends from its own ephemeral socket; peers learn our real
// listening port from the payload, not from the packet source.
type Broadcaster struct {
	conn     *net.UDPConn
	dest     *net.UDPAddr
	self     identity.Identity
	port     uint16
	interval time.Duration
}

// NewBroadcaster binds an ephemeral broadcast-capable UDP socket.
// discoveryPort is both the destination port for announcements and the port
// advertised in them.
func NewBroadcaster(self identity.Identity, discoveryPort uint16, interval time.Duration) (*Broadcaster, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("bind broadcast socket: %w", err)
	}

	return &Broadcaster{
		conn:     conn,
		dest:     &net.UDPAddr{IP: net.IPv4bcast, Port: int(discoveryPort)},
		self:     self,
		port:     discoveryPort,
		interval: interval,
	}, nil
}

// Run announces immediately and then on every tick until ctx is cancelled.
// A failed tick only logs; the next tick retries and the registry timeout on
// the receiving side absorbs the gap.
func (b *Broadcaster) Run(ctx context.Context) {
	logrus.Infof("discovery: broadcasting presence to %s every %s", b.dest, b.interval)

	b.announce(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.announce(ctx)
		}
	}
}

func (b *Broadcaster) announce(ctx context.Context) {
	msg := Message{
		Kind:      KindPresence,
		PeerID:    b.self.ID,
		Port:      b.port,
		Hostname:  b.self.Hostname,
		Timestamp: time.Now(),
	}

	data, err := msg.Encode()
	if err != nil {
		logrus.Errorf("discovery: failed to encode presence: %v", err)
		return
	}

	if _, err := b.conn.WriteToUDP(data, b.dest); err != nil {
		// Broadcast failures are common on some networks, keep quiet
		if ctx.Err() == nil {
			logrus.Debugf("discovery: broadcast failed: %v", err)
		}
		return
	}
	logrus.Debug("discovery: presence announced")
}

// Close releases the broadcast socket
func (b *Broadcaster) Close() error {
	return b.conn.Close()
}
