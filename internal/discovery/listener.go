package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RushitSolanki/lanshare/internal/peer"
)

const (
	// readDeadline bounds each blocking read so ctx cancellation is honored
	readDeadline = 1 * time.Second
	// receiveBackoff spaces out retries after a non-timeout read error
	receiveBackoff = 100 * time.Millisecond
)

// Listener receives inbound discovery traffic on the well-known port,
// upserting peers on presence announcements and forwarding text payloads to
// the sink. The port is unauthenticated, so anything that fails to decode is
// dropped as noise.
type Listener struct {
	conn     *net.UDPConn
	registry *Registry
	ownID    string
	sink     TextSink
}

// NewListener binds the fixed discovery port on all interfaces
func NewListener(discoveryPort uint16, registry *Registry, ownID string, sink TextSink) (*Listener, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(discoveryPort)})
	if err != nil {
		return nil, fmt.Errorf("bind discovery port %d: %w", discoveryPort, err)
	}
	if sink == nil {
		sink = LogSink{}
	}

	return &Listener{
		conn:     conn,
		registry: registry,
		ownID:    ownID,
		sink:     sink,
	}, nil
}

// Run receives datagrams until ctx is cancelled. Receive errors are never
// fatal: timeouts loop straight back, other errors log and back off briefly
// to avoid spinning on a broken socket.
func (l *Listener) Run(ctx context.Context) {
	logrus.Infof("discovery: listening on %s", l.conn.LocalAddr())

	buf := make([]byte, MaxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(readDeadline))

		n, src, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logrus.Warnf("discovery: read error: %v", err)
			time.Sleep(receiveBackoff)
			continue
		}

		l.handleDatagram(buf[:n], src)
	}
}

// handleDatagram classifies one received payload. Oversized senders get
// truncated by the bounded read above, which surfaces here as a decode
// failure and is dropped like any other garbled packet.
func (l *Listener) handleDatagram(data []byte, src *net.UDPAddr) {
	msg, err := Decode(data)
	if err != nil {
		logrus.Debugf("discovery: dropping undecodable packet from %s: %v", src, err)
		return
	}

	// Broadcast traffic loops back to the sender; drop our own
	if msg.PeerID == l.ownID {
		return
	}

	switch msg.Kind {
	case KindPresence:
		// The address comes from the packet source, never the payload
		l.registry.Upsert(peer.New(msg.PeerID, src.IP, msg.Port, msg.Hostname))
	case KindText:
		if msg.Text == "" {
			return
		}
		l.sink.DeliverText(msg.PeerID, msg.Text)
	default:
		logrus.Debugf("discovery: unknown message type %q from %s", msg.Kind, src)
	}
}

// Close releases the listening socket
func (l *Listener) Close() error {
	return l.conn.Close()
}
