// Package discovery implements LAN peer discovery and best-effort text
// messaging over UDP broadcast
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RushitSolanki/lanshare/internal/identity"
	"github.com/RushitSolanki/lanshare/internal/peer"
)

const (
	// DefaultPort is the well-known UDP port for discovery traffic
	DefaultPort = 7878
	// DefaultBroadcastInterval is how often presence is announced
	DefaultBroadcastInterval = 5 * time.Second
	// DefaultSweepInterval is how often stale peers are checked for
	DefaultSweepInterval = 10 * time.Second
	// DefaultStaleTimeout is how long a quiet peer stays in the registry
	DefaultStaleTimeout = 30 * time.Second
)

var (
	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("discovery service already started")
	// ErrNotStarted is returned for operations that need a running service
	ErrNotStarted = errors.New("discovery service not started")
	// ErrPeerNotFound is returned when an addressed send names an unknown peer
	ErrPeerNotFound = errors.New("peer not found")
	// ErrTextTooLong is returned when outgoing text exceeds MaxTextLen
	ErrTextTooLong = errors.New("text exceeds size limit")
)

// Config holds the tunables for a discovery Service. Zero values fall back
// to the package defaults.
type Config struct {
	Port              uint16
	BroadcastInterval time.Duration
	SweepInterval     time.Duration
	StaleTimeout      time.Duration
	// Sink receives inbound text; nil means log-only
	Sink TextSink
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.BroadcastInterval <= 0 {
		c.BroadcastInterval = DefaultBroadcastInterval
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.StaleTimeout <= 0 {
		c.StaleTimeout = DefaultStaleTimeout
	}
	return c
}

// Service coordinates the broadcast, listen and sweep loops around one
// shared registry and one per-process identity. It is the only surface the
// host application talks to.
type Service struct {
	cfg      Config
	registry *Registry

	mu          sync.Mutex
	self        *identity.Identity
	broadcaster *Broadcaster
	listener    *Listener
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewService creates an unstarted service with an empty registry
func NewService(cfg Config) *Service {
	return &Service{
		cfg:      cfg.withDefaults(),
		registry: NewRegistry(),
	}
}

// Start generates this process's identity, binds the broadcast and listen
// sockets and spawns the three background loops. A bind failure aborts
// startup with nothing left running. Starting twice is an error.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	self := identity.New()

	broadcaster, err := NewBroadcaster(self, s.cfg.Port, s.cfg.BroadcastInterval)
	if err != nil {
		return fmt.Errorf("start discovery: %w", err)
	}
	listener, err := NewListener(s.cfg.Port, s.registry, self.ID, s.cfg.Sink)
	if err != nil {
		broadcaster.Close()
		return fmt.Errorf("start discovery: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.self = &self
	s.broadcaster = broadcaster
	s.listener = listener
	s.cancel = cancel
	s.started = true

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		broadcaster.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		listener.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.sweepLoop(ctx)
	}()

	logrus.Infof("discovery: service started on UDP port %d as %s", s.cfg.Port, self.ID)
	return nil
}

// Stop cancels the background loops, closes both sockets and waits for the
// loops to drain. A service that was never started is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started || s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.broadcaster.Close()
	s.listener.Close()
	s.wg.Wait()
	logrus.Info("discovery: service stopped")
}

func (s *Service) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.registry.Sweep(s.cfg.StaleTimeout)
		}
	}
}

// Peers returns a snapshot of the currently known peers
func (s *Service) Peers() []peer.Peer {
	return s.registry.Snapshot()
}

// PeerCount returns the number of currently known peers
func (s *Service) PeerCount() int {
	return s.registry.Count()
}

// OwnID returns this process's identity; ok is false before Start
func (s *Service) OwnID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.self == nil {
		return "", false
	}
	return s.self.ID, true
}

// SendText sends text to the peer with targetID, or to every known peer
// when targetID is empty. Broadcasting to an empty registry succeeds without
// sending anything ("no one online yet" is not a failure); addressing an
// unknown peer is ErrPeerNotFound. Sends are fire-and-forget datagrams from
// a fresh ephemeral socket.
func (s *Service) SendText(targetID, text string) error {
	if len(text) > MaxTextLen {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTextTooLong, len(text), MaxTextLen)
	}

	s.mu.Lock()
	self := s.self
	s.mu.Unlock()
	if self == nil {
		return ErrNotStarted
	}

	var targets []peer.Peer
	if targetID == "" {
		targets = s.registry.Snapshot()
		if len(targets) == 0 {
			logrus.Debug("discovery: no peers online, nothing to send")
			return nil
		}
	} else {
		p, ok := s.registry.Get(targetID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPeerNotFound, targetID)
		}
		targets = []peer.Peer{p}
	}

	msg := Message{
		Kind:      KindText,
		PeerID:    self.ID,
		Port:      s.cfg.Port,
		Hostname:  self.Hostname,
		Timestamp: time.Now(),
		Text:      text,
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return fmt.Errorf("bind send socket: %w", err)
	}
	defer conn.Close()

	for _, p := range targets {
		if _, err := conn.WriteToUDP(data, p.Endpoint()); err != nil {
			logrus.Warnf("discovery: send to %s failed: %v", p, err)
		}
	}
	return nil
}
