package discovery

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RushitSolanki/lanshare/internal/peer"
)

// UpsertOutcome reports what an Upsert call did to the registry
type UpsertOutcome int

const (
	// PeerAdded means the identity was not in the registry before
	PeerAdded UpsertOutcome = iota
	// PeerUpdated means the entry existed and its address or port changed
	PeerUpdated
	// PeerRefreshed means the entry existed and only its last-seen time moved
	PeerRefreshed
)

// Registry is the shared table of discovered peers, keyed by peer ID. It is
// the only mutable state shared between the broadcast, listen and sweep
// loops; every method is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	peers map[string]peer.Peer
}

// NewRegistry creates an empty peer registry
func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[string]peer.Peer),
	}
}

// Upsert inserts or replaces the entry for p.ID. Last write wins: the newest
// announcement's address and port always replace the stored values, so a
// peer that roamed to another interface converges on the next announce.
func (r *Registry) Upsert(p peer.Peer) UpsertOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, known := r.peers[p.ID]
	r.peers[p.ID] = p

	if !known {
		logrus.Infof("discovery: new peer %s", p)
		return PeerAdded
	}
	if !existing.Addr.Equal(p.Addr) || existing.Port != p.Port {
		logrus.Infof("discovery: peer %s moved %s:%d -> %s:%d",
			p.ID, existing.Addr, existing.Port, p.Addr, p.Port)
		return PeerUpdated
	}
	return PeerRefreshed
}

// Remove deletes the entry for id, reporting whether it was present
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.peers[id]
	if !ok {
		return false
	}
	delete(r.peers, id)
	logrus.Infof("discovery: peer removed: %s", p)
	return true
}

// Get returns the entry for id
func (r *Registry) Get(id string) (peer.Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.peers[id]
	return p, ok
}

// Snapshot returns a point-in-time copy of all peers. Concurrent announces
// may land right after it returns; callers must not assume it stays current.
func (r *Registry) Snapshot() []peer.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]peer.Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	return peers
}

// Count returns the number of known peers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Sweep evicts every peer that has been quiet for longer than timeout and
// returns how many were removed. A peer seen exactly timeout ago survives.
func (r *Registry) Sweep(timeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, p := range r.peers {
		if p.Stale(timeout) {
			logrus.Warnf("discovery: evicting stale peer %s (quiet for %s)",
				p, time.Since(p.LastSeen).Round(time.Second))
			delete(r.peers, id)
			removed++
		}
	}
	if removed > 0 {
		logrus.Infof("discovery: swept %d stale peers", removed)
	}
	return removed
}
