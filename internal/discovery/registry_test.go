package discovery

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/RushitSolanki/lanshare/internal/peer"
)

func TestUpsertLastWriteWins(t *testing.T) {
	r := NewRegistry()

	first := peer.New("peer-1", net.IPv4(192, 168, 1, 10), 7878, "old-host")
	if got := r.Upsert(first); got != PeerAdded {
		t.Errorf("expected PeerAdded, got %v", got)
	}

	second := peer.New("peer-1", net.IPv4(192, 168, 1, 20), 9000, "new-host")
	if got := r.Upsert(second); got != PeerUpdated {
		t.Errorf("expected PeerUpdated, got %v", got)
	}

	if r.Count() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Count())
	}
	p, ok := r.Get("peer-1")
	if !ok {
		t.Fatal("expected peer-1 to be present")
	}
	if !p.Addr.Equal(net.IPv4(192, 168, 1, 20)) || p.Port != 9000 || p.Hostname != "new-host" {
		t.Errorf("expected newest values to win, got %s hostname=%s", p, p.Hostname)
	}
}

func TestUpsertUnchangedIsRefresh(t *testing.T) {
	r := NewRegistry()
	addr := net.IPv4(10, 0, 0, 1)

	r.Upsert(peer.New("peer-1", addr, 7878, "host"))
	if got := r.Upsert(peer.New("peer-1", addr, 7878, "host")); got != PeerRefreshed {
		t.Errorf("expected PeerRefreshed for unchanged peer, got %v", got)
	}
	if r.Count() != 1 {
		t.Errorf("expected registry size unchanged, got %d", r.Count())
	}
}

func TestUpsertPortChangeUpdatesExactlyOnce(t *testing.T) {
	r := NewRegistry()
	addr := net.IPv4(10, 0, 0, 1)

	r.Upsert(peer.New("peer-1", addr, 7878, ""))

	outcomes := []UpsertOutcome{
		r.Upsert(peer.New("peer-1", addr, 9000, "")),
		r.Upsert(peer.New("peer-1", addr, 9000, "")),
	}
	if outcomes[0] != PeerUpdated {
		t.Errorf("first port change should report PeerUpdated, got %v", outcomes[0])
	}
	if outcomes[1] != PeerRefreshed {
		t.Errorf("repeat announce should report PeerRefreshed, got %v", outcomes[1])
	}

	p, _ := r.Get("peer-1")
	if p.Port != 9000 {
		t.Errorf("expected registry to hold the newest port 9000, got %d", p.Port)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	r.Upsert(peer.New("peer-1", net.IPv4(10, 0, 0, 1), 7878, ""))

	if !r.Remove("peer-1") {
		t.Error("expected Remove to report a removal")
	}
	if r.Remove("peer-1") {
		t.Error("expected Remove of a missing peer to report false")
	}
	if r.Count() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Count())
	}
}

func TestSweepBoundaryIsExclusive(t *testing.T) {
	r := NewRegistry()
	timeout := 10 * time.Second

	stale := peer.New("stale", net.IPv4(10, 0, 0, 1), 7878, "")
	stale.LastSeen = time.Now().Add(-11 * time.Second)
	r.Upsert(stale)

	fresh := peer.New("fresh", net.IPv4(10, 0, 0, 2), 7878, "")
	r.Upsert(fresh)

	if removed := r.Sweep(timeout); removed != 1 {
		t.Errorf("expected 1 eviction, got %d", removed)
	}
	if _, ok := r.Get("stale"); ok {
		t.Error("stale peer should have been evicted")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Error("fresh peer should survive the sweep")
	}
}

func TestSweepEvictsPeerLastSeenTwoSecondsAgo(t *testing.T) {
	r := NewRegistry()

	p := peer.New("peer-1", net.IPv4(192, 168, 1, 100), 8080, "")
	p.LastSeen = time.Now().Add(-2 * time.Second)
	r.Upsert(p)

	if removed := r.Sweep(1 * time.Second); removed != 1 {
		t.Errorf("expected removed count 1, got %d", removed)
	}
	if r.Count() != 0 {
		t.Errorf("expected empty registry after sweep, got %d", r.Count())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Upsert(peer.New("peer-1", net.IPv4(10, 0, 0, 1), 7878, ""))

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 peer in snapshot, got %d", len(snap))
	}

	r.Remove("peer-1")
	if len(snap) != 1 {
		t.Error("snapshot should not track later registry mutations")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	addr := net.IPv4(10, 0, 0, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Upsert(peer.New("peer-1", addr, 7878, ""))
				r.Sweep(time.Minute)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Snapshot()
				r.Count()
			}
		}()
	}
	wg.Wait()

	if r.Count() != 1 {
		t.Errorf("expected 1 entry after concurrent churn, got %d", r.Count())
	}
}
