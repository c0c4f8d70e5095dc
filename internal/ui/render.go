package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RushitSolanki/lanshare/internal/peer"
)

// RenderPeerTable formats the peer snapshot as an aligned table, sorted by
// identity so repeated invocations are stable.
func RenderPeerTable(peers []peer.Peer) string {
	if len(peers) == 0 {
		return Color(Dim, "No peers online.") + "\n"
	}

	sorted := make([]peer.Peer, len(peers))
	copy(sorted, peers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var sb strings.Builder
	sb.WriteString(Color(Bold, fmt.Sprintf("%-38s %-21s %-16s %s\n", "ID", "ADDRESS", "HOSTNAME", "LAST SEEN")))
	for _, p := range sorted {
		hostname := p.Hostname
		if hostname == "" {
			hostname = Color(Dim, "-")
		}
		sb.WriteString(fmt.Sprintf("%-38s %-21s %-16s %s\n",
			p.ID,
			fmt.Sprintf("%s:%d", p.Addr, p.Port),
			hostname,
			Color(Dim, lastSeenLabel(p.LastSeen)),
		))
	}
	return sb.String()
}

func lastSeenLabel(t time.Time) string {
	age := time.Since(t)
	if age < time.Second {
		return "just now"
	}
	return age.Round(time.Second).String() + " ago"
}

// Successf prints a green status line
func Successf(format string, args ...interface{}) string {
	return Color(Green, "✓ ") + fmt.Sprintf(format, args...)
}

// Errorf prints a red status line
func Errorf(format string, args ...interface{}) string {
	return Color(Red, "✗ ") + fmt.Sprintf(format, args...)
}
