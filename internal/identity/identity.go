// Package identity generates this process's discovery identity
package identity

import (
	"os"

	"github.com/google/uuid"
)

// Identity identifies this process on the LAN. The ID is generated fresh on
// every start, so a restarted process shows up as a new peer.
type Identity struct {
	ID       string
	Hostname string
}

// New generates a random identity with a best-effort hostname
func New() Identity {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}
	return Identity{
		ID:       uuid.New().String(),
		Hostname: hostname,
	}
}
