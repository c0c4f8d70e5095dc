package identity

import "testing"

func TestNewGeneratesUniqueIDs(t *testing.T) {
	a := New()
	b := New()

	if a.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs, both were %s", a.ID)
	}
}
