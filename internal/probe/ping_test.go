package probe

import "testing"

func TestIsPermissionError(t *testing.T) {
	if isPermissionError(nil) {
		t.Fatal("nil error should not be a permission error")
	}
}

// Ping's happy path requires either raw-socket privileges or a usable
// ping binary, neither of which is guaranteed in a sandboxed test runner,
// so it has no live ICMP round-trip test; TestDispatchCoversAllCheckTypes
// only checks that ping has a dispatch entry.
