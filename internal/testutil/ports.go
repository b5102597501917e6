// Package testutil holds small helpers shared across test packages.
package testutil

import (
	"net"
	"sync"
	"testing"
)

var (
	portMutex sync.Mutex
	usedPorts = make(map[string]struct{})
)

// GetRandomListeningAddr returns a localhost address with a free TCP port,
// never handing the same port to two callers within one process.
func GetRandomListeningAddr(t *testing.T) string {
	t.Helper()

	portMutex.Lock()
	defer portMutex.Unlock()

	for range 100 {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve a port: %v", err)
		}
		addr := listener.Addr().String()
		if err := listener.Close(); err != nil {
			t.Fatalf("failed to release reserved port: %v", err)
		}

		if _, taken := usedPorts[addr]; taken {
			continue
		}
		usedPorts[addr] = struct{}{}
		return addr
	}

	t.Fatal("could not find an unused port")
	return ""
}
