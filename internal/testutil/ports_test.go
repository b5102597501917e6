package testutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomListeningAddr(t *testing.T) {
	first := GetRandomListeningAddr(t)
	second := GetRandomListeningAddr(t)
	assert.NotEqual(t, first, second)

	// The returned address must still be bindable.
	listener, err := net.Listen("tcp", first)
	require.NoError(t, err)
	require.NoError(t, listener.Close())
}
