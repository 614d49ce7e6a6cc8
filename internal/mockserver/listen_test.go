package mockserver

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenScansPastBusyPorts(t *testing.T) {
	// Hold a port, then ask for a listener starting at that same port: the
	// scan must settle on a strictly higher one instead of failing.
	first, firstPort, err := Listen("127.0.0.1", 40100)
	require.NoError(t, err)
	defer first.Close()

	second, secondPort, err := Listen("127.0.0.1", firstPort)
	require.NoError(t, err)
	defer second.Close()

	require.Greater(t, secondPort, firstPort)
}

func TestListenReportsBoundPort(t *testing.T) {
	ln, port, err := Listen("127.0.0.1", 40200)
	require.NoError(t, err)
	defer ln.Close()

	require.Equal(t, "127.0.0.1:"+strconv.Itoa(port), ln.Addr().String())
}

func TestAnnouncePort(t *testing.T) {
	var buf bytes.Buffer
	AnnouncePort(&buf, 8081)
	require.Equal(t, "8081\n", buf.String())
}
