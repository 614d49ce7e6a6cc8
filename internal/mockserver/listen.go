// Package mockserver implements the two mock upstream services the oasis
// CLI talks to during integration tests: an object-storage style toolchain
// listing/download server and a telemetry ingestion sink. Both run as
// standalone processes that announce their ephemeral port as the first line
// of their own stdout.
package mockserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"syscall"
)

// maxPortScan bounds the ascending port search. The scan only ever needs to
// step past ports held by sibling harness processes, so a small window is
// plenty.
const maxPortScan = 100

// DefaultToolsPort and DefaultTelemetryPort are the starting points of the
// port scans. Offset so both servers can start from defaults on one host.
const (
	DefaultToolsPort     = 8080
	DefaultTelemetryPort = 8090
)

// Listen binds a TCP listener on host, scanning upward from startPort until
// a free port is found. Bind conflicts are the one self-healing condition in
// the harness; any other bind error is returned as-is.
func Listen(host string, startPort int) (net.Listener, int, error) {
	for port := startPort; port < startPort+maxPortScan; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, port, nil
		}
		if !isAddrInUse(err) {
			return nil, 0, fmt.Errorf("binding %s:%d: %w", host, port, err)
		}
	}
	return nil, 0, fmt.Errorf("no free port on %s in [%d, %d)", host, startPort, startPort+maxPortScan)
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// AnnouncePort writes the bound port as a decimal line. This is the only
// discovery handshake: the parent reads the first stdout line of the server
// process to learn where to connect.
func AnnouncePort(w io.Writer, port int) {
	fmt.Fprintf(w, "%d\n", port)
}
