package mockserver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Kind selects which mock upstream a Proc runs.
type Kind string

const (
	// Tools is the toolchain listing/download server.
	Tools Kind = "tools"
	// Telemetry is the telemetry ingestion sink.
	Telemetry Kind = "telemetry"
)

// StartPort returns the default scan start for this server kind.
func (k Kind) StartPort() int {
	if k == Telemetry {
		return DefaultTelemetryPort
	}
	return DefaultToolsPort
}

// Proc is a running mock upstream server subprocess. The bound port is
// discovered from the first line of the child's stdout; there is no other
// handshake and no graceful shutdown beyond termination.
type Proc struct {
	Kind Kind
	Host string
	Port int

	cmd *exec.Cmd
}

// Start launches `<binary> serve <kind>` and blocks until the child
// announces its port. The child's stderr is passed through for zerolog
// diagnostics.
func Start(ctx context.Context, binary string, kind Kind, host string, startPort int) (*Proc, error) {
	cmd := exec.CommandContext(ctx, binary,
		"serve", string(kind),
		"--host", host,
		"--port", strconv.Itoa(startPort))
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("piping %s server stdout: %w", kind, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s server: %w", kind, err)
	}

	line, err := bufio.NewReader(stdout).ReadString('\n')
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("reading %s server port announcement: %w", kind, err)
	}

	port, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("parsing %s server port %q: %w", kind, strings.TrimSpace(line), err)
	}

	return &Proc{Kind: kind, Host: host, Port: port, cmd: cmd}, nil
}

// URL returns the base URL of the running server, suitable for http_proxy.
func (p *Proc) URL() string {
	return fmt.Sprintf("http://%s:%d", p.Host, p.Port)
}

// Stop terminates the server and waits for it to exit.
func (p *Proc) Stop() error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
	}
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	// Exiting on SIGTERM is the expected shutdown path.
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return nil
		}
	}
	return fmt.Errorf("waiting for %s server: %w", p.Kind, err)
}

// StartPair launches both mock upstreams concurrently and returns them in
// (tools, telemetry) order. If either fails to start, the other is stopped
// before returning. The children run on the caller's context so they
// outlive startup coordination; the group only collects startup errors.
func StartPair(ctx context.Context, binary, host string) (*Proc, *Proc, error) {
	var tools, telemetry *Proc

	var g errgroup.Group
	g.Go(func() error {
		var err error
		tools, err = Start(ctx, binary, Tools, host, Tools.StartPort())
		return err
	})
	g.Go(func() error {
		var err error
		telemetry, err = Start(ctx, binary, Telemetry, host, Telemetry.StartPort())
		return err
	})

	if err := g.Wait(); err != nil {
		if tools != nil {
			_ = tools.Stop()
		}
		if telemetry != nil {
			_ = telemetry.Stop()
		}
		return nil, nil, err
	}
	return tools, telemetry, nil
}
