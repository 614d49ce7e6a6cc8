package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oasislabs/oasis-cli-harness/internal/errors"
	"github.com/oasislabs/oasis-cli-harness/internal/mockserver"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a mock upstream server",
	Long: `Run one of the mock upstream servers the integration suite points the
oasis CLI at. The server scans forward from the start port until it finds a
free one and announces the bound port as the first line on stdout.`,
}

var serveToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Serve the mock toolchain bucket",
	Long: `Serve the S3-style toolchain bucket: an XML object listing at the root
and a runnable mock tool for every catalogued toolchain object. Requests must
carry the upstream host the CLI is configured with; anything else is a 404.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(mockserver.Tools)
	},
}

var serveTelemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Serve the mock telemetry sink",
	Long: `Serve the telemetry sink: gzipped uploads are captured via POST and the
most recent decompressed payload is returned on GET, so tests can assert on
exactly what the CLI sent.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(mockserver.Telemetry)
	},
}

func init() {
	serveCmd.PersistentFlags().StringVar(&serveHost, "host", "localhost", "Host to bind")
	serveCmd.PersistentFlags().IntVar(&servePort, "port", 0, "Port scan start (default depends on server kind)")
	serveCmd.AddCommand(serveToolsCmd)
	serveCmd.AddCommand(serveTelemetryCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(kind mockserver.Kind) error {
	log := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("server", string(kind)).
		Logger()

	start := servePort
	if start == 0 {
		start = kind.StartPort()
	}

	ln, port, err := mockserver.Listen(serveHost, start)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Transport,
			fmt.Sprintf("binding %s server on %s", kind, serveHost))
	}

	// The port announcement is the process's discovery protocol: callers
	// read exactly one decimal line from stdout before anything else.
	mockserver.AnnouncePort(os.Stdout, port)

	var handler http.Handler
	switch kind {
	case mockserver.Tools:
		handler = mockserver.NewToolsHandler(log)
	case mockserver.Telemetry:
		handler = mockserver.NewTelemetryHandler(log, mockserver.NewCaptureStore())
	default:
		return errors.NewTransportError(fmt.Sprintf("unknown server kind %q", kind))
	}

	server := &http.Server{Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("host", serveHost).Int("port", port).Msg("serving")
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return errors.WrapWithMessage(err, errors.Transport,
			fmt.Sprintf("running %s server", kind))
	}
	log.Info().Msg("shut down")
	return nil
}
