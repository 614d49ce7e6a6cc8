package harnesstest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// Both servers must still be serving after pair startup returns; a launch
// tied to the startup coordination's lifetime would leave two dead
// processes behind.
func TestStartServerPairServersOutliveStartup(t *testing.T) {
	tools, telemetry := StartServerPair(t)

	resp, err := http.Get(tools.URL() + "/")
	require.NoError(t, err, "tools server should answer after StartServerPair returns")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/xml", resp.Header.Get("Content-Type"))

	resp, err = http.Get(telemetry.URL() + "/")
	require.NoError(t, err, "telemetry server should answer after StartServerPair returns")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartServerPortsDiffer(t *testing.T) {
	tools, telemetry := StartServerPair(t)
	require.NotEqual(t, tools.Port, telemetry.Port)
}
