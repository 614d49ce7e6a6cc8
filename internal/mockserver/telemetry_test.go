package mockserver

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, payload string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return &buf
}

func TestTelemetryServerCapture(t *testing.T) {
	store := NewCaptureStore()
	srv := httptest.NewServer(NewTelemetryHandler(zerolog.Nop(), store))
	t.Cleanup(srv.Close)

	// Nothing captured yet.
	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body)

	first := "11111111-2222-3333-4444-555555555555\n{ \"event\": \"did the thing\" }\n"
	resp, err := http.Post(srv.URL+"/", "application/octet-stream", gzipped(t, first))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	require.Equal(t, first, string(body))

	// A second upload overwrites the first; there is no history.
	second := "66666666-7777-8888-9999-000000000000\n"
	resp, err = http.Post(srv.URL+"/", "application/octet-stream", gzipped(t, second))
	require.NoError(t, err)
	resp.Body.Close()

	_, body = get(t, srv.URL+"/")
	require.Equal(t, second, string(body))
}

func TestTelemetryServerRejectsPlainBody(t *testing.T) {
	store := NewCaptureStore()
	srv := httptest.NewServer(NewTelemetryHandler(zerolog.Nop(), store))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/", "text/plain", bytes.NewBufferString("not gzip"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Nil(t, store.Last(), "rejected uploads must not overwrite the capture")
}
