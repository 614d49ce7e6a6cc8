package mockserver

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// CaptureStore holds the most recently received decompressed telemetry
// payload. One store is created when the server process starts and lives
// for its lifetime; each upload overwrites the previous one, there is no
// history.
//
// The store is deliberately unlocked: the harness protocol is strictly
// upload-then-immediately-read from a single synchronous test, so there is
// a single writer and a single reader by construction.
type CaptureStore struct {
	last []byte
}

// NewCaptureStore returns an empty store.
func NewCaptureStore() *CaptureStore {
	return &CaptureStore{}
}

// Put replaces the captured payload.
func (s *CaptureStore) Put(payload []byte) {
	s.last = payload
}

// Last returns the most recently captured payload, nil before any upload.
func (s *CaptureStore) Last() []byte {
	return s.last
}

// NewTelemetryHandler builds the telemetry ingestion sink.
//
// POST — gunzip the request body and capture it as the latest payload.
// GET  — not part of the real protocol: returns the latest decompressed
// payload verbatim so tests can see what the CLI actually transmitted.
func NewTelemetryHandler(log zerolog.Logger, store *CaptureStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Post("/*", receiveUpload(log, store))
	r.Get("/*", serveLastUpload(store))
	r.Post("/", receiveUpload(log, store))
	r.Get("/", serveLastUpload(store))

	return r
}

func receiveUpload(log zerolog.Logger, store *CaptureStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("upload body is not gzip")
			http.Error(w, "expected gzip body", http.StatusBadRequest)
			return
		}
		defer gz.Close()

		payload, err := io.ReadAll(gz)
		if err != nil {
			log.Error().Err(err).Msg("decompressing upload")
			http.Error(w, "truncated gzip body", http.StatusBadRequest)
			return
		}

		store.Put(payload)
		log.Debug().Int("bytes", len(payload)).Msg("captured upload")
		w.WriteHeader(http.StatusOK)
	}
}

func serveLastUpload(store *CaptureStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := store.Last()
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}
}
