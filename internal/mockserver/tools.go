package mockserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/oasislabs/oasis-cli-harness/internal/mocktool"
)

// NewToolsHandler builds the toolchain listing/download handler.
//
// GET /        — the fixed catalog as an XML bucket listing.
// GET /<key>   — a mock executable for a catalog object, or 404 with an
// empty body for anything not in the catalog.
//
// The CLI reaches this server through http_proxy, so requests arrive in
// absolute form; when a URL host is present it must name the emulated
// upstream. Origin-form requests (curl against the bare port) are served
// unchecked.
func NewToolsHandler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(requireUpstreamHost(UpstreamHost))

	r.Get("/", serveListing(log))
	r.Get("/*", serveObject(log))

	return r
}

// requireUpstreamHost rejects proxy-form requests addressed to a different
// upstream than the one this server emulates.
func requireUpstreamHost(host string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.IsAbs() && r.URL.Hostname() != host {
				notFound(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func serveListing(log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := Listing()
		if err != nil {
			log.Error().Err(err).Msg("rendering bucket listing")
			http.Error(w, "listing unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Header().Set("Content-Length", strconv.Itoa(len(listing)))
		w.Write(listing)
	}
}

func serveObject(log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		object, ok := Lookup(r.URL.Path)
		if !ok {
			log.Debug().Str("path", r.URL.Path).Msg("object not in catalog")
			notFound(w)
			return
		}

		// The served artifact is itself a mock tool whose output names the
		// logical object it was resolved from, so tests can assert exactly
		// which artifact the CLI fetched.
		echo := fmt.Sprintf("echo %q", fmt.Sprintf("%s %s %s %s",
			object.Platform, object.Release, object.Tool, object.Hash))
		body := []byte(mocktool.Script(echo))

		w.Header().Set("Content-Type", "binary/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusNotFound)
}

// requestLogger logs one line per request to the server's stderr log.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
