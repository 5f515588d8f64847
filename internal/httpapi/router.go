// Package httpapi is the thin, out-of-core HTTP query façade: it
// translates a handful of URL parameters into store reads and is not
// part of the indexing core (spec §1).
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/atlasindex/atlas/internal/store"
)

// NewRouter returns a chi Router exposing health checks and a small set
// of read-only analytical queries over the column store.
func NewRouter(st *store.Store, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"atlas-query"}`))
	})

	h := &handlers{store: st, logger: logger}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/explorer/latest", h.explorerLatest)
		r.Get("/balances/{ticker}/{wallet}", h.walletBalance)
		r.Get("/cursors/{stream}", h.cursor)
	})

	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
