// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xglog "github.com/ManuGH/shakedown/internal/log"
)

// Serve starts the optional metrics listener on addr and returns a
// shutdown function. The listener exposes /metrics and /healthz only;
// it is diagnostic surface, not part of the fuzzing run, so listen
// errors are logged and do not abort the run.
func Serve(addr string) func(context.Context) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := xglog.WithComponent("metrics")
	go func() {
		logger.Info().Str("addr", addr).Str(xglog.FieldEvent, "metrics.listening").Msg("metrics listener started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str(xglog.FieldEvent, "metrics.listen_failed").Msg("metrics listener stopped")
		}
	}()

	return srv.Shutdown
}

func handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
