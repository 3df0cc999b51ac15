// SPDX-License-Identifier: MIT

// Package pipeline drives sampled requests against the server under test.
//
// For every configured target it runs N independent trials through the
// chain sample -> build -> issue -> classify and forwards each outcome to
// the sink. Trials are isolated: a sampling, build or connection failure
// skips that one trial and never aborts the rest. Only sink failures are
// irrecoverable (the failure log is the record of record).
package pipeline

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	xglog "github.com/ManuGH/shakedown/internal/log"
	"github.com/ManuGH/shakedown/internal/metrics"
	"github.com/ManuGH/shakedown/internal/outcome"
	"github.com/ManuGH/shakedown/internal/target"
)

// Sink consumes classified outcomes. An error return is irrecoverable
// and aborts the run.
type Sink interface {
	Record(outcome.Outcome) error
}

// Config holds the run parameters of the pipeline.
type Config struct {
	// BaseURL is the server under test.
	BaseURL string
	// Iterations is the number of trials per target.
	Iterations int
	// Concurrency bounds the in-flight trials of one target. Targets
	// themselves run sequentially.
	Concurrency int
	// Seed makes sampling reproducible across runs. Every trial derives
	// a private random source from it.
	Seed int64
}

// Runner issues trial requests and routes outcomes to the sink.
type Runner struct {
	cfg    Config
	client *http.Client
	sink   Sink
}

// New creates a Runner. The client is shared across all trials; the
// zero values of Iterations and Concurrency default to 100 and 8.
func New(cfg Config, client *http.Client, sink Sink) *Runner {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Runner{cfg: cfg, client: client, sink: sink}
}

// Run executes all targets. The returned error is nil unless the run
// was aborted by an irrecoverable sink failure or context cancellation.
func (r *Runner) Run(ctx context.Context, targets []target.Target) error {
	for i := range targets {
		if err := r.runTarget(ctx, &targets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runTarget(ctx context.Context, tgt *target.Target) error {
	ctx = xglog.ContextWithTarget(ctx, tgt.Label())
	logger := xglog.WithComponentFromContext(ctx, "pipeline")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for trial := 0; trial < r.cfg.Iterations; trial++ {
		g.Go(func() error {
			// Private random source per trial: no contention, and
			// sampling stays independent of scheduling order.
			rng := rand.New(rand.NewSource(r.trialSeed(tgt.Label(), trial)))
			return r.runTrial(ctx, logger, tgt, trial, rng)
		})
	}
	return g.Wait()
}

func (r *Runner) trialSeed(label string, trial int) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return r.cfg.Seed ^ int64(h.Sum64()) ^ (int64(trial) * 0x9e3779b9)
}

// runTrial performs one sampled request. A nil return means the trial
// either produced an outcome or was skipped; only irrecoverable errors
// propagate.
func (r *Runner) runTrial(ctx context.Context, logger zerolog.Logger, tgt *target.Target, trial int, rng *rand.Rand) error {
	uri, err := tgt.Sample(r.cfg.BaseURL, rng)
	if err != nil {
		metrics.IncTrial("sample_error")
		logger.Warn().
			Err(err).
			Int(xglog.FieldTrial, trial).
			Str(xglog.FieldEvent, "pipeline.sample_failed").
			Msg("skipping trial: invalid sampled URI")
		return nil
	}

	logger.Info().
		Int(xglog.FieldTrial, trial).
		Str(xglog.FieldMethod, tgt.Method.String()).
		Str(xglog.FieldURI, uri).
		Msg("request")

	req, err := http.NewRequestWithContext(ctx, tgt.Method.String(), uri, http.NoBody)
	if err != nil {
		metrics.IncTrial("build_error")
		logger.Warn().
			Err(err).
			Int(xglog.FieldTrial, trial).
			Str(xglog.FieldEvent, "pipeline.build_failed").
			Msg("skipping trial: could not build request")
		return nil
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return ctx.Err()
		}
		if outcome.IsConnectionError(err) {
			// Our problem, not the server's: report and move on.
			metrics.IncTrial("connect_error")
			logger.Error().
				Err(err).
				Int(xglog.FieldTrial, trial).
				Str(xglog.FieldEvent, "pipeline.connect_failed").
				Str(xglog.FieldURI, uri).
				Msg("skipping trial: connection failed")
			return nil
		}
		// Transport weirdness the client can observe is attributed to
		// the server under test.
		metrics.IncTrial("transport_error")
		return r.sink.Record(outcome.FromTransportError(tgt.Method, uri, err))
	}

	status := resp.StatusCode
	var body []byte
	if status >= 500 {
		// Capture the evidence. A broken body stream yields a partial
		// capture; the finding itself is the status code.
		body, _ = io.ReadAll(resp.Body)
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	_ = resp.Body.Close()
	metrics.ObserveRequestDuration(tgt.Method.String(), status, time.Since(start))

	o := outcome.FromStatus(tgt.Method, uri, status, body)
	if o.Kind == outcome.BadServerError {
		metrics.IncTrial("server_error")
		logger.Warn().
			Int(xglog.FieldTrial, trial).
			Str(xglog.FieldMethod, tgt.Method.String()).
			Str(xglog.FieldURI, uri).
			Int(xglog.FieldStatus, status).
			Msg("server error response")
	} else {
		metrics.IncTrial("ok")
		logger.Debug().
			Int(xglog.FieldTrial, trial).
			Int(xglog.FieldStatus, status).
			Msg("response")
	}
	return r.sink.Record(o)
}
